package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/zapponejosh/yphilios-calendar/internal/calendar"
	"github.com/zapponejosh/yphilios-calendar/internal/events"
)

func TestPrintMonth(t *testing.T) {
	catalog, err := events.DefaultCatalog(nil)
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}
	marked, err := catalog.MarkedDates(1622)
	if err != nil {
		t.Fatalf("MarkedDates() error = %v", err)
	}

	var buf bytes.Buffer
	printMonth(&buf, calendar.Default(), 1622, 1, marked)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	if len(lines) != 7 {
		t.Fatalf("got %d lines, want title, header and 5 weeks:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Psychros 1622" {
		t.Errorf("title = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], " Wk Sio") {
		t.Errorf("header = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "  1   1*   2*") {
		t.Errorf("first week = %q, want New Year and Tälvi's Rest marked", lines[2])
	}
	if !strings.HasSuffix(lines[6], " 31") && !strings.HasSuffix(lines[6], " 31*") {
		t.Errorf("last week = %q, want it to end on day 31", lines[6])
	}
}

func TestRootCmd_Date(t *testing.T) {
	var buf bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"date", "1622", "12", "32"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"1622/12/32", "New Year's Eve [holiday]", "Aspris:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRootCmd_BadArgs(t *testing.T) {
	tests := [][]string{
		{"month", "1622", "thirteen"},
		{"date", "1622", "1", "9223372036854775807"},
		{"year", "1000000001"},
		{"index", "1000000000001"},
	}

	for _, args := range tests {
		cmd := rootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)

		if err := cmd.Execute(); err == nil {
			t.Errorf("Execute(%v) succeeded, want error", args)
		}
	}
}
