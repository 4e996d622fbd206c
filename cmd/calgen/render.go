package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/zapponejosh/yphilios-calendar/internal/calendar"
	"github.com/zapponejosh/yphilios-calendar/internal/events"
)

func printDay(w io.Writer, d calendar.Date, catalog *events.Catalog) error {
	marked, err := catalog.MarkedDates(d.Year)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, d.LongString())
	fmt.Fprintf(w, "  Date:         %s\n", d.ShortString())
	fmt.Fprintf(w, "  Day index:    %d\n", d.DayIndex)
	fmt.Fprintf(w, "  Day of year:  %d\n", d.DayOfYearIndex)
	fmt.Fprintf(w, "  Week:         %d\n", d.WeekIndex)
	for _, p := range d.MoonPhases() {
		fmt.Fprintf(w, "  %-13s %s %s (%d/%d)\n", p.Moon+":", p.Glyph, p.Symbol, p.Phase, p.Period)
	}

	occ := marked.On(d.DayIndex)
	if len(occ) == 0 {
		return nil
	}
	fmt.Fprintln(w, "  Events:")
	for _, o := range occ {
		fmt.Fprintf(w, "    - %s\n", describe(o))
	}
	return nil
}

func describe(o events.Occurrence) string {
	text := o.Title
	if text == "" {
		text = "(note) " + o.Detail
	}
	if len(o.Tags) > 0 {
		text += " [" + strings.Join(o.Tags, ", ") + "]"
	}
	return text
}

// printMonth writes a month as week rows, Siopoia first. Marked days
// carry a trailing *.
func printMonth(w io.Writer, cal *calendar.Calendar, year, month int, marked events.MarkedDates) {
	fmt.Fprintf(w, "%s %d\n", calendar.MonthNames[month-1], year)

	header := []string{" Wk"}
	for _, name := range calendar.DayNames {
		header = append(header, fmt.Sprintf("%-4s", abbrev(name)))
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(header, " "), " "))

	for _, pivot := range cal.WeekPivotDays(year, month) {
		var row strings.Builder
		fmt.Fprintf(&row, "%3d", pivot.WeekIndex)
		for _, d := range cal.WeekDays(pivot) {
			if d.Month != month || d.Year != year {
				row.WriteString("     ")
				continue
			}
			mark := " "
			if len(marked.On(d.DayIndex)) > 0 {
				mark = "*"
			}
			fmt.Fprintf(&row, " %3d%s", d.Day, mark)
		}
		fmt.Fprintln(w, strings.TrimRight(row.String(), " "))
	}
}

func printYear(w io.Writer, cal *calendar.Calendar, year int, marked events.MarkedDates) {
	leap := ""
	if calendar.IsLeapYear(year) {
		leap = ", leap"
	}
	start := cal.YearStartWeekday(year)
	fmt.Fprintf(w, "Year %d (%d days%s, starts on %s, %d weeks)\n",
		year, calendar.YearLength(year), leap, calendar.DayNames[start], cal.WeeksInYear(year))

	for m := 1; m <= calendar.MonthsPerYear; m++ {
		fmt.Fprintln(w)
		printMonth(w, cal, year, m, marked)
	}
}

func printEvents(w io.Writer, marked events.MarkedDates) {
	for _, o := range marked.Ordered() {
		fmt.Fprintf(w, "%-11s %-11s %s\n", o.Date.ShortString(), o.Date.WeekDay(), describe(o))
	}
}

func abbrev(name string) string {
	r := []rune(name)
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}
