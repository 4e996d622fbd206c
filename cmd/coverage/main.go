// Command coverage sweeps a range of years through a running calendar API
// and reports how every recurring event resolves. Events that produce no
// occurrence in some year, or more than one, are listed so catalog mistakes
// show up before anyone opens the calendar.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/zapponejosh/yphilios-calendar/internal/api"
	"github.com/zapponejosh/yphilios-calendar/internal/calendar"
)

// APIResponse is the envelope with its data left raw.
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *api.ErrorInfo  `json:"error,omitempty"`
}

type eventResponse struct {
	Key         string `json:"key"`
	Year        int    `json:"year"`
	Occurrences []struct {
		Title string        `json:"title"`
		Date  calendar.Date `json:"date"`
	} `json:"occurrences"`
}

// YearResult holds what one year looks like.
type YearResult struct {
	Year        int            `json:"year"`
	MarkedDays  int            `json:"marked_days"`
	Occurrences map[string]int `json:"occurrences"` // per recurring event key
	Error       string         `json:"error,omitempty"`
}

// EventStats tracks one recurring event across the sweep.
type EventStats struct {
	Key        string `json:"key"`
	Years      int    `json:"years"`
	EmptyYears []int  `json:"empty_years,omitempty"`
	MultiYears []int  `json:"multi_years,omitempty"` // years with more than one occurrence
	Total      int    `json:"total_occurrences"`
}

// Analysis is the summary of a sweep.
type Analysis struct {
	StartYear int           `json:"start_year"`
	EndYear   int           `json:"end_year"`
	Events    []*EventStats `json:"events"`
	Years     []YearResult  `json:"years"`
	Failures  int           `json:"failures"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	startYear := flag.Int("start", 1620, "Start year")
	years := flag.Int("years", 6, "Number of years to sweep")
	verbose := flag.Bool("v", false, "Verbose output (show each year)")
	outputFile := flag.String("o", "", "Output results to JSON file")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}
	base := strings.TrimSuffix(*baseURL, "/")
	endYear := *startYear + *years - 1

	fmt.Println("==============================================")
	fmt.Println("Yphilios Event Coverage")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", base)
	fmt.Printf("Years:    %d - %d\n", *startYear, endYear)
	fmt.Println()

	var keys struct {
		Keys []string `json:"keys"`
	}
	if err := getData(client, base+"/api/v1/events", &keys); err != nil {
		fmt.Printf("Error: cannot list events: %v\n", err)
		os.Exit(1)
	}

	results := sweep(client, base, keys.Keys, *startYear, endYear, *verbose)
	analysis := analyze(keys.Keys, results, *startYear, endYear)

	printSummary(analysis)

	if *outputFile != "" {
		if err := saveResults(*outputFile, analysis); err != nil {
			fmt.Printf("Error saving results: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nResults saved to %s\n", *outputFile)
	}

	if analysis.Failures > 0 {
		os.Exit(1)
	}
}

func sweep(client *http.Client, base string, keys []string, startYear, endYear int, verbose bool) []YearResult {
	var results []YearResult

	for year := startYear; year <= endYear; year++ {
		result := YearResult{Year: year, Occurrences: make(map[string]int, len(keys))}

		var marked api.YearEventsView
		if err := getData(client, fmt.Sprintf("%s/api/v1/years/%d/events", base, year), &marked); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.MarkedDays = len(marked.Days)

		for _, key := range keys {
			var ev eventResponse
			path := fmt.Sprintf("%s/api/v1/events/%s?year=%d", base, url.PathEscape(key), year)
			if err := getData(client, path, &ev); err != nil {
				result.Error = fmt.Sprintf("%s: %v", key, err)
				break
			}
			result.Occurrences[key] = len(ev.Occurrences)
		}

		if verbose {
			status := "ok"
			if result.Error != "" {
				status = "ERROR " + result.Error
			}
			fmt.Printf("  %d: %3d marked days  %s\n", year, result.MarkedDays, status)
		}
		results = append(results, result)
	}
	return results
}

func analyze(keys []string, results []YearResult, startYear, endYear int) *Analysis {
	a := &Analysis{StartYear: startYear, EndYear: endYear, Years: results}

	stats := make(map[string]*EventStats, len(keys))
	for _, key := range keys {
		stats[key] = &EventStats{Key: key}
	}

	for _, r := range results {
		if r.Error != "" {
			a.Failures++
			continue
		}
		for key, n := range r.Occurrences {
			s := stats[key]
			s.Years++
			s.Total += n
			switch {
			case n == 0:
				s.EmptyYears = append(s.EmptyYears, r.Year)
			case n > 1:
				s.MultiYears = append(s.MultiYears, r.Year)
			}
		}
	}

	for _, key := range keys {
		a.Events = append(a.Events, stats[key])
	}
	sort.SliceStable(a.Events, func(i, j int) bool {
		return len(a.Events[i].EmptyYears) > len(a.Events[j].EmptyYears)
	})
	return a
}

func printSummary(a *Analysis) {
	fmt.Println()
	fmt.Println("--- Recurring Events ---")
	fmt.Println()
	fmt.Printf("  %-32s %6s %6s %s\n", "Event", "Years", "Total", "Notes")
	for _, s := range a.Events {
		var notes []string
		if len(s.EmptyYears) > 0 {
			notes = append(notes, fmt.Sprintf("missing in %v", s.EmptyYears))
		}
		if len(s.MultiYears) > 0 {
			notes = append(notes, fmt.Sprintf("spans in %v", s.MultiYears))
		}
		fmt.Printf("  %-32s %6d %6d %s\n", truncate(s.Key, 32), s.Years, s.Total, strings.Join(notes, "; "))
	}

	fmt.Println()
	fmt.Println("--- Years ---")
	fmt.Println()
	for _, r := range a.Years {
		if r.Error != "" {
			fmt.Printf("  ✗ %d: %s\n", r.Year, r.Error)
			continue
		}
		fmt.Printf("  ✓ %d: %d marked days\n", r.Year, r.MarkedDays)
	}

	fmt.Println()
	if a.Failures == 0 {
		fmt.Println("All years resolved! ✓")
	} else {
		fmt.Printf("%d year(s) failed\n", a.Failures)
	}
}

func saveResults(filename string, a *Analysis) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

func getData(client *http.Client, endpoint string, target any) error {
	resp, err := client.Get(endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	if !apiResp.Success {
		msg := "unknown error"
		if apiResp.Error != nil {
			msg = apiResp.Error.Message
		}
		return fmt.Errorf("API error: %s", msg)
	}
	return json.Unmarshal(apiResp.Data, target)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
