// Command apitest runs a smoke test suite against a running calendar API.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/zapponejosh/yphilios-calendar/internal/api"
)

// =============================================================================
// Response Types
// =============================================================================

// APIResponse is the envelope with its data left raw.
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *api.ErrorInfo  `json:"error,omitempty"`
}

// HealthResponse is the response for /health
type HealthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	apiKey       string
	client       *http.Client
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL, apiKey string, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Println("==============================================")
	fmt.Println("Yphilios Calendar API Test Suite")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", tr.baseURL)
	fmt.Println()

	tr.testHealth()
	tr.testDates()
	tr.testMonthGrid()
	tr.testWeek()
	tr.testYearEvents()
	tr.testEdgeCases()
	tr.testAdmin()

	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	var health HealthResponse
	if err := tr.getData("/health", &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status == "healthy" {
		tr.recordSuccess(fmt.Sprintf("Health check passed (cache %s)", health.Cache))
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}
}

func (tr *TestRunner) testDates() {
	tr.printSection("Dates")

	cases := []struct {
		path      string
		wantShort string
		wantEvent string
	}{
		{"/api/v1/dates/1622/1/1", "1622/1/1", "New Year / Winter Solstice (S) / Summer Solstice (N)"},
		{"/api/v1/dates/1622/12/32", "1622/12/32", "New Year's Eve"},
		{"/api/v1/dates/1623/12/31", "1623/12/31", "New Year's Eve"},
		{"/api/v1/dates/1622/1/0", "1621/12/31", "New Year's Eve"},
		{"/api/v1/dates/1622/7/10", "1622/7/10", "Airship Trip day 4"},
	}

	for _, c := range cases {
		var day api.DayView
		if err := tr.getData(c.path, &day); err != nil {
			tr.recordError(c.path, err.Error())
			continue
		}
		if day.Short != c.wantShort {
			tr.recordError(c.path, fmt.Sprintf("got %s, want %s", day.Short, c.wantShort))
			continue
		}
		if len(day.Events) == 0 || day.Events[0].Title != c.wantEvent {
			tr.recordError(c.path, fmt.Sprintf("first event %+v, want %q", day.Events, c.wantEvent))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s: %s [%d event(s)]", c.wantShort, day.Long, len(day.Events)))
		if tr.verbose {
			tr.printDayDetail(day)
		}
	}

	// Same date by index
	var first api.DayView
	if err := tr.getData("/api/v1/dates/1622/1/1", &first); err != nil {
		tr.recordError("Day index", err.Error())
		return
	}
	var byIndex api.DayView
	if err := tr.getData(fmt.Sprintf("/api/v1/days/%d", first.DayIndex), &byIndex); err != nil {
		tr.recordError("Day index", err.Error())
		return
	}
	if byIndex.Short == first.Short {
		tr.recordSuccess(fmt.Sprintf("Day index %d resolves to %s", first.DayIndex, byIndex.Short))
	} else {
		tr.recordError("Day index", fmt.Sprintf("%d resolved to %s", first.DayIndex, byIndex.Short))
	}
}

func (tr *TestRunner) testMonthGrid() {
	tr.printSection("Month Grids (1622)")

	for month := 1; month <= 12; month++ {
		path := fmt.Sprintf("/api/v1/years/1622/months/%d", month)
		var view api.MonthView
		if err := tr.getData(path, &view); err != nil {
			tr.recordError(path, err.Error())
			continue
		}

		cells, marked := 0, 0
		for _, row := range view.Weeks {
			for _, cell := range row.Days {
				if cell == nil {
					continue
				}
				cells++
				if len(cell.Titles) > 0 || len(cell.Tags) > 0 {
					marked++
				}
			}
		}
		if cells != view.Length {
			tr.recordError(path, fmt.Sprintf("%d cells for a %d-day month", cells, view.Length))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%-12s %d days, %d rows, %d marked", view.Name, view.Length, len(view.Weeks), marked))
	}
}

func (tr *TestRunner) testWeek() {
	tr.printSection("Weeks")

	var week api.WeekView
	if err := tr.getData("/api/v1/years/1622/weeks/1", &week); err != nil {
		tr.recordError("Week 1", err.Error())
		return
	}
	if len(week.Days) != 7 {
		tr.recordError("Week 1", fmt.Sprintf("%d days", len(week.Days)))
		return
	}
	tr.recordSuccess(fmt.Sprintf("1622/W1: %s - %s (prev %d/W%d, next %d/W%d)",
		week.First, week.Last, week.Prev.Year, week.Prev.Week, week.Next.Year, week.Next.Week))
}

func (tr *TestRunner) testYearEvents() {
	tr.printSection("Year Events")

	for i, want := range []string{"MISS", "HIT"} {
		resp, err := tr.getRaw("/api/v1/years/1622/events")
		if err != nil {
			tr.recordError("Year events", err.Error())
			return
		}
		resp.Body.Close()

		got := resp.Header.Get("X-Cache")
		switch {
		case got == want:
			tr.recordSuccess(fmt.Sprintf("Request %d: cache %s", i+1, got))
		case got == "MISS" && i == 1:
			tr.recordSuccess("Request 2: cache MISS (caching disabled)")
		case got == "HIT" && i == 0:
			tr.recordSuccess("Request 1: cache HIT (already warm)")
		default:
			tr.recordError("Year events", fmt.Sprintf("request %d X-Cache = %q", i+1, got))
		}
	}

	var view api.YearEventsView
	if err := tr.getData("/api/v1/years/1622/events", &view); err != nil {
		tr.recordError("Year events", err.Error())
		return
	}
	tr.recordSuccess(fmt.Sprintf("1622 has %d marked days", len(view.Days)))
}

func (tr *TestRunner) testEdgeCases() {
	tr.printSection("Edge Cases")

	checks := []struct {
		path   string
		status int
		label  string
	}{
		{"/api/v1/dates/1622/x/1", http.StatusBadRequest, "Non-numeric month rejected"},
		{"/api/v1/years/1622/months/13", http.StatusBadRequest, "Month 13 rejected in month view"},
		{"/api/v1/years/1622/weeks/0", http.StatusBadRequest, "Week 0 rejected"},
		{"/api/v1/events/does-not-exist", http.StatusNotFound, "Unknown event is 404"},
		{"/api/v1/catalog?section=bogus", http.StatusBadRequest, "Unknown catalog section rejected"},
	}

	for _, c := range checks {
		resp, err := tr.getRaw(c.path)
		if err != nil {
			tr.recordError(c.label, err.Error())
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == c.status {
			tr.recordSuccess(c.label)
		} else {
			tr.recordError(c.label, fmt.Sprintf("status %d, want %d", resp.StatusCode, c.status))
		}
	}
}

func (tr *TestRunner) testAdmin() {
	tr.printSection("Admin")

	if tr.apiKey == "" {
		fmt.Println("  (skipped, no -key given)")
		return
	}

	req, err := http.NewRequest(http.MethodPost, tr.baseURL+"/api/v1/admin/catalog/reload", nil)
	if err != nil {
		tr.recordError("Reload", err.Error())
		return
	}
	req.Header.Set("X-API-Key", tr.apiKey)

	resp, err := tr.client.Do(req)
	if err != nil {
		tr.recordError("Reload", err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		tr.recordSuccess("Catalog reloaded")
	} else {
		tr.recordError("Reload", fmt.Sprintf("status %d", resp.StatusCode))
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

func (tr *TestRunner) getData(path string, target any) error {
	resp, err := tr.getRaw(path)
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
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return fmt.Errorf("API error: %s", errMsg)
	}

	return json.Unmarshal(apiResp.Data, target)
}

func (tr *TestRunner) getRaw(path string) (*http.Response, error) {
	return tr.client.Get(tr.baseURL + path)
}

func (tr *TestRunner) printSection(name string) {
	fmt.Println()
	fmt.Printf("--- %s ---\n", name)
	fmt.Println()
}

func (tr *TestRunner) printDayDetail(d api.DayView) {
	for _, m := range d.Moons {
		fmt.Printf("    %s: %s %s\n", m.Moon, m.Glyph, m.Symbol)
	}
	for _, e := range d.Events {
		text := e.Title
		if text == "" {
			text = "(note) " + e.Detail
		}
		fmt.Printf("    - %s %v\n", text, e.Tags)
	}
	fmt.Println()
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Printf("  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Printf("  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Println("Summary")
	fmt.Println("==============================================")
	fmt.Printf("  Passed: %d\n", tr.successCount)
	fmt.Printf("  Failed: %d\n", tr.errorCount)
	fmt.Println()

	if tr.errorCount > 0 {
		fmt.Println("Failures:")
		for _, err := range tr.errors {
			fmt.Printf("  • %s\n", err)
		}
		fmt.Println()
	}

	if tr.errorCount == 0 {
		fmt.Println("All tests passed! ✓")
	} else {
		fmt.Printf("Tests completed with %d failure(s)\n", tr.errorCount)
	}
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	apiKey := flag.String("key", os.Getenv("API_KEY"), "API key for the admin endpoints")
	verbose := flag.Bool("v", false, "Verbose output (show moons and events)")
	flag.Parse()

	// Check if server is reachable
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, *apiKey, *verbose)
	runner.Run()

	// Exit with error code if tests failed
	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
