package events

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/zapponejosh/yphilios-calendar/internal/calendar"
)

func defaultCatalogT(t *testing.T) *Catalog {
	t.Helper()
	c, err := DefaultCatalog(calendar.New())
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}
	return c
}

func TestDefaultCatalog_Counts(t *testing.T) {
	c := defaultCatalogT(t)

	want := map[string]int{"events": 13, "previous_campaigns": 6, "campaigns": 4, "notes": 12}
	for k, v := range want {
		if got := c.Counts()[k]; got != v {
			t.Errorf("Counts()[%s] = %d, want %d", k, got, v)
		}
	}
}

func TestMarkedDates_1622(t *testing.T) {
	c := defaultCatalogT(t)
	marked, err := c.MarkedDates(1622)
	if err != nil {
		t.Fatalf("MarkedDates() error = %v", err)
	}

	tests := []struct {
		name       string
		date       calendar.Date
		wantTitles []string
		wantCount  int
	}{
		{"New Year", calendar.DateFromParts(1622, 1, 1), []string{"New Year / Winter Solstice (S) / Summer Solstice (N)"}, 1},
		{"leap New Year's Eve", calendar.DateFromParts(1622, 12, 32), []string{"New Year's Eve"}, 1},
		{"Mothers' Day", calendar.DateFromParts(1622, 5, 9), []string{"Mothers' Day"}, 1},
		{"span start with two notes", calendar.DateFromParts(1622, 6, 11), []string{"Plugging the Leak day 1"}, 3},
		{"span end then campaign", calendar.DateFromParts(1622, 7, 10), []string{"Airship Trip day 4", "Airship Trip"}, 2},
		{"last day of Long Shadow", calendar.DateFromParts(1622, 6, 31), []string{"Long Shadow day 5"}, 1},
		{"Sarkon's Reign", calendar.DateFromParts(1622, 8, 14), []string{"Sarkon's Reign day 7"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occ := marked.On(tt.date.DayIndex)
			if len(occ) != tt.wantCount {
				t.Fatalf("On(%s) has %d occurrences, want %d", tt.date, len(occ), tt.wantCount)
			}
			if got := marked.Titles(tt.date.DayIndex); !slices.Equal(got, tt.wantTitles) {
				t.Errorf("Titles(%s) = %v, want %v", tt.date, got, tt.wantTitles)
			}
		})
	}
}

func TestMarkedDates_MergeOrder(t *testing.T) {
	c := defaultCatalogT(t)
	marked, err := c.MarkedDates(1622)
	if err != nil {
		t.Fatalf("MarkedDates() error = %v", err)
	}

	occ := marked.On(calendar.DateFromParts(1622, 6, 11).DayIndex)
	if occ[0].Title != "Plugging the Leak day 1" {
		t.Errorf("first occurrence = %q, want the span", occ[0].Title)
	}
	if occ[1].Detail != "The party arrives in Cruinneach" || occ[2].Detail != "The party tracks down Zara" {
		t.Errorf("notes out of order: %q, %q", occ[1].Detail, occ[2].Detail)
	}

	tags := marked.Tags(calendar.DateFromParts(1622, 7, 10).DayIndex)
	want := []string{"previous-campaign", "airship_trip", "campaign"}
	if !slices.Equal(tags, want) {
		t.Errorf("Tags(1622/7/10) = %v, want %v", tags, want)
	}
}

func TestMarkedDates_FiltersByYear(t *testing.T) {
	c := defaultCatalogT(t)
	marked, err := c.MarkedDates(1623)
	if err != nil {
		t.Fatalf("MarkedDates() error = %v", err)
	}

	for _, d := range marked.DayIndexes() {
		for _, o := range marked.On(d) {
			if o.Title == "" {
				t.Errorf("note %q leaked into 1623", o.Detail)
			}
			if slices.Contains(o.Tags, "campaign") || slices.Contains(o.Tags, "previous-campaign") {
				t.Errorf("campaign %q leaked into 1623", o.Title)
			}
		}
	}

	if got := marked.Titles(calendar.DateFromParts(1623, 12, 31).DayIndex); !slices.Equal(got, []string{"New Year's Eve"}) {
		t.Errorf("Titles(1623/12/31) = %v", got)
	}
}

func TestMarkedDates_PreviousCampaignCrossingYear(t *testing.T) {
	reg := mustRegistry(t)
	span := MultiDay("Long Night",
		Marker(calendar.DateFromParts(1622, 12, 30)),
		Marker(calendar.DateFromParts(1623, 1, 2)), "previous-campaign")

	c, err := NewCatalog(reg, []Definition{span}, nil, nil)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	for _, year := range []int{1622, 1623} {
		marked, err := c.MarkedDates(year)
		if err != nil {
			t.Fatalf("MarkedDates(%d) error = %v", year, err)
		}
		if marked.Len() != 5 {
			t.Errorf("MarkedDates(%d).Len() = %d, want 5", year, marked.Len())
		}
	}

	marked, err := c.MarkedDates(1624)
	if err != nil {
		t.Fatalf("MarkedDates(1624) error = %v", err)
	}
	if marked.Len() != 0 {
		t.Errorf("MarkedDates(1624).Len() = %d, want 0", marked.Len())
	}
}

func TestMarkedDates_Ordered(t *testing.T) {
	c := defaultCatalogT(t)
	marked, err := c.MarkedDates(1622)
	if err != nil {
		t.Fatalf("MarkedDates() error = %v", err)
	}

	days := marked.DayIndexes()
	if !slices.IsSorted(days) {
		t.Error("DayIndexes() not sorted")
	}

	all := marked.Ordered()
	for i := 1; i < len(all); i++ {
		if all[i].Date.Before(all[i-1].Date) {
			t.Fatalf("Ordered()[%d] = %s comes after %s", i, all[i].Date, all[i-1].Date)
		}
	}
}

func TestNewCatalog_UnknownReference(t *testing.T) {
	reg := mustRegistry(t)
	_, err := NewCatalog(reg, nil, []Definition{Reference("nothing")}, nil)
	if !errors.Is(err, ErrUnknownReference) {
		t.Errorf("NewCatalog() error = %v, want ErrUnknownReference", err)
	}
}

func TestSpecDefinition(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
	}{
		{"fixed", Spec{Kind: KindFixed, Name: "x", Year: 1622, Month: num(1), Day: num(1)}, false},
		{"fixed without day", Spec{Kind: KindFixed, Name: "x", Year: 1622, Month: num(1)}, true},
		{"fixed with day zero", Spec{Kind: KindFixed, Name: "x", Year: 1622, Month: num(1), Day: num(0)}, false},
		{"note with month zero", Spec{Kind: KindNote, Year: 1622, Month: num(0), Day: num(5), Text: "y"}, false},
		{"marker without month", Spec{Kind: KindMarker, Year: 1622, Day: num(5)}, true},
		{"yearly with day", Spec{Kind: KindYearly, Month: num(3), Day: num(4)}, false},
		{"yearly with table", Spec{Kind: KindYearly, Month: num(3), Days: []int{1, 2}}, false},
		{"yearly without day", Spec{Kind: KindYearly, Month: num(3)}, true},
		{"nth weekday bad ordinal", Spec{Kind: KindNthWeekday, Month: num(3), Weekday: 1}, true},
		{"multi day missing end", Spec{Kind: KindMultiDay, From: &Spec{Kind: KindYearly, Month: num(1), Day: num(1)}}, true},
		{"relative offset", Spec{Kind: KindRelativeOffset, Anchor: &Spec{Kind: KindReference, Ref: "a"}, Offset: 2}, false},
		{"reference without ref", Spec{Kind: KindReference}, true},
		{"unknown kind", Spec{Kind: "weekly"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.Definition()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSpec) {
					t.Errorf("Definition() error = %v, want ErrInvalidSpec", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Definition() error = %v", err)
			}
		})
	}
}

// num returns a pointer to n for optional spec fields.
func num(n int) *int { return &n }

func TestSpecDefinition_ZeroParts(t *testing.T) {
	tests := []struct {
		name       string
		spec       Spec
		wantString string
	}{
		{"day zero is the last day of the previous month", Spec{Kind: KindFixed, Name: "Eve", Year: 1622, Month: num(1), Day: num(0)}, "1621/12/31"},
		{"month zero is the last month", Spec{Kind: KindNote, Year: 1622, Month: num(0), Day: num(32), Text: "leap day"}, "1622/12/32"},
		{"both zero", Spec{Kind: KindMarker, Year: 1623, Month: num(0), Day: num(0)}, "1623/11/31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := tt.spec.Definition()
			if err != nil {
				t.Fatalf("Definition() error = %v", err)
			}
			if got := def.Date.String(); got != tt.wantString {
				t.Errorf("Date = %s, want %s", got, tt.wantString)
			}
		})
	}
}

func TestSpec_ZeroSurvivesYAML(t *testing.T) {
	f, err := ParseFile([]byte("notes:\n  - {kind: note, year: 1622, month: 1, day: 0, text: eve}\n"))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if d := f.Notes[0].Day; d == nil || *d != 0 {
		t.Fatalf("Day = %v, want an explicit 0", d)
	}

	var buf bytes.Buffer
	if err := WriteFile(&buf, f); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if !strings.Contains(buf.String(), "day: 0") {
		t.Errorf("WriteFile() dropped the zero day:\n%s", buf.String())
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	f, err := DefaultFile()
	if err != nil {
		t.Fatalf("DefaultFile() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteFile(&buf, f); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	back, err := ParseFile(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	a, err := BuildCatalog(f, nil)
	if err != nil {
		t.Fatalf("BuildCatalog(default) error = %v", err)
	}
	b, err := BuildCatalog(back, nil)
	if err != nil {
		t.Fatalf("BuildCatalog(round trip) error = %v", err)
	}

	ma, _ := a.MarkedDates(1622)
	mb, _ := b.MarkedDates(1622)
	if ma.Len() != mb.Len() {
		t.Errorf("round trip marked %d days, want %d", mb.Len(), ma.Len())
	}
}

func TestParseFile_Invalid(t *testing.T) {
	if _, err := ParseFile([]byte("events: [")); err == nil {
		t.Error("ParseFile() accepted malformed YAML")
	}

	f, err := ParseFile([]byte("events:\n  - {key: a, kind: reference, ref: b}\n"))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if _, err := BuildCatalog(f, nil); !errors.Is(err, ErrUnknownReference) {
		t.Errorf("BuildCatalog() error = %v, want ErrUnknownReference", err)
	}
}
