package events

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zapponejosh/yphilios-calendar/internal/calendar"
)

// ErrInvalidSpec is returned when a catalog entry cannot be turned into a Definition.
var ErrInvalidSpec = errors.New("invalid event spec")

//go:embed catalog.yaml
var defaultCatalog []byte

// intValue returns *p, or 0 for a missing field.
func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// File is the on-disk form of a Catalog.
type File struct {
	Events            []Spec `yaml:"events" json:"events"`
	PreviousCampaigns []Spec `yaml:"previous_campaigns" json:"previous_campaigns"`
	Campaigns         []Spec `yaml:"campaigns" json:"campaigns"`
	Notes             []Spec `yaml:"notes" json:"notes"`
}

// Spec is the serialisable form of a Definition. Nested specs describe the
// ends of a span or the anchor of a relative event. Month and day are
// pointers so an explicit 0, which the calendar normalises, is told apart
// from a missing field.
type Spec struct {
	Key      string   `yaml:"key,omitempty" json:"key,omitempty"`
	Kind     Kind     `yaml:"kind" json:"kind"`
	Name     string   `yaml:"name,omitempty" json:"name,omitempty"`
	Tags     []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Text     string   `yaml:"text,omitempty" json:"text,omitempty"`
	Year     int      `yaml:"year,omitempty" json:"year,omitempty"`
	Month    *int     `yaml:"month,omitempty" json:"month,omitempty"`
	Day      *int     `yaml:"day,omitempty" json:"day,omitempty"`
	Days     []int    `yaml:"days,omitempty" json:"days,omitempty"`
	Weekday  int      `yaml:"weekday,omitempty" json:"weekday,omitempty"`
	Ordinal  int      `yaml:"ordinal,omitempty" json:"ordinal,omitempty"`
	FullWeek bool     `yaml:"full_week,omitempty" json:"full_week,omitempty"`
	From     *Spec    `yaml:"from,omitempty" json:"from,omitempty"`
	To       *Spec    `yaml:"to,omitempty" json:"to,omitempty"`
	Anchor   *Spec    `yaml:"anchor,omitempty" json:"anchor,omitempty"`
	Offset   int      `yaml:"offset,omitempty" json:"offset,omitempty"`
	Ref      string   `yaml:"ref,omitempty" json:"ref,omitempty"`
}

// Definition converts the spec, checking the fields its kind needs.
func (s Spec) Definition() (Definition, error) {
	var def Definition

	switch s.Kind {
	case KindFixed, KindMarker, KindNote:
		if s.Month == nil || s.Day == nil {
			return Definition{}, fmt.Errorf("%w: %s %q needs year, month and day", ErrInvalidSpec, s.Kind, s.Name)
		}
		date := calendar.DateFromParts(s.Year, *s.Month, *s.Day)
		switch s.Kind {
		case KindFixed:
			def = Fixed(s.Name, date, s.Tags...)
		case KindMarker:
			def = Marker(date)
		default:
			def = Note(date, s.Text)
		}

	case KindYearly:
		days := s.Days
		if len(days) == 0 {
			if s.Day == nil {
				return Definition{}, fmt.Errorf("%w: yearly %q needs day or days", ErrInvalidSpec, s.Name)
			}
			days = []int{*s.Day}
		}
		def = YearlyTable(s.Name, intValue(s.Month), days, s.Tags...)

	case KindNthWeekday:
		def = NthWeekday(s.Name, intValue(s.Month), s.Weekday, s.Ordinal, s.FullWeek, s.Tags...)

	case KindMultiDay:
		if s.From == nil || s.To == nil {
			return Definition{}, fmt.Errorf("%w: multi_day %q needs from and to", ErrInvalidSpec, s.Name)
		}
		from, err := s.From.Definition()
		if err != nil {
			return Definition{}, fmt.Errorf("%s from: %w", s.Name, err)
		}
		to, err := s.To.Definition()
		if err != nil {
			return Definition{}, fmt.Errorf("%s to: %w", s.Name, err)
		}
		def = MultiDay(s.Name, from, to, s.Tags...)

	case KindRelativeOffset:
		if s.Anchor == nil {
			return Definition{}, fmt.Errorf("%w: relative_offset %q needs anchor", ErrInvalidSpec, s.Name)
		}
		anchor, err := s.Anchor.Definition()
		if err != nil {
			return Definition{}, fmt.Errorf("%s anchor: %w", s.Name, err)
		}
		def = RelativeOffset(s.Name, anchor, s.Offset, s.Tags...)

	case KindReference:
		if s.Ref == "" {
			return Definition{}, fmt.Errorf("%w: reference needs ref", ErrInvalidSpec)
		}
		def = Reference(s.Ref)

	default:
		return Definition{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidSpec, s.Kind)
	}

	if err := def.Validate(); err != nil {
		return Definition{}, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	return def, nil
}

// ParseFile decodes a YAML catalog.
func ParseFile(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse catalog: %w", err)
	}
	return f, nil
}

// LoadFile reads and decodes a YAML catalog from path.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read catalog: %w", err)
	}
	return ParseFile(data)
}

// DefaultFile returns the built-in catalog.
func DefaultFile() (File, error) {
	return ParseFile(defaultCatalog)
}

// WriteFile encodes f as YAML.
func WriteFile(w io.Writer, f File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}

// BuildCatalog converts every spec in f and builds a validated Catalog.
// Recurring events are keyed by Key, or by Name when no key is given.
func BuildCatalog(f File, cal *calendar.Calendar) (*Catalog, error) {
	entries := make([]Entry, 0, len(f.Events))
	for i, s := range f.Events {
		def, err := s.Definition()
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		key := s.Key
		if key == "" {
			key = s.Name
		}
		entries = append(entries, Entry{Key: key, Definition: def})
	}

	reg, err := NewRegistry(cal, entries...)
	if err != nil {
		return nil, err
	}

	previous, err := definitions("previous campaign", f.PreviousCampaigns)
	if err != nil {
		return nil, err
	}
	campaigns, err := definitions("campaign", f.Campaigns)
	if err != nil {
		return nil, err
	}
	notes, err := definitions("note", f.Notes)
	if err != nil {
		return nil, err
	}

	return NewCatalog(reg, previous, campaigns, notes)
}

// DefaultCatalog builds the built-in catalog.
func DefaultCatalog(cal *calendar.Calendar) (*Catalog, error) {
	f, err := DefaultFile()
	if err != nil {
		return nil, err
	}
	return BuildCatalog(f, cal)
}

func definitions(section string, specs []Spec) ([]Definition, error) {
	defs := make([]Definition, 0, len(specs))
	for i, s := range specs {
		def, err := s.Definition()
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", section, i, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}
