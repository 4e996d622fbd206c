// Package events models calendar events and resolves them onto concrete
// dates for a given year.
//
// An event is described by a Definition. Definitions are registered in an
// immutable Registry, which checks every cross-reference up front; only
// then are they resolved into Occurrences for a year.
package events

import (
	"errors"
	"fmt"

	"github.com/zapponejosh/yphilios-calendar/internal/calendar"
)

// Kind identifies the variant of a Definition.
type Kind string

// Definition kinds
const (
	// KindFixed is a single explicit date, whatever year is queried.
	KindFixed Kind = "fixed"

	// KindMarker is a nameless fixed date used to build spans.
	KindMarker Kind = "marker"

	// KindNote is a nameless fixed date carrying free text.
	KindNote Kind = "note"

	// KindYearly recurs on a month and day every year.
	KindYearly Kind = "yearly"

	// KindNthWeekday is the nth given weekday of a month.
	KindNthWeekday Kind = "nth_weekday"

	// KindMultiDay spans from one event to another, inclusive.
	KindMultiDay Kind = "multi_day"

	// KindRelativeOffset falls a fixed number of days after another event.
	KindRelativeOffset Kind = "relative_offset"

	// KindReference stands for another registered event.
	KindReference Kind = "reference"
)

var (
	// ErrUnknownReference is returned when a reference names a key that is not registered.
	ErrUnknownReference = errors.New("unknown event reference")

	// ErrReferenceCycle is returned when references form a loop.
	ErrReferenceCycle = errors.New("event reference cycle")

	// ErrEmptyAnchor is returned when an event used as an anchor has no occurrence.
	ErrEmptyAnchor = errors.New("anchor event has no occurrence")

	// ErrInvalidDefinition is returned for a definition missing fields its kind requires.
	ErrInvalidDefinition = errors.New("invalid event definition")
)

// Definition describes how to compute the occurrences of one event. Only
// the fields used by its Kind are set. Definitions are never mutated once
// registered.
type Definition struct {
	Kind Kind
	Name string
	Tags []string

	// Fixed, Marker, Note
	Date calendar.Date
	Text string

	// Yearly, NthWeekday
	Month int

	// Yearly: the day is Days[year mod len(Days)]. Negative days count
	// back from the end of the month, -1 being the last day.
	Days []int

	// NthWeekday
	Weekday  int
	Ordinal  int
	FullWeek bool

	// MultiDay
	From *Definition
	To   *Definition

	// RelativeOffset
	Anchor *Definition
	Offset int

	// Reference
	Key string
}

// Fixed returns an event on a single explicit date.
func Fixed(name string, date calendar.Date, tags ...string) Definition {
	return Definition{Kind: KindFixed, Name: name, Date: date, Tags: tags}
}

// Marker returns an anonymous day reference.
func Marker(date calendar.Date) Definition {
	return Definition{Kind: KindMarker, Date: date}
}

// Note returns an anonymous date carrying text.
func Note(date calendar.Date, text string) Definition {
	return Definition{Kind: KindNote, Date: date, Text: text}
}

// Yearly returns an event on the same month and day every year.
func Yearly(name string, month, day int, tags ...string) Definition {
	return Definition{Kind: KindYearly, Name: name, Month: month, Days: []int{day}, Tags: tags}
}

// YearlyTable returns a yearly event whose day is picked from days by year
// modulo len(days).
func YearlyTable(name string, month int, days []int, tags ...string) Definition {
	return Definition{Kind: KindYearly, Name: name, Month: month, Days: days, Tags: tags}
}

// NthWeekday returns the ordinal-th weekday of month. With fullWeek set,
// counting starts at the first week that begins inside the month.
func NthWeekday(name string, month, weekday, ordinal int, fullWeek bool, tags ...string) Definition {
	return Definition{
		Kind:     KindNthWeekday,
		Name:     name,
		Month:    month,
		Weekday:  weekday,
		Ordinal:  ordinal,
		FullWeek: fullWeek,
		Tags:     tags,
	}
}

// MultiDay returns an event spanning from the first occurrence of from to
// the first occurrence of to.
func MultiDay(name string, from, to Definition, tags ...string) Definition {
	return Definition{Kind: KindMultiDay, Name: name, From: &from, To: &to, Tags: tags}
}

// RelativeOffset returns an event offset days after the last occurrence of anchor.
func RelativeOffset(name string, anchor Definition, offset int, tags ...string) Definition {
	return Definition{Kind: KindRelativeOffset, Name: name, Anchor: &anchor, Offset: offset, Tags: tags}
}

// Reference returns an event standing for the registered event key.
func Reference(key string) Definition {
	return Definition{Kind: KindReference, Key: key}
}

// Validate checks the fields required by the definition's kind, recursively.
// It does not check that references exist; the Registry does that.
func (d Definition) Validate() error {
	switch d.Kind {
	case KindFixed, KindMarker, KindNote:
		return nil

	case KindYearly:
		if err := validateMonth(d.Month); err != nil {
			return err
		}
		if len(d.Days) == 0 {
			return fmt.Errorf("%w: yearly event %q has no day", ErrInvalidDefinition, d.Name)
		}
		return nil

	case KindNthWeekday:
		if err := validateMonth(d.Month); err != nil {
			return err
		}
		if d.Weekday < 0 || d.Weekday >= calendar.DaysPerWeek {
			return fmt.Errorf("%w: weekday %d out of range", ErrInvalidDefinition, d.Weekday)
		}
		if d.Ordinal < 1 {
			return fmt.Errorf("%w: ordinal %d must be at least 1", ErrInvalidDefinition, d.Ordinal)
		}
		return nil

	case KindMultiDay:
		if d.From == nil || d.To == nil {
			return fmt.Errorf("%w: multi-day event %q needs both ends", ErrInvalidDefinition, d.Name)
		}
		if err := d.From.Validate(); err != nil {
			return fmt.Errorf("%s start: %w", d.Name, err)
		}
		if err := d.To.Validate(); err != nil {
			return fmt.Errorf("%s end: %w", d.Name, err)
		}
		return nil

	case KindRelativeOffset:
		if d.Anchor == nil {
			return fmt.Errorf("%w: relative event %q has no anchor", ErrInvalidDefinition, d.Name)
		}
		if err := d.Anchor.Validate(); err != nil {
			return fmt.Errorf("%s anchor: %w", d.Name, err)
		}
		return nil

	case KindReference:
		if d.Key == "" {
			return fmt.Errorf("%w: reference without key", ErrInvalidDefinition)
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidDefinition, d.Kind)
	}
}

// references returns every registry key the definition depends on.
func (d Definition) references() []string {
	switch d.Kind {
	case KindReference:
		return []string{d.Key}
	case KindMultiDay:
		return append(d.From.references(), d.To.references()...)
	case KindRelativeOffset:
		return d.Anchor.references()
	default:
		return nil
	}
}

func validateMonth(month int) error {
	if month < 1 || month > calendar.MonthsPerYear {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidDefinition, month)
	}
	return nil
}

// Occurrence is an event resolved onto a concrete day.
type Occurrence struct {
	Title  string        `json:"title"`
	Detail string        `json:"detail"`
	Date   calendar.Date `json:"date"`
	Tags   []string      `json:"tags"`
}

func occurrence(name string, date calendar.Date, tags []string) Occurrence {
	t := make([]string, len(tags))
	copy(t, tags)
	return Occurrence{Title: name, Detail: name, Date: date, Tags: t}
}
