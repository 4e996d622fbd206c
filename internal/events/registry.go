package events

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zapponejosh/yphilios-calendar/internal/calendar"
)

// Entry is a keyed definition to register.
type Entry struct {
	Key        string
	Definition Definition
}

// Registry is an ordered, immutable set of keyed definitions. Every
// reference is checked when the registry is built, so resolution never
// meets an unknown key. A Registry is safe for concurrent use.
type Registry struct {
	cal  *calendar.Calendar
	keys []string
	defs map[string]Definition
}

// NewRegistry validates entries and builds a registry resolving against cal.
// A nil cal uses calendar.Default().
func NewRegistry(cal *calendar.Calendar, entries ...Entry) (*Registry, error) {
	if cal == nil {
		cal = calendar.Default()
	}

	r := &Registry{
		cal:  cal,
		keys: make([]string, 0, len(entries)),
		defs: make(map[string]Definition, len(entries)),
	}

	for _, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("%w: entry %q has no key", ErrInvalidDefinition, e.Definition.Name)
		}
		if _, dup := r.defs[e.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidDefinition, e.Key)
		}
		if err := e.Definition.Validate(); err != nil {
			return nil, fmt.Errorf("event %q: %w", e.Key, err)
		}
		r.keys = append(r.keys, e.Key)
		r.defs[e.Key] = e.Definition
	}

	if err := r.checkReferences(); err != nil {
		return nil, err
	}
	return r, nil
}

// Check validates a definition that is not itself registered, such as a
// campaign span, against the registry's keys.
func (r *Registry) Check(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	for _, ref := range def.references() {
		if _, ok := r.defs[ref]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownReference, ref)
		}
	}
	return nil
}

// checkReferences rejects unknown keys and reference loops.
func (r *Registry) checkReferences() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(r.keys))

	// path holds the keys being visited, outermost first. Each call owns
	// its copy, so siblings never share a backing array.
	var visit func(key string, path []string) error
	visit = func(key string, path []string) error {
		switch state[key] {
		case done:
			return nil
		case visiting:
			loop := append(slices.Clone(path[slices.Index(path, key):]), key)
			return fmt.Errorf("%w: %s", ErrReferenceCycle, strings.Join(loop, " -> "))
		}

		state[key] = visiting
		path = append(slices.Clone(path), key)
		for _, ref := range r.defs[key].references() {
			if _, ok := r.defs[ref]; !ok {
				return fmt.Errorf("%w: %q referenced by %q", ErrUnknownReference, ref, key)
			}
			if err := visit(ref, path); err != nil {
				return err
			}
		}
		state[key] = done
		return nil
	}

	for _, key := range r.keys {
		if err := visit(key, nil); err != nil {
			return err
		}
	}
	return nil
}

// Calendar returns the calendar the registry resolves against.
func (r *Registry) Calendar() *calendar.Calendar {
	return r.cal
}

// Lookup returns the definition registered under key.
func (r *Registry) Lookup(key string) (Definition, bool) {
	def, ok := r.defs[key]
	return def, ok
}

// Keys returns the registered keys in registration order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	return len(r.keys)
}

// ResolveKey resolves the definition registered under key for year.
func (r *Registry) ResolveKey(key string, year int) ([]Occurrence, error) {
	def, ok := r.defs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReference, key)
	}
	return r.Resolve(def, year)
}

// Occurrences resolves every registered definition for year, in
// registration order.
func (r *Registry) Occurrences(year int) ([]Occurrence, error) {
	var all []Occurrence
	for _, key := range r.keys {
		occ, err := r.Resolve(r.defs[key], year)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", key, err)
		}
		all = append(all, occ...)
	}
	return all, nil
}

// Resolve returns the occurrences of def in year, in date order.
func (r *Registry) Resolve(def Definition, year int) ([]Occurrence, error) {
	switch def.Kind {
	case KindFixed, KindMarker:
		return []Occurrence{occurrence(def.Name, def.Date, def.Tags)}, nil

	case KindNote:
		o := occurrence("", def.Date, def.Tags)
		o.Detail = def.Text
		return []Occurrence{o}, nil

	case KindYearly:
		return []Occurrence{occurrence(def.Name, r.yearlyDate(def, year), def.Tags)}, nil

	case KindNthWeekday:
		return []Occurrence{occurrence(def.Name, r.nthWeekdayDate(def, year), def.Tags)}, nil

	case KindMultiDay:
		return r.resolveMultiDay(def, year)

	case KindRelativeOffset:
		anchor, err := r.Resolve(*def.Anchor, year)
		if err != nil {
			return nil, err
		}
		if len(anchor) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrEmptyAnchor, def.Name)
		}
		date := r.cal.DateRelativeTo(anchor[len(anchor)-1].Date, def.Offset)
		return []Occurrence{occurrence(def.Name, date, def.Tags)}, nil

	case KindReference:
		target, ok := r.defs[def.Key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownReference, def.Key)
		}
		return r.Resolve(target, year)

	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidDefinition, def.Kind)
	}
}

func (r *Registry) yearlyDate(def Definition, year int) calendar.Date {
	n := len(def.Days)
	day := def.Days[((year%n)+n)%n]
	if day < 0 {
		day = calendar.MonthLength(def.Month, year) + day + 1
	}
	return r.cal.DateFromParts(year, def.Month, day)
}

func (r *Registry) nthWeekdayDate(def Definition, year int) calendar.Date {
	first := r.cal.DateFromParts(year, def.Month, 1)

	day := def.Weekday - first.WeekDayIndex + 1
	if def.Weekday < first.WeekDayIndex || (def.FullWeek && first.WeekDayIndex > 0) {
		day += calendar.DaysPerWeek
	}
	day += calendar.DaysPerWeek * (def.Ordinal - 1)

	return r.cal.DateFromParts(year, def.Month, day)
}

func (r *Registry) resolveMultiDay(def Definition, year int) ([]Occurrence, error) {
	from, err := r.Resolve(*def.From, year)
	if err != nil {
		return nil, err
	}
	to, err := r.Resolve(*def.To, year)
	if err != nil {
		return nil, err
	}
	if len(from) == 0 || len(to) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyAnchor, def.Name)
	}

	start, end := from[0].Date, to[0].Date
	if end.Before(start) {
		return nil, nil
	}

	span := make([]Occurrence, 0, end.DayIndex-start.DayIndex+1)
	for offset := 0; start.DayIndex+offset <= end.DayIndex; offset++ {
		date := r.cal.DateRelativeTo(start, offset)
		span = append(span, occurrence(fmt.Sprintf("%s day %d", def.Name, offset+1), date, def.Tags))
	}
	return span, nil
}
