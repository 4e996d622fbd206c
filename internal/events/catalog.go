package events

import (
	"fmt"
	"slices"
	"sort"
)

// Catalog groups every event source shown on the calendar.
type Catalog struct {
	registry          *Registry
	previousCampaigns []Definition
	campaigns         []Definition
	notes             []Definition
}

// NewCatalog checks every unregistered definition against the registry.
func NewCatalog(reg *Registry, previousCampaigns, campaigns, notes []Definition) (*Catalog, error) {
	groups := []struct {
		name string
		defs []Definition
	}{
		{"previous campaign", previousCampaigns},
		{"campaign", campaigns},
		{"note", notes},
	}
	for _, g := range groups {
		for i, def := range g.defs {
			if err := reg.Check(def); err != nil {
				return nil, fmt.Errorf("%s %d (%s): %w", g.name, i, def.Name, err)
			}
		}
	}

	return &Catalog{
		registry:          reg,
		previousCampaigns: slices.Clone(previousCampaigns),
		campaigns:         slices.Clone(campaigns),
		notes:             slices.Clone(notes),
	}, nil
}

// Registry returns the recurring events.
func (c *Catalog) Registry() *Registry {
	return c.registry
}

// Counts returns the number of definitions per source.
func (c *Catalog) Counts() map[string]int {
	return map[string]int{
		"events":             c.registry.Len(),
		"previous_campaigns": len(c.previousCampaigns),
		"campaigns":          len(c.campaigns),
		"notes":              len(c.notes),
	}
}

// MarkedDates resolves every source for year. Sources are merged in a
// fixed order: recurring events, previous campaigns whose first or last
// day falls in year, campaigns dated in year, then notes dated in year.
func (c *Catalog) MarkedDates(year int) (MarkedDates, error) {
	marked := MarkedDates{}

	recurring, err := c.registry.Occurrences(year)
	if err != nil {
		return nil, err
	}
	marked.add(recurring...)

	for _, def := range c.previousCampaigns {
		occ, err := c.registry.Resolve(def, year)
		if err != nil {
			return nil, fmt.Errorf("previous campaign %q: %w", def.Name, err)
		}
		if len(occ) == 0 {
			continue
		}
		if occ[0].Date.Year == year || occ[len(occ)-1].Date.Year == year {
			marked.add(occ...)
		}
	}

	for _, def := range c.campaigns {
		occ, err := c.registry.Resolve(def, year)
		if err != nil {
			return nil, fmt.Errorf("campaign %q: %w", def.Name, err)
		}
		marked.add(inYear(occ, year)...)
	}

	for _, def := range c.notes {
		occ, err := c.registry.Resolve(def, year)
		if err != nil {
			return nil, fmt.Errorf("note: %w", err)
		}
		marked.add(inYear(occ, year)...)
	}

	return marked, nil
}

func inYear(occ []Occurrence, year int) []Occurrence {
	kept := occ[:0:0]
	for _, o := range occ {
		if o.Date.Year == year {
			kept = append(kept, o)
		}
	}
	return kept
}

// MarkedDates maps a day index to the occurrences on that day, in merge order.
type MarkedDates map[int][]Occurrence

func (m MarkedDates) add(occ ...Occurrence) {
	for _, o := range occ {
		m[o.Date.DayIndex] = append(m[o.Date.DayIndex], o)
	}
}

// On returns the occurrences on dayIndex.
func (m MarkedDates) On(dayIndex int) []Occurrence {
	return m[dayIndex]
}

// DayIndexes returns the marked days in ascending order.
func (m MarkedDates) DayIndexes() []int {
	days := make([]int, 0, len(m))
	for d := range m {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// Len returns the number of marked days.
func (m MarkedDates) Len() int {
	return len(m)
}

// Titles returns the non-empty titles on dayIndex.
func (m MarkedDates) Titles(dayIndex int) []string {
	var titles []string
	for _, o := range m[dayIndex] {
		if o.Title != "" {
			titles = append(titles, o.Title)
		}
	}
	return titles
}

// Tags returns the distinct tags on dayIndex in first-seen order.
func (m MarkedDates) Tags(dayIndex int) []string {
	var tags []string
	for _, o := range m[dayIndex] {
		for _, t := range o.Tags {
			if !slices.Contains(tags, t) {
				tags = append(tags, t)
			}
		}
	}
	return tags
}

// Ordered returns every occurrence sorted by day, keeping merge order within a day.
func (m MarkedDates) Ordered() []Occurrence {
	var all []Occurrence
	for _, d := range m.DayIndexes() {
		all = append(all, m[d]...)
	}
	return all
}
