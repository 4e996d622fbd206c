// Package seed moves the event catalog between its YAML file form and the
// database, and loads the stored catalog for serving.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/zapponejosh/yphilios-calendar/internal/calendar"
	"github.com/zapponejosh/yphilios-calendar/internal/database"
	"github.com/zapponejosh/yphilios-calendar/internal/events"
)

// Stats counts the entries written per section.
type Stats struct {
	Events            int
	PreviousCampaigns int
	Campaigns         int
	Notes             int
}

// Total returns the number of entries written.
func (s Stats) Total() int {
	return s.Events + s.PreviousCampaigns + s.Campaigns + s.Notes
}

// Entries converts a catalog file into database rows. The file is built
// into a Catalog first so an invalid file never reaches the database.
func Entries(f events.File) ([]database.CatalogEntry, error) {
	if _, err := events.BuildCatalog(f, nil); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	sections := []struct {
		section database.Section
		specs   []events.Spec
	}{
		{database.SectionEvent, f.Events},
		{database.SectionPreviousCampaign, f.PreviousCampaigns},
		{database.SectionCampaign, f.Campaigns},
		{database.SectionNote, f.Notes},
	}

	var entries []database.CatalogEntry
	for _, sec := range sections {
		for i, s := range sec.specs {
			entry, err := entry(sec.section, i, s)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func entry(section database.Section, position int, s events.Spec) (database.CatalogEntry, error) {
	if section == database.SectionEvent && s.Key == "" {
		s.Key = s.Name
	}

	spec, err := json.Marshal(s)
	if err != nil {
		return database.CatalogEntry{}, fmt.Errorf("encode %s %d: %w", section, position, err)
	}

	e := database.CatalogEntry{
		Section:  section,
		Position: position,
		Kind:     string(s.Kind),
		Name:     s.Name,
		Year:     datedYear(s),
		Spec:     string(spec),
		Tags:     s.Tags,
	}
	if section == database.SectionEvent {
		key := s.Key
		e.Key = &key
	}
	return e, nil
}

// datedYear returns the year of the first explicit date in s, if any.
func datedYear(s events.Spec) *int {
	switch s.Kind {
	case events.KindFixed, events.KindMarker, events.KindNote:
		y := s.Year
		return &y
	case events.KindMultiDay:
		if s.From != nil {
			return datedYear(*s.From)
		}
	case events.KindRelativeOffset:
		if s.Anchor != nil {
			return datedYear(*s.Anchor)
		}
	}
	return nil
}

// File rebuilds a catalog file from database rows.
func File(entries []database.CatalogEntry) (events.File, error) {
	var f events.File
	for _, e := range entries {
		var s events.Spec
		if err := json.Unmarshal([]byte(e.Spec), &s); err != nil {
			return events.File{}, fmt.Errorf("decode entry %d: %w", e.ID, err)
		}

		switch e.Section {
		case database.SectionEvent:
			if e.Key != nil {
				s.Key = *e.Key
			}
			f.Events = append(f.Events, s)
		case database.SectionPreviousCampaign:
			f.PreviousCampaigns = append(f.PreviousCampaigns, s)
		case database.SectionCampaign:
			f.Campaigns = append(f.Campaigns, s)
		case database.SectionNote:
			f.Notes = append(f.Notes, s)
		default:
			return events.File{}, fmt.Errorf("entry %d: unknown section %q", e.ID, e.Section)
		}
	}
	return f, nil
}

// Import replaces the stored catalog with f.
func Import(ctx context.Context, db *database.DB, f events.File) (Stats, error) {
	entries, err := Entries(f)
	if err != nil {
		return Stats{}, err
	}
	if err := db.ReplaceCatalog(ctx, entries); err != nil {
		return Stats{}, fmt.Errorf("store catalog: %w", err)
	}

	return Stats{
		Events:            len(f.Events),
		PreviousCampaigns: len(f.PreviousCampaigns),
		Campaigns:         len(f.Campaigns),
		Notes:             len(f.Notes),
	}, nil
}

// EnsureSeeded imports a catalog into an empty database: the file at path
// when one is given, the built-in catalog otherwise. A database that
// already has entries is left alone.
func EnsureSeeded(ctx context.Context, db *database.DB, path string, logger *slog.Logger) error {
	n, err := db.CountEntries(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Debug("catalog already seeded", slog.Int("entries", n))
		return nil
	}

	var f events.File
	source := "built-in"
	if path != "" {
		source = path
		f, err = events.LoadFile(path)
	} else {
		f, err = events.DefaultFile()
	}
	if err != nil {
		return err
	}

	stats, err := Import(ctx, db, f)
	if err != nil {
		return err
	}

	logger.Info("catalog seeded",
		slog.String("source", source),
		slog.Int("events", stats.Events),
		slog.Int("previous_campaigns", stats.PreviousCampaigns),
		slog.Int("campaigns", stats.Campaigns),
		slog.Int("notes", stats.Notes),
	)
	return nil
}

// LoadCatalog reads the stored catalog and builds it against cal.
func LoadCatalog(ctx context.Context, db *database.DB, cal *calendar.Calendar) (*events.Catalog, error) {
	entries, err := db.ListEntries(ctx, "")
	if err != nil {
		return nil, err
	}

	f, err := File(entries)
	if err != nil {
		return nil, err
	}
	return events.BuildCatalog(f, cal)
}
