package database

import (
	"time"
)

// Section identifies which catalog source an entry belongs to.
type Section string

const (
	SectionEvent            Section = "event"
	SectionPreviousCampaign Section = "previous_campaign"
	SectionCampaign         Section = "campaign"
	SectionNote             Section = "note"
)

// ValidSections returns all sections in merge order.
func ValidSections() []Section {
	return []Section{
		SectionEvent,
		SectionPreviousCampaign,
		SectionCampaign,
		SectionNote,
	}
}

// IsValid checks if a section is valid.
func (s Section) IsValid() bool {
	for _, valid := range ValidSections() {
		if s == valid {
			return true
		}
	}
	return false
}

// CatalogEntry is one stored event definition.
type CatalogEntry struct {
	ID        int64     `json:"id"`
	Section   Section   `json:"section"`
	Position  int       `json:"position"`       // Order within the section
	Key       *string   `json:"key,omitempty"`  // nullable: only recurring events have one
	Kind      string    `json:"kind"`           // events.Kind of the spec
	Name      string    `json:"name"`           // may be empty for notes
	Year      *int      `json:"year,omitempty"` // nullable: set for dated entries
	Spec      string    `json:"-"`              // JSON-encoded definition
	Tags      []string  `json:"tags"`           // from catalog_entry_tags
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagCount is the number of entries carrying a tag.
type TagCount struct {
	Tag     string `json:"tag"`
	Entries int    `json:"entries"`
}

// CatalogStats summarises the stored catalog.
type CatalogStats struct {
	Total     int             `json:"total"`
	BySection map[Section]int `json:"by_section"`
	Years     []int           `json:"years"` // distinct years of dated entries
}
