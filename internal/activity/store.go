// Package activity keeps a queryable feed of domain events so the
// dashboard and API can show what happened to a room, lease, or tenant.
package activity

import (
	"context"
	"time"
)

// Entry is one row of the activity feed, indexed by the entity it is about.
type Entry struct {
	EventID    string         `json:"event_id"`
	EventType  string         `json:"event_type"`
	OccurredAt time.Time      `json:"occurred_at"`
	EntityType string         `json:"entity_type"`
	EntityID   uint           `json:"entity_id"`
	Summary    string         `json:"summary"`
	Category   string         `json:"category"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Query filters the feed. Zero values mean no filter.
type Query struct {
	EntityType string
	EntityID   uint
	Category   string
	Limit      int
}

// Store is the activity feed storage contract.
type Store interface {
	// WriteEntries appends entries (one event fans out to many entries).
	WriteEntries(ctx context.Context, entries []Entry) error

	// Entries returns matching entries, newest first.
	Entries(ctx context.Context, q Query) ([]Entry, error)
}
