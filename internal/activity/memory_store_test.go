package activity

import (
	"context"
	"testing"
	"time"
)

func entry(eventType, entityType string, entityID uint, at time.Time) Entry {
	return Entry{
		EventID:    eventType + "-" + at.Format(time.RFC3339Nano),
		EventType:  eventType,
		OccurredAt: at,
		EntityType: entityType,
		EntityID:   entityID,
		Summary:    eventType,
		Category:   "lease",
	}
}

func TestMemoryStoreQueryByEntity(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	err := s.WriteEntries(ctx, []Entry{
		entry("lease_started", "room", 1, base),
		entry("payment_recorded", "room", 1, base.Add(time.Hour)),
		entry("lease_started", "room", 2, base.Add(2*time.Hour)),
	})
	if err != nil {
		t.Fatalf("WriteEntries: %v", err)
	}

	got, err := s.Entries(ctx, Query{EntityType: "room", EntityID: 1})
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].EventType != "payment_recorded" {
		t.Errorf("expected newest first, got %s", got[0].EventType)
	}
}

func TestMemoryStoreLimit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		_ = s.WriteEntries(ctx, []Entry{
			entry("lease_started", "room", 1, base.Add(time.Duration(i)*time.Minute)),
		})
	}

	got, err := s.Entries(ctx, Query{Limit: 3})
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 entries, got %d", len(got))
	}
}

func TestMemoryStoreEviction(t *testing.T) {
	s := NewMemoryStore()
	s.cap = 5
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 8; i++ {
		_ = s.WriteEntries(ctx, []Entry{
			entry("reading_recorded", "room", 1, base.Add(time.Duration(i)*time.Minute)),
		})
	}

	got, err := s.Entries(ctx, Query{})
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected cap of 5, got %d", len(got))
	}
	for _, e := range got {
		if e.OccurredAt.Before(base.Add(3 * time.Minute)) {
			t.Errorf("expected oldest entries evicted, found %s", e.OccurredAt)
		}
	}
}
