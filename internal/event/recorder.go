package event

import (
	"context"

	"github.com/rentdesk/rentdesk/internal/activity"
)

// Recorder writes domain events to the activity store.
type Recorder interface {
	Record(ctx context.Context, evt DomainEvent) error
}

// Publisher sends domain events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, evt DomainEvent)
}

// ActivityRecorder implements Recorder by fanning out a DomainEvent into
// one activity entry per affected entity. If a Publisher is set, the event
// is also published after the store write succeeds.
type ActivityRecorder struct {
	store activity.Store
	bus   Publisher
}

// NewActivityRecorder creates a Recorder backed by the given store.
func NewActivityRecorder(store activity.Store) *ActivityRecorder {
	return &ActivityRecorder{store: store}
}

// SetPublisher attaches an event bus. Events are published after store writes.
func (r *ActivityRecorder) SetPublisher(p Publisher) {
	r.bus = p
}

func (r *ActivityRecorder) Record(ctx context.Context, evt DomainEvent) error {
	entries := make([]activity.Entry, 0, len(evt.AffectedEntities))
	for _, ref := range evt.AffectedEntities {
		entries = append(entries, activity.Entry{
			EventID:    evt.ID,
			EventType:  evt.EventType,
			OccurredAt: evt.OccurredAt,
			EntityType: ref.EntityType,
			EntityID:   ref.EntityID,
			Summary:    evt.Summary,
			Category:   evt.Category,
			Payload:    evt.Payload,
		})
	}
	if err := r.store.WriteEntries(ctx, entries); err != nil {
		return err
	}

	if r.bus != nil {
		r.bus.Publish(ctx, evt)
	}
	return nil
}

// NopRecorder discards events. Useful in tests that do not assert on the feed.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, DomainEvent) error { return nil }
