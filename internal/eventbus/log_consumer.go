package eventbus

import (
	"context"

	"go.uber.org/zap"

	"github.com/rentdesk/rentdesk/internal/event"
)

// NewLogConsumer returns a subscriber that logs every event. Useful as an
// always-on audit trail in development.
func NewLogConsumer(log *zap.Logger) Handler {
	return HandlerFunc(func(_ context.Context, evt event.DomainEvent) error {
		log.Info("domain event",
			zap.String("event_type", evt.EventType),
			zap.String("category", evt.Category),
			zap.String("summary", evt.Summary))
		return nil
	})
}
