package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// EventType identifies a reservation lifecycle event.
type EventType string

const (
	EventCreated          EventType = "created"
	EventConfirmed        EventType = "confirmed"
	EventCancelled        EventType = "cancelled"
	EventCompleted        EventType = "completed"
	EventExpired          EventType = "expired"
	EventConflictRejected EventType = "conflict_rejected"
)

// Event is the message emitted to downstream delivery (email/in-app/ws).
type Event struct {
	Type          EventType `json:"type"`
	ReservationID string    `json:"reservation_id,omitempty"`
	ResourceID    string    `json:"resource_id"`
	RequesterID   string    `json:"requester_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Notifier receives lifecycle events for downstream delivery.
// The reservation engine never blocks on, or fails because of, a sink.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// LogNotifier writes events to the structured log. Always-on default sink.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, ev Event) error {
	n.log.Info("reservation event",
		zap.String("type", string(ev.Type)),
		zap.String("reservation_id", ev.ReservationID),
		zap.String("resource_id", ev.ResourceID),
		zap.String("requester_id", ev.RequesterID),
		zap.Time("start", ev.Start),
		zap.Time("end", ev.End),
	)
	return nil
}
