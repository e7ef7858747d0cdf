package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"connecto/internal/featureflags"
	"connecto/internal/middleware"
	"connecto/internal/models"
	"connecto/internal/observability"
	"connecto/internal/repository"
)

// Event describes one notification to deliver.
type Event struct {
	ReceiverID  uint
	SenderID    uint
	Type        models.NotificationType
	ReferenceID *uint
}

// Emitter is the fire-and-forget contract the relationship and content
// services depend on. Emit never fails the caller's operation.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// Payload is the JSON published on a user's channel.
type Payload struct {
	ID          uint                    `json:"id"`
	SenderID    uint                    `json:"sender_id"`
	Type        models.NotificationType `json:"type"`
	ReferenceID *uint                   `json:"reference_id,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// Dispatcher persists each event and then publishes it to the receiver.
type Dispatcher struct {
	repo     repository.NotificationRepository
	notifier *Notifier
	flags    *featureflags.Manager
}

// NewDispatcher builds a Dispatcher. notifier and flags may be nil.
func NewDispatcher(repo repository.NotificationRepository, notifier *Notifier, flags *featureflags.Manager) *Dispatcher {
	return &Dispatcher{repo: repo, notifier: notifier, flags: flags}
}

// Emit stores the notification and publishes it. Failures are logged and
// counted, never returned.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	n := &models.Notification{
		ReceiverID:  event.ReceiverID,
		SenderID:    event.SenderID,
		Type:        event.Type,
		ReferenceID: event.ReferenceID,
	}
	if err := d.repo.Create(ctx, n); err != nil {
		observability.NotificationFailures.WithLabelValues("persist").Inc()
		middleware.Logger.WarnContext(ctx, "failed to persist notification",
			slog.String("type", string(event.Type)),
			slog.Uint64("receiver_id", uint64(event.ReceiverID)),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.NotificationsEmitted.WithLabelValues(string(event.Type)).Inc()

	if !d.notifier.Enabled() || !d.flags.EnabledOr(featureflags.RealtimeNotifications, event.ReceiverID, true) {
		return
	}

	body, err := json.Marshal(Payload{
		ID:          n.ID,
		SenderID:    n.SenderID,
		Type:        n.Type,
		ReferenceID: n.ReferenceID,
		CreatedAt:   n.CreatedAt,
	})
	if err != nil {
		observability.NotificationFailures.WithLabelValues("encode").Inc()
		return
	}
	if err := d.notifier.PublishUser(ctx, event.ReceiverID, string(body)); err != nil {
		observability.NotificationFailures.WithLabelValues("publish").Inc()
		middleware.Logger.WarnContext(ctx, "failed to publish notification",
			slog.Uint64("receiver_id", uint64(event.ReceiverID)),
			slog.String("error", err.Error()),
		)
	}
}
