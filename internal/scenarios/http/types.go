package http

import (
	"context"

	"github.com/inklinehq/roi-backend/internal/notify"
	"github.com/inklinehq/roi-backend/internal/observability"
	"github.com/inklinehq/roi-backend/internal/scenarios/domain"
	"github.com/inklinehq/roi-backend/internal/scenarios/session"
)

// Notifier reports save/delete outcomes. Satisfied by notify.Notifier.
type Notifier interface {
	Publish(ctx context.Context, userID string, ev notify.Event) error
}

// Handler bundles the dependencies for scenario and workspace endpoints.
type Handler struct {
	store    domain.Store
	sessions *session.Manager
	notifier Notifier
	metrics  *observability.Collector
}

func New(store domain.Store, sessions *session.Manager, notifier Notifier, metrics *observability.Collector) *Handler {
	return &Handler{store: store, sessions: sessions, notifier: notifier, metrics: metrics}
}
