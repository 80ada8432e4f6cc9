// Package ticketapi exposes the ticket and triage HTTP endpoints.
package ticketapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/deskhivehq/deskhive/internal/ticket"
	"github.com/deskhivehq/deskhive/internal/triage"
)

// TicketService defines the ticket CRUD operations ticketapi needs.
type TicketService interface {
	Create(ctx context.Context, snap ticket.Snapshot) (*ticket.Ticket, error)
	Get(ctx context.Context, id string) (*ticket.Ticket, error)
	List(ctx context.Context, f ticket.Filter) ([]*ticket.Ticket, error)
	Update(ctx context.Context, id string, u ticket.Update) (*ticket.Ticket, error)
	Delete(ctx context.Context, id string) error
	SaveReply(ctx context.Context, id, replyText string, accepted bool) error
	Activity(ctx context.Context, id string) ([]*ticket.ActivityEvent, error)
}

// TriageService defines the triage operations ticketapi needs.
type TriageService interface {
	Triage(ctx context.Context, ticketID string) (*triage.Result, error)
	Get(ctx context.Context, ticketID string) (*triage.Result, bool, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger  log.Logger
	tickets TicketService
	triage  TriageService
}

// New creates a new API handler.
func New(logger log.Logger, tickets TicketService, triageSvc TriageService) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if tickets == nil {
		panic(xerrors.New("ticket service is required"))
	}
	if triageSvc == nil {
		panic(xerrors.New("triage service is required"))
	}
	return &API{
		logger:  logger,
		tickets: tickets,
		triage:  triageSvc,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/tickets", a.handleCreateTicket)
		r.Get("/tickets", a.handleListTickets)
		r.Get("/tickets/{id}", a.handleGetTicket)
		r.Put("/tickets/{id}", a.handleUpdateTicket)
		r.Delete("/tickets/{id}", a.handleDeleteTicket)
		r.Post("/tickets/{id}/triage", a.handleTriageTicket)
		r.Post("/tickets/{id}/reply", a.handleSaveReply)
	})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain failures onto HTTP statuses. Triage error kinds keep
// their retryability visible to the UI: 5xx with retryable=true backs the
// "try again" action.
func (a *API) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ticket.ErrNotFound):
		a.writeJSON(w, http.StatusNotFound, errBody("ticket not found", false))
		return
	case errors.Is(err, triage.ErrInFlight):
		a.writeJSON(w, http.StatusConflict, errBody(err.Error(), false))
		return
	}

	if kind, ok := triage.KindOf(err); ok {
		status := http.StatusInternalServerError
		switch kind {
		case triage.KindTimeout:
			status = http.StatusGatewayTimeout
		case triage.KindTransport, triage.KindMalformedResponse:
			status = http.StatusBadGateway
		case triage.KindConfiguration:
			status = http.StatusInternalServerError
		}
		body := errBody(err.Error(), kind.Retryable())
		body["kind"] = string(kind)
		a.writeJSON(w, status, body)
		return
	}

	a.logger.Error(ctx, err, "internal error")
	a.writeJSON(w, http.StatusInternalServerError, errBody("internal error", false))
}

func errBody(msg string, retryable bool) map[string]any {
	return map[string]any{"error": msg, "retryable": retryable}
}
