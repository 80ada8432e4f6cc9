package ticketapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/deskhivehq/deskhive/internal/ticket"
	"github.com/deskhivehq/deskhive/internal/triage"
)

type createTicketRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	CustomerEmail string   `json:"customer_email"`
	Tags          []string `json:"tags"`
}

type updateTicketRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	Priority    *string  `json:"priority"`
	Assignee    *string  `json:"assigned_to"`
	Tags        []string `json:"tags"`
}

// ticketResponse is a ticket with its triage result and history attached,
// the shape the board UI renders from.
type ticketResponse struct {
	*ticket.Ticket
	TriageResult *triage.Result          `json:"triage_result,omitempty"`
	ActivityLog  []*ticket.ActivityEvent `json:"activity_log,omitempty"`
}

func (a *API) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	var req createTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeJSON(w, http.StatusBadRequest, errBody("invalid payload", false))
		return
	}

	t, err := a.tickets.Create(r.Context(), ticket.Snapshot{
		Title:         req.Title,
		Description:   req.Description,
		CustomerEmail: req.CustomerEmail,
		Tags:          req.Tags,
	})
	if err != nil {
		a.writeJSON(w, http.StatusBadRequest, errBody(err.Error(), false))
		return
	}

	a.writeJSON(w, http.StatusCreated, t)
}

func (a *API) handleListTickets(w http.ResponseWriter, r *http.Request) {
	var f ticket.Filter
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := ticket.ParseStatus(s)
		if err != nil {
			a.writeJSON(w, http.StatusBadRequest, errBody(err.Error(), false))
			return
		}
		f.Status = status
	}
	if p := r.URL.Query().Get("priority"); p != "" {
		prio, err := ticket.ParsePriority(p)
		if err != nil {
			a.writeJSON(w, http.StatusBadRequest, errBody(err.Error(), false))
			return
		}
		f.Priority = prio
	}

	ts, err := a.tickets.List(r.Context(), f)
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	if ts == nil {
		ts = []*ticket.Ticket{}
	}
	a.writeJSON(w, http.StatusOK, ts)
}

func (a *API) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("deskhive.ticket.id", id))

	t, err := a.tickets.Get(r.Context(), id)
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}

	resp := ticketResponse{Ticket: t}
	if res, ok, err := a.triage.Get(r.Context(), id); err == nil && ok {
		resp.TriageResult = res
	}
	if evs, err := a.tickets.Activity(r.Context(), id); err == nil {
		resp.ActivityLog = evs
	}

	a.writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeJSON(w, http.StatusBadRequest, errBody("invalid payload", false))
		return
	}

	u := ticket.Update{
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
		Tags:        req.Tags,
	}
	if req.Status != nil {
		status, err := ticket.ParseStatus(*req.Status)
		if err != nil {
			a.writeJSON(w, http.StatusBadRequest, errBody(err.Error(), false))
			return
		}
		u.Status = &status
	}
	if req.Priority != nil {
		prio, err := ticket.ParsePriority(*req.Priority)
		if err != nil {
			a.writeJSON(w, http.StatusBadRequest, errBody(err.Error(), false))
			return
		}
		u.Priority = &prio
	}

	t, err := a.tickets.Update(r.Context(), id, u)
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, t)
}

func (a *API) handleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := a.tickets.Delete(r.Context(), id); err != nil {
		a.writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
