package ticketapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type saveReplyRequest struct {
	ReplyText string `json:"reply_text"`
	Accepted  *bool  `json:"accepted"`
}

// handleTriageTicket runs one synchronous triage for the ticket. Failures
// come back as typed errors; retrying is the client's call (the UI offers a
// "try again" action), never ours.
func (a *API) handleTriageTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("deskhive.ticket.id", id))

	res, err := a.triage.Triage(r.Context(), id)
	if err != nil {
		a.writeError(r.Context(), w, err)
		return
	}

	span.SetAttributes(
		attribute.String("deskhive.triage.priority", string(res.Priority)),
		attribute.Float64("deskhive.triage.confidence", res.Confidence),
	)

	a.writeJSON(w, http.StatusOK, res)
}

func (a *API) handleSaveReply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req saveReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeJSON(w, http.StatusBadRequest, errBody("invalid payload", false))
		return
	}
	if req.ReplyText == "" {
		a.writeJSON(w, http.StatusBadRequest, errBody("reply_text is required", false))
		return
	}

	accepted := true
	if req.Accepted != nil {
		accepted = *req.Accepted
	}

	if err := a.tickets.SaveReply(r.Context(), id, req.ReplyText, accepted); err != nil {
		a.writeError(r.Context(), w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"ticket_id": id,
	})
}
