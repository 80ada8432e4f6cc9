package ticket

import "time"

// Action enumerates the recorded activity types.
type Action string

const (
	ActionCreated    Action = "created"
	ActionUpdated    Action = "updated"
	ActionTriaged    Action = "triaged"
	ActionReplySaved Action = "reply_saved"
	ActionDeleted    Action = "deleted"
)

// ActivityEvent is one immutable entry in a ticket's history. Events are
// append-only; nothing in the system edits or removes them.
type ActivityEvent struct {
	ID          string         `json:"id"`
	TicketID    string         `json:"ticket_id"`
	Action      Action         `json:"action_type"`
	Actor       string         `json:"actor"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
