package triage

import (
	"time"

	"github.com/deskhivehq/deskhive/internal/ticket"
)

// Result is the outcome of one completed triage run. It only ever exists as
// the output of a fully successful run; a failed run produces no Result.
type Result struct {
	TicketID string `json:"ticket_id"`

	Priority          ticket.Priority `json:"suggested_priority"`
	Confidence        float64         `json:"priority_confidence"`
	PriorityRationale string          `json:"priority_rationale"`

	// Assignee is empty when no directory entry cleared the cut.
	Assignee          string `json:"suggested_assignee,omitempty"`
	AssigneeRationale string `json:"assignee_rationale,omitempty"`

	ReplyDraft     string `json:"reply_draft"`
	ReplyTruncated bool   `json:"reply_truncated,omitempty"`

	Model     string    `json:"model,omitempty"`
	TriagedAt time.Time `json:"triaged_at"`
	Duration  float64   `json:"duration_seconds"`
	Usage     Usage     `json:"usage"`
}
