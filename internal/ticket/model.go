package ticket

import (
	"fmt"
	"strings"
	"time"
)

// Status tracks where a ticket is in its lifecycle.
type Status string

const (
	// StatusOpen means newly created, not yet worked on
	StatusOpen Status = "open"

	// StatusInProgress means a team member is actively working on it
	StatusInProgress Status = "in_progress"

	// StatusWaiting means blocked on the customer
	StatusWaiting Status = "waiting"

	// StatusResolved means fixed, pending confirmation
	StatusResolved Status = "resolved"

	// StatusClosed means finished
	StatusClosed Status = "closed"
)

// ParseStatus validates a lifecycle status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusInProgress, StatusWaiting, StatusResolved, StatusClosed:
		return Status(s), nil
	}
	return "", fmt.Errorf("invalid ticket status %q", s)
}

// Priority is the ordered urgency scale. P0 is the most urgent.
type Priority string

const (
	PriorityP0 Priority = "P0" // critical: system down, data loss, security breach
	PriorityP1 Priority = "P1" // high: core functionality broken, urgent
	PriorityP2 Priority = "P2" // medium: feature broken, workaround available
	PriorityP3 Priority = "P3" // low: minor, cosmetic, question
)

// ParsePriority validates a priority string against the enumeration.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityP0, PriorityP1, PriorityP2, PriorityP3:
		return Priority(s), nil
	}
	return "", fmt.Errorf("invalid priority %q", s)
}

// Ticket is the aggregate for a support request. The ID is immutable once
// created; everything else may change over the lifecycle.
type Ticket struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CustomerEmail string    `json:"customer_email"`
	Status        Status    `json:"status"`
	Priority      Priority  `json:"priority,omitempty"`
	Assignee      string    `json:"assigned_to,omitempty"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Snapshot is the immutable view of ticket content that triage operates on.
// Passing it by value keeps a triage run independent of later ticket edits.
type Snapshot struct {
	Title         string
	Description   string
	CustomerEmail string
	Tags          []string
}

// Snapshot captures the triage-relevant content of the ticket.
func (t *Ticket) Snapshot() Snapshot {
	tags := make([]string, len(t.Tags))
	copy(tags, t.Tags)
	return Snapshot{
		Title:         t.Title,
		Description:   t.Description,
		CustomerEmail: t.CustomerEmail,
		Tags:          tags,
	}
}

// Text returns the case-folded searchable content of the snapshot,
// used by the expertise-matching heuristic.
func (s Snapshot) Text() string {
	parts := []string{s.Title, s.Description}
	parts = append(parts, s.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

// Validate checks the fields required to create a ticket.
func (s Snapshot) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(s.Description) == "" {
		return fmt.Errorf("description is required")
	}
	if !strings.Contains(s.CustomerEmail, "@") {
		return fmt.Errorf("invalid customer email %q", s.CustomerEmail)
	}
	return nil
}
