package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"
)

// ErrNotFound is returned when the referenced ticket does not exist.
var ErrNotFound = errors.New("ticket not found")

// Service is the business boundary for ticket CRUD. Every state change
// appends an activity event alongside the write.
type Service struct {
	store  Store
	logger log.Logger
}

// NewService creates a new ticket service.
func NewService(store Store, logger log.Logger) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{store: store, logger: logger}
}

// Create validates and stores a new ticket, recording a "created" event.
func (s *Service) Create(ctx context.Context, snap Snapshot) (*Ticket, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	t := &Ticket{
		ID:            ulid.Make().String(),
		Title:         snap.Title,
		Description:   snap.Description,
		CustomerEmail: snap.CustomerEmail,
		Tags:          snap.Tags,
		Status:        StatusOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}

	if err := s.store.CreateTicket(ctx, t); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	s.record(ctx, t.ID, ActionCreated, "system",
		fmt.Sprintf("Ticket created by %s", t.CustomerEmail),
		map[string]any{"title": t.Title},
	)

	s.logger.Info(ctx, "ticket created", "ticket_id", t.ID, "title", t.Title)
	return t, nil
}

// Get retrieves a ticket by ID.
func (s *Service) Get(ctx context.Context, id string) (*Ticket, error) {
	t, ok, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

// List returns tickets matching the filter, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]*Ticket, error) {
	return s.store.ListTickets(ctx, f)
}

// Update is a partial update. Nil fields are left untouched. Changed fields
// are summarized in an "updated" activity event.
type Update struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	Assignee    *string
	Tags        []string
}

// Update applies a partial update to a ticket.
func (s *Service) Update(ctx context.Context, id string, u Update) (*Ticket, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var changes []string
	set := func(field string, old, val string) {
		changes = append(changes, fmt.Sprintf("%s: %s -> %s", field, old, val))
	}

	if u.Title != nil && *u.Title != t.Title {
		set("title", t.Title, *u.Title)
		t.Title = *u.Title
	}
	if u.Description != nil && *u.Description != t.Description {
		set("description", t.Description, *u.Description)
		t.Description = *u.Description
	}
	if u.Status != nil && *u.Status != t.Status {
		set("status", string(t.Status), string(*u.Status))
		t.Status = *u.Status
	}
	if u.Priority != nil && *u.Priority != t.Priority {
		set("priority", string(t.Priority), string(*u.Priority))
		t.Priority = *u.Priority
	}
	if u.Assignee != nil && *u.Assignee != t.Assignee {
		set("assigned_to", t.Assignee, *u.Assignee)
		t.Assignee = *u.Assignee
	}
	if u.Tags != nil {
		set("tags", strings.Join(t.Tags, ","), strings.Join(u.Tags, ","))
		t.Tags = u.Tags
	}

	if len(changes) == 0 {
		return t, nil
	}

	t.UpdatedAt = time.Now()
	if err := s.store.UpdateTicket(ctx, t); err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}

	s.record(ctx, t.ID, ActionUpdated, "user",
		"Ticket updated: "+strings.Join(changes, ", "), nil)

	return t, nil
}

// Delete removes a ticket with its history and triage result.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteTicket(ctx, id); err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	s.logger.Info(ctx, "ticket deleted", "ticket_id", id)
	return nil
}

// SaveReply records that a reply draft was accepted or edited for a ticket.
// The reply itself goes out through the support tooling, not through us.
func (s *Service) SaveReply(ctx context.Context, id, replyText string, accepted bool) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	action := "accepted"
	if !accepted {
		action = "edited"
	}

	preview := replyText
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}

	s.record(ctx, id, ActionReplySaved, "user",
		fmt.Sprintf("Reply draft %s and saved", action),
		map[string]any{"reply_text": preview, "accepted": accepted},
	)
	return nil
}

// Activity lists a ticket's history, oldest first.
func (s *Service) Activity(ctx context.Context, id string) ([]*ActivityEvent, error) {
	return s.store.ListActivity(ctx, id)
}

// record appends an activity event, logging rather than failing the operation
// if the append itself errors. History is observability, not correctness.
func (s *Service) record(ctx context.Context, ticketID string, action Action, actor, desc string, meta map[string]any) {
	ev := &ActivityEvent{
		ID:          ulid.Make().String(),
		TicketID:    ticketID,
		Action:      action,
		Actor:       actor,
		Description: desc,
		Metadata:    meta,
		CreatedAt:   time.Now(),
	}
	if err := s.store.AppendActivity(ctx, ev); err != nil {
		s.logger.Error(ctx, err, "failed to append activity", "ticket_id", ticketID, "action", action)
	}
}
