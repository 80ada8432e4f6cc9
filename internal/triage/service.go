package triage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/deskhivehq/deskhive/internal/ticket"
)

// ErrInFlight is returned when a triage for the same ticket is already
// running. Repeated requests for one ticket are serialized here, at the
// caller layer, because the Orchestrator itself holds no ticket identity.
var ErrInFlight = errors.New("triage already in flight for this ticket")

// Notifier delivers a completed triage result to an external channel.
type Notifier interface {
	Send(ctx context.Context, tk *ticket.Ticket, r *Result) error
}

// Service is the business boundary for triage operations: it loads the ticket
// snapshot, runs the engine, and on success persists the result, updates the
// ticket, and records the activity event. On failure nothing is written.
type Service struct {
	tickets  ticket.Store
	results  Store
	triager  Triager
	logger   log.Logger
	notifier Notifier

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewService creates a new triage service. notifier may be nil.
func NewService(tickets ticket.Store, results Store, triager Triager, logger log.Logger, notifier Notifier) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		tickets:  tickets,
		results:  results,
		triager:  triager,
		logger:   logger,
		notifier: notifier,
		inflight: make(map[string]struct{}),
	}
}

// Triage runs one triage for the ticket and persists the outcome. Re-triaging
// replaces the previous result (most-recent-wins). A failed run leaves the
// ticket and any prior result untouched.
func (s *Service) Triage(ctx context.Context, ticketID string) (*Result, error) {
	tk, ok, err := s.tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("load ticket: %w", err)
	}
	if !ok {
		return nil, ticket.ErrNotFound
	}

	if !s.acquire(ticketID) {
		return nil, ErrInFlight
	}
	defer s.release(ticketID)

	L := s.logger.With("ticket_id", ticketID, "title", tk.Title)

	res, err := s.triager.Triage(ctx, tk.Snapshot())
	if err != nil {
		// Typed failure from the engine. No partial writes: the first
		// storage touch below happens only on success.
		return nil, err
	}

	res.TicketID = ticketID
	if err := s.results.Put(ctx, res); err != nil {
		return nil, fmt.Errorf("persist triage result: %w", err)
	}

	tk.Priority = res.Priority
	tk.Assignee = res.Assignee
	tk.UpdatedAt = time.Now()
	if err := s.tickets.UpdateTicket(ctx, tk); err != nil {
		return nil, fmt.Errorf("apply triage to ticket: %w", err)
	}

	assignee := res.Assignee
	if assignee == "" {
		assignee = "unassigned"
	}
	ev := &ticket.ActivityEvent{
		ID:          ulid.Make().String(),
		TicketID:    ticketID,
		Action:      ticket.ActionTriaged,
		Actor:       "ai_system",
		Description: fmt.Sprintf("Auto-triaged as %s and assigned to %s", res.Priority, assignee),
		Metadata: map[string]any{
			"confidence":       res.Confidence,
			"duration_seconds": res.Duration,
			"model":            res.Model,
		},
		CreatedAt: time.Now(),
	}
	if err := s.tickets.AppendActivity(ctx, ev); err != nil {
		L.Error(ctx, err, "failed to append triage activity")
	}

	s.notify(ctx, L, tk, res)

	return res, nil
}

// Get retrieves the stored triage result for a ticket.
func (s *Service) Get(ctx context.Context, ticketID string) (*Result, bool, error) {
	return s.results.GetByTicket(ctx, ticketID)
}

// notify pushes P0 results to the notifier, best effort. A notification
// failure never affects the triage outcome.
func (s *Service) notify(ctx context.Context, L log.Logger, tk *ticket.Ticket, res *Result) {
	if s.notifier == nil || res.Priority != ticket.PriorityP0 {
		return
	}
	if err := s.notifier.Send(ctx, tk, res); err != nil {
		L.Error(ctx, err, "triage notification failed")
	}
}

func (s *Service) acquire(ticketID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[ticketID]; busy {
		return false
	}
	s.inflight[ticketID] = struct{}{}
	return true
}

func (s *Service) release(ticketID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, ticketID)
}
