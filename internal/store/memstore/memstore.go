// Package memstore provides an in-memory implementation of ticket.Store and
// triage.Store. Suitable for dev/testing.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/deskhivehq/deskhive/internal/ticket"
	"github.com/deskhivehq/deskhive/internal/triage"
)

// Store holds tickets, triage results, and activity history in memory.
// All accessors work on copies so callers never share mutable state.
type Store struct {
	mu       sync.RWMutex
	tickets  map[string]*ticket.Ticket          // ticket ID -> ticket
	results  map[string]*triage.Result          // ticket ID -> latest result
	activity map[string][]*ticket.ActivityEvent // ticket ID -> events, append order
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		tickets:  make(map[string]*ticket.Ticket),
		results:  make(map[string]*triage.Result),
		activity: make(map[string][]*ticket.ActivityEvent),
	}
}

// CreateTicket stores a copy of the ticket.
func (s *Store) CreateTicket(_ context.Context, t *ticket.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tickets[t.ID]; exists {
		return fmt.Errorf("ticket %s already exists", t.ID)
	}
	s.tickets[t.ID] = copyTicket(t)
	return nil
}

// GetTicket retrieves a ticket by ID. Returns a copy.
func (s *Store) GetTicket(_ context.Context, id string) (*ticket.Ticket, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, false, nil
	}
	return copyTicket(t), true, nil
}

// ListTickets returns tickets matching the filter, newest first.
func (s *Store) ListTickets(_ context.Context, f ticket.Filter) ([]*ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ticket.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		out = append(out, copyTicket(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateTicket replaces the stored ticket.
func (s *Store) UpdateTicket(_ context.Context, t *ticket.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[t.ID]; !ok {
		return fmt.Errorf("ticket %s not found", t.ID)
	}
	s.tickets[t.ID] = copyTicket(t)
	return nil
}

// DeleteTicket removes the ticket, its triage result, and its history.
func (s *Store) DeleteTicket(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tickets, id)
	delete(s.results, id)
	delete(s.activity, id)
	return nil
}

// AppendActivity records an event at the end of the ticket's history.
func (s *Store) AppendActivity(_ context.Context, ev *ticket.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *ev
	s.activity[ev.TicketID] = append(s.activity[ev.TicketID], &cp)
	return nil
}

// ListActivity returns a ticket's history, oldest first.
func (s *Store) ListActivity(_ context.Context, ticketID string) ([]*ticket.ActivityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	evs := s.activity[ticketID]
	out := make([]*ticket.ActivityEvent, len(evs))
	for i, ev := range evs {
		cp := *ev
		out[i] = &cp
	}
	return out, nil
}

// Put stores a copy of the triage result, replacing any previous one for the
// same ticket.
func (s *Store) Put(_ context.Context, r *triage.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.results[r.TicketID] = &cp
	return nil
}

// GetByTicket retrieves the latest triage result for a ticket. Returns a copy.
func (s *Store) GetByTicket(_ context.Context, ticketID string) (*triage.Result, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[ticketID]
	if !ok {
		return nil, false, nil
	}
	cp := *r
	return &cp, true, nil
}

func copyTicket(t *ticket.Ticket) *ticket.Ticket {
	cp := *t
	cp.Tags = make([]string, len(t.Tags))
	copy(cp.Tags, t.Tags)
	return &cp
}
