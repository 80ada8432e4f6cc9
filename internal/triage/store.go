package triage

import "context"

// Store is the persistence interface for triage results. The relationship to
// tickets is one-to-one, most-recent-wins: Put replaces any prior result for
// the same ticket wholesale, never merges.
type Store interface {
	Put(ctx context.Context, r *Result) error
	GetByTicket(ctx context.Context, ticketID string) (*Result, bool, error)
}
