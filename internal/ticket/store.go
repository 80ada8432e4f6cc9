package ticket

import "context"

// Filter narrows ticket listings. Zero values match everything.
type Filter struct {
	Status   Status
	Priority Priority
}

// Store is the persistence interface for tickets and their activity history.
type Store interface {
	CreateTicket(ctx context.Context, t *Ticket) error
	GetTicket(ctx context.Context, id string) (*Ticket, bool, error)
	ListTickets(ctx context.Context, f Filter) ([]*Ticket, error)
	UpdateTicket(ctx context.Context, t *Ticket) error

	// DeleteTicket removes the ticket and everything hanging off it
	// (activity history and any triage result).
	DeleteTicket(ctx context.Context, id string) error

	AppendActivity(ctx context.Context, ev *ActivityEvent) error
	ListActivity(ctx context.Context, ticketID string) ([]*ActivityEvent, error)
}
