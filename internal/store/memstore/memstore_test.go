package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/deskhivehq/deskhive/internal/ticket"
	"github.com/deskhivehq/deskhive/internal/triage"
)

func mkTicket(id string, created time.Time) *ticket.Ticket {
	return &ticket.Ticket{
		ID:            id,
		Title:         "title " + id,
		Description:   "description",
		CustomerEmail: "c@example.com",
		Status:        ticket.StatusOpen,
		Tags:          []string{"tag"},
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestTicketRoundTrip(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	tk := mkTicket("tk-1", time.Now())

	if err := s.CreateTicket(ctx, tk); err != nil {
		t.Fatalf("CreateTicket() error = %v", err)
	}
	if err := s.CreateTicket(ctx, tk); err == nil {
		t.Error("duplicate CreateTicket() should fail")
	}

	got, ok, err := s.GetTicket(ctx, "tk-1")
	if err != nil || !ok {
		t.Fatalf("GetTicket() = (%v, %v), want hit", ok, err)
	}
	if got.Title != tk.Title {
		t.Errorf("title = %q, want %q", got.Title, tk.Title)
	}

	if _, ok, _ := s.GetTicket(ctx, "absent"); ok {
		t.Error("GetTicket(absent) should miss")
	}
}

func TestGetTicketReturnsCopy(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	if err := s.CreateTicket(ctx, mkTicket("tk-1", time.Now())); err != nil {
		t.Fatal(err)
	}

	got, _, _ := s.GetTicket(ctx, "tk-1")
	got.Title = "mutated"
	got.Tags[0] = "mutated"

	again, _, _ := s.GetTicket(ctx, "tk-1")
	if again.Title != "title tk-1" || again.Tags[0] != "tag" {
		t.Error("mutating a returned ticket must not affect the store")
	}
}

func TestListTickets(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	base := time.Now()

	oldest := mkTicket("tk-a", base.Add(-2*time.Hour))
	mid := mkTicket("tk-b", base.Add(-time.Hour))
	mid.Status = ticket.StatusResolved
	newest := mkTicket("tk-c", base)
	newest.Priority = ticket.PriorityP1

	for _, tk := range []*ticket.Ticket{oldest, mid, newest} {
		if err := s.CreateTicket(ctx, tk); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListTickets(ctx, ticket.Filter{})
	if err != nil {
		t.Fatalf("ListTickets() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("tickets = %d, want 3", len(all))
	}
	if all[0].ID != "tk-c" || all[2].ID != "tk-a" {
		t.Errorf("order = %s..%s, want newest first", all[0].ID, all[2].ID)
	}

	open, _ := s.ListTickets(ctx, ticket.Filter{Status: ticket.StatusOpen})
	if len(open) != 2 {
		t.Errorf("open tickets = %d, want 2", len(open))
	}

	p1, _ := s.ListTickets(ctx, ticket.Filter{Priority: ticket.PriorityP1})
	if len(p1) != 1 || p1[0].ID != "tk-c" {
		t.Errorf("P1 tickets = %v, want just tk-c", p1)
	}
}

func TestUpdateTicket(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	tk := mkTicket("tk-1", time.Now())
	if err := s.CreateTicket(ctx, tk); err != nil {
		t.Fatal(err)
	}

	tk.Status = ticket.StatusClosed
	if err := s.UpdateTicket(ctx, tk); err != nil {
		t.Fatalf("UpdateTicket() error = %v", err)
	}
	got, _, _ := s.GetTicket(ctx, "tk-1")
	if got.Status != ticket.StatusClosed {
		t.Errorf("status = %q, want closed", got.Status)
	}

	if err := s.UpdateTicket(ctx, mkTicket("absent", time.Now())); err == nil {
		t.Error("UpdateTicket(absent) should fail")
	}
}

func TestDeleteTicketCascades(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	if err := s.CreateTicket(ctx, mkTicket("tk-1", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, &triage.Result{TicketID: "tk-1", Priority: ticket.PriorityP2}); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendActivity(ctx, &ticket.ActivityEvent{ID: "ev-1", TicketID: "tk-1", Action: ticket.ActionCreated}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteTicket(ctx, "tk-1"); err != nil {
		t.Fatalf("DeleteTicket() error = %v", err)
	}
	if _, ok, _ := s.GetTicket(ctx, "tk-1"); ok {
		t.Error("ticket should be gone")
	}
	if _, ok, _ := s.GetByTicket(ctx, "tk-1"); ok {
		t.Error("triage result should cascade")
	}
	if evs, _ := s.ListActivity(ctx, "tk-1"); len(evs) != 0 {
		t.Errorf("activity = %d events, want cascade to 0", len(evs))
	}
}

func TestActivityAppendOrder(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	for _, id := range []string{"ev-1", "ev-2", "ev-3"} {
		ev := &ticket.ActivityEvent{ID: id, TicketID: "tk-1", Action: ticket.ActionUpdated}
		if err := s.AppendActivity(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}

	evs, err := s.ListActivity(ctx, "tk-1")
	if err != nil {
		t.Fatalf("ListActivity() error = %v", err)
	}
	if len(evs) != 3 {
		t.Fatalf("events = %d, want 3", len(evs))
	}
	for i, want := range []string{"ev-1", "ev-2", "ev-3"} {
		if evs[i].ID != want {
			t.Errorf("evs[%d].ID = %q, want %q", i, evs[i].ID, want)
		}
	}
}

func TestPutOverwrites(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	if err := s.Put(ctx, &triage.Result{TicketID: "tk-1", Priority: ticket.PriorityP2, Confidence: 0.6}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, &triage.Result{TicketID: "tk-1", Priority: ticket.PriorityP0, Confidence: 0.9}); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.GetByTicket(ctx, "tk-1")
	if err != nil || !ok {
		t.Fatalf("GetByTicket() = (%v, %v), want hit", ok, err)
	}
	if got.Priority != ticket.PriorityP0 || got.Confidence != 0.9 {
		t.Errorf("result = %q/%v, want the later P0/0.9", got.Priority, got.Confidence)
	}
}

func TestGetByTicketReturnsCopy(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	if err := s.Put(ctx, &triage.Result{TicketID: "tk-1", ReplyDraft: "original"}); err != nil {
		t.Fatal(err)
	}

	got, _, _ := s.GetByTicket(ctx, "tk-1")
	got.ReplyDraft = "mutated"

	again, _, _ := s.GetByTicket(ctx, "tk-1")
	if again.ReplyDraft != "original" {
		t.Error("mutating a returned result must not affect the store")
	}
}
