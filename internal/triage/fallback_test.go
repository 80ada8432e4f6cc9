package triage

import (
	"context"
	"strings"
	"testing"

	"github.com/deskhivehq/deskhive/internal/directory"
	"github.com/deskhivehq/deskhive/internal/ticket"
)

func TestFallback_CriticalBroadImpact(t *testing.T) {
	t.Parallel()

	f := NewFallback(directory.Default(), 0)
	res, err := f.Triage(context.Background(), ticket.Snapshot{
		Title:       "Production outage",
		Description: "The service is down for all customers since 09:00",
	})
	if err != nil {
		t.Fatalf("Triage() error = %v", err)
	}
	if res.Priority != ticket.PriorityP0 {
		t.Errorf("priority = %q, want P0", res.Priority)
	}
	if res.Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", res.Confidence)
	}
}

func TestFallback_PriorityHeuristics(t *testing.T) {
	t.Parallel()

	f := NewFallback(directory.Default(), 0)

	cases := []struct {
		name string
		snap ticket.Snapshot
		want ticket.Priority
	}{
		{
			"critical without broad impact",
			ticket.Snapshot{Title: "App crash", Description: "The editor crashes when I paste an image"},
			ticket.PriorityP1,
		},
		{
			"question",
			ticket.Snapshot{Title: "How do I export reports?", Description: "Looking for the CSV export button"},
			ticket.PriorityP3,
		},
		{
			"default",
			ticket.Snapshot{Title: "Wrong totals", Description: "The dashboard shows stale numbers"},
			ticket.PriorityP2,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res, err := f.Triage(context.Background(), tc.snap)
			if err != nil {
				t.Fatalf("Triage() error = %v", err)
			}
			if res.Priority != tc.want {
				t.Errorf("priority = %q, want %q", res.Priority, tc.want)
			}
		})
	}
}

func TestFallback_AssigneeMatch(t *testing.T) {
	t.Parallel()

	f := NewFallback(directory.Default(), 0)
	res, err := f.Triage(context.Background(), ticket.Snapshot{
		Title:       "Database down",
		Description: "Every query is slow and the connection pool is exhausted",
	})
	if err != nil {
		t.Fatalf("Triage() error = %v", err)
	}
	if res.Assignee != "Bob Martinez" {
		t.Errorf("assignee = %q, want Bob Martinez", res.Assignee)
	}
	if !strings.Contains(res.AssigneeRationale, "expertise keyword") {
		t.Errorf("assignee rationale = %q, want keyword-count explanation", res.AssigneeRationale)
	}
}

func TestFallback_NoAssigneeWhenNothingMatches(t *testing.T) {
	t.Parallel()

	f := NewFallback(directory.Default(), 0)
	res, err := f.Triage(context.Background(), ticket.Snapshot{
		Title:       "Stale totals",
		Description: "Numbers look off by one",
	})
	if err != nil {
		t.Fatalf("Triage() error = %v", err)
	}
	if res.Assignee != "" {
		t.Errorf("assignee = %q, want empty when no keyword matches", res.Assignee)
	}
	if res.AssigneeRationale != "" {
		t.Errorf("assignee rationale = %q, want empty", res.AssigneeRationale)
	}
}

func TestFallback_ReplyMentionsTitle(t *testing.T) {
	t.Parallel()

	f := NewFallback(directory.Default(), 0)
	res, err := f.Triage(context.Background(), ticket.Snapshot{
		Title:       "Invoice totals wrong",
		Description: "Subscription invoice double-charged",
	})
	if err != nil {
		t.Fatalf("Triage() error = %v", err)
	}
	if !strings.Contains(res.ReplyDraft, "Invoice totals wrong") {
		t.Errorf("reply draft %q should reference the ticket title", res.ReplyDraft)
	}
	if res.ReplyTruncated {
		t.Error("template reply should fit the default word budget")
	}
}

func TestFallback_TruncatesReply(t *testing.T) {
	t.Parallel()

	f := NewFallback(directory.Default(), 10)
	res, err := f.Triage(context.Background(), ticket.Snapshot{
		Title:       "Layout broken",
		Description: "CSS is mangled on the settings page",
	})
	if err != nil {
		t.Fatalf("Triage() error = %v", err)
	}
	if !res.ReplyTruncated {
		t.Error("expected ReplyTruncated = true with a 10 word budget")
	}
	if got := len(strings.Fields(res.ReplyDraft)); got > 10 {
		t.Errorf("reply words = %d, want <= 10", got)
	}
}
