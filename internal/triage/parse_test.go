package triage

import (
	"strings"
	"testing"

	"github.com/deskhivehq/deskhive/internal/directory"
	"github.com/deskhivehq/deskhive/internal/ticket"
)

func TestParseTriageResponse_Valid(t *testing.T) {
	t.Parallel()

	p, err := parseTriageResponse(validBody())
	if err != nil {
		t.Fatalf("parseTriageResponse() error = %v", err)
	}
	if p.Priority != ticket.PriorityP0 {
		t.Errorf("priority = %q, want P0", p.Priority)
	}
	if p.Confidence != 0.92 {
		t.Errorf("confidence = %v, want 0.92", p.Confidence)
	}
	if p.Assignee != "Bob Martinez" {
		t.Errorf("assignee = %q, want Bob Martinez", p.Assignee)
	}
}

func TestParseTriageResponse_JSONWrappedInProse(t *testing.T) {
	t.Parallel()

	raw := "Here is my triage analysis:\n\n" + validBody() + "\n\nLet me know if you need more."
	p, err := parseTriageResponse(raw)
	if err != nil {
		t.Fatalf("parseTriageResponse() error = %v", err)
	}
	if p.Priority != ticket.PriorityP0 {
		t.Errorf("priority = %q, want P0", p.Priority)
	}
}

func TestParseTriageResponse_NullAssignee(t *testing.T) {
	t.Parallel()

	raw := `{
		"priority": "P3",
		"priority_confidence": 0.6,
		"priority_rationale": "Just a question.",
		"suggested_assignee": null,
		"assignee_rationale": "Anyone can take this.",
		"reply_draft": "Happy to help with your question."
	}`
	p, err := parseTriageResponse(raw)
	if err != nil {
		t.Fatalf("parseTriageResponse() error = %v", err)
	}
	if p.Assignee != "" {
		t.Errorf("assignee = %q, want empty", p.Assignee)
	}
	if p.AssigneeRationale != "" {
		t.Errorf("assignee rationale = %q, want cleared when no assignee", p.AssigneeRationale)
	}
}

func TestParseTriageResponse_Rejects(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
	}{
		{"no json", "the ticket looks urgent to me"},
		{"empty", ""},
		{"broken json", `{"priority": "P1",`},
		{"bad priority", `{"priority":"urgent","priority_confidence":0.8,"priority_rationale":"x","reply_draft":"y"}`},
		{"missing confidence", `{"priority":"P1","priority_rationale":"x","reply_draft":"y"}`},
		{"confidence too high", `{"priority":"P1","priority_confidence":1.5,"priority_rationale":"x","reply_draft":"y"}`},
		{"confidence negative", `{"priority":"P1","priority_confidence":-0.1,"priority_rationale":"x","reply_draft":"y"}`},
		{"missing rationale", `{"priority":"P1","priority_confidence":0.8,"reply_draft":"y"}`},
		{"blank rationale", `{"priority":"P1","priority_confidence":0.8,"priority_rationale":"  ","reply_draft":"y"}`},
		{"missing reply", `{"priority":"P1","priority_confidence":0.8,"priority_rationale":"x"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p, err := parseTriageResponse(tc.raw)
			if err == nil {
				t.Fatalf("parseTriageResponse(%q) = %+v, want error", tc.raw, p)
			}
			kind, ok := KindOf(err)
			if !ok || kind != KindMalformedResponse {
				t.Errorf("error kind = %v (classified=%v), want malformed_response", kind, ok)
			}
		})
	}
}

func TestTruncateWords(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		in        string
		max       int
		want      string
		truncated bool
	}{
		{"under limit", "one two three", 5, "one two three", false},
		{"at limit", "one two three", 3, "one two three", false},
		{"over limit", "one two three four", 3, "one two three", true},
		{"collapses whitespace on cut", "one  two\tthree four", 3, "one two three", true},
		{"empty", "", 3, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, truncated := truncateWords(tc.in, tc.max)
			if got != tc.want || truncated != tc.truncated {
				t.Errorf("truncateWords(%q, %d) = (%q, %v), want (%q, %v)",
					tc.in, tc.max, got, truncated, tc.want, tc.truncated)
			}
		})
	}
}

func TestBuildTriagePrompt(t *testing.T) {
	t.Parallel()

	snap := ticket.Snapshot{
		Title:         "Cannot log in",
		Description:   "2FA codes are rejected",
		CustomerEmail: "user@example.com",
	}
	prompt := buildTriagePrompt(snap, directory.Default(), 50)

	for _, want := range []string{"Cannot log in", "2FA codes are rejected", "Tags: None", "max 50 words"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
