package triage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deskhivehq/deskhive/internal/directory"
	"github.com/deskhivehq/deskhive/internal/ticket"
)

// Urgency keyword sets for the local heuristic, checked against case-folded
// ticket text. Broad-impact words escalate critical matches to P0.
var (
	criticalWords = []string{"down", "outage", "unreachable", "data loss", "security", "breach", "crash", "cannot access"}
	broadWords    = []string{"all customers", "all users", "everyone", "production"}
	lowWords      = []string{"how do i", "how to", "question", "feature request", "typo", "cosmetic"}
)

// Fallback is a deterministic local triage engine with the same contract as
// the Orchestrator. It exists so the triage flow can be exercised without the
// external inference service: as a test double, and as the engine when the
// server runs in local mode.
type Fallback struct {
	dir           *directory.Directory
	maxReplyWords int
}

// NewFallback creates a local triage engine.
func NewFallback(dir *directory.Directory, maxReplyWords int) *Fallback {
	if maxReplyWords <= 0 {
		maxReplyWords = DefaultMaxReplyWords
	}
	return &Fallback{dir: dir, maxReplyWords: maxReplyWords}
}

// Triage classifies the snapshot with keyword heuristics. It never fails and
// makes no network calls.
func (f *Fallback) Triage(_ context.Context, snap ticket.Snapshot) (*Result, error) {
	start := time.Now()
	text := snap.Text()

	prio, rationale := classifyPriority(text)

	res := &Result{
		Priority:          prio,
		Confidence:        0.5, // heuristic guess, deliberately modest
		PriorityRationale: rationale,
	}

	if e, n, ok := f.dir.Match(text); ok {
		res.Assignee = e.Name
		res.AssigneeRationale = fmt.Sprintf("%s matched %d expertise keyword(s) in the ticket text.", e.Name, n)
	}

	draft := fmt.Sprintf(
		"Thank you for reaching out about %q. We understand how disruptive this is and we are sorry for the trouble. "+
			"Your ticket has been logged and a member of our team will investigate and follow up with you shortly.",
		snap.Title,
	)
	res.ReplyDraft, res.ReplyTruncated = truncateWords(draft, f.maxReplyWords)

	res.Duration = time.Since(start).Seconds()
	res.TriagedAt = time.Now()
	return res, nil
}

func classifyPriority(text string) (ticket.Priority, string) {
	critical := containsAny(text, criticalWords)
	broad := containsAny(text, broadWords)

	switch {
	case critical && broad:
		return ticket.PriorityP0, "Ticket text indicates a critical failure with broad customer impact."
	case critical:
		return ticket.PriorityP1, "Ticket text indicates broken core functionality."
	case containsAny(text, lowWords):
		return ticket.PriorityP3, "Ticket text reads as a question or minor request."
	default:
		return ticket.PriorityP2, "No critical indicators found; treated as a standard issue."
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
