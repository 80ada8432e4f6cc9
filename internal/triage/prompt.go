package triage

import (
	"fmt"
	"strings"

	"github.com/deskhivehq/deskhive/internal/directory"
	"github.com/deskhivehq/deskhive/internal/ticket"
)

// buildTriagePrompt deterministically constructs the bounded instruction for
// one triage run: ticket content, the full expertise directory as context,
// and the exact output contract the response validator will enforce.
func buildTriagePrompt(snap ticket.Snapshot, dir *directory.Directory, maxReplyWords int) string {
	var team strings.Builder
	for _, e := range dir.Entries() {
		fmt.Fprintf(&team, "- %s: Expert in %s\n", e.Name, strings.Join(e.Keywords, ", "))
	}

	tags := "None"
	if len(snap.Tags) > 0 {
		tags = strings.Join(snap.Tags, ", ")
	}

	return fmt.Sprintf(`You are a helpdesk triage assistant. Analyze the following support ticket and provide a structured triage response.

**Ticket Details:**
Title: %s
Description: %s
Customer Email: %s
Tags: %s

**Available Team Members:**
%s
**Your Task:**
Provide a JSON response with the following structure:

{
  "priority": "P0 or P1 or P2 or P3",
  "priority_confidence": 0.0-1.0,
  "priority_rationale": "Brief explanation (1-2 sentences)",
  "suggested_assignee": "Name from team list or null",
  "assignee_rationale": "Why this person is best suited (1 sentence) or null",
  "reply_draft": "Professional first reply to customer (max %d words)"
}

**Priority Guidelines:**
- P0 (Critical): System down, data loss, security breach, many users affected
- P1 (High): Core functionality broken, significant business impact, urgent
- P2 (Medium): Feature not working, moderate impact, workaround available
- P3 (Low): Minor issue, cosmetic, question, feature request

**Reply Draft Requirements:**
- Acknowledge the issue
- Show empathy
- Indicate next steps
- Be professional and concise (max %d words)
- Reference specific ticket details

Respond ONLY with valid JSON, no additional text.`,
		snap.Title, snap.Description, snap.CustomerEmail, tags, team.String(),
		maxReplyWords, maxReplyWords,
	)
}
