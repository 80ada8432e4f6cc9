package triage

import (
	"encoding/json"
	"strings"

	"github.com/deskhivehq/deskhive/internal/ticket"
)

// triageResponse is the untrusted wire shape of the model's reply. Pointers
// distinguish missing fields from zero values so validation can reject
// instead of coerce.
type triageResponse struct {
	Priority           string   `json:"priority"`
	PriorityConfidence *float64 `json:"priority_confidence"`
	PriorityRationale  string   `json:"priority_rationale"`
	SuggestedAssignee  string   `json:"suggested_assignee"`
	AssigneeRationale  string   `json:"assignee_rationale"`
	ReplyDraft         string   `json:"reply_draft"`
}

// parsed is the validated, typed form handed back to the orchestrator.
type parsed struct {
	Priority          ticket.Priority
	Confidence        float64
	PriorityRationale string
	Assignee          string
	AssigneeRationale string
	ReplyDraft        string
}

// parseTriageResponse validates raw model output into typed fields. Every
// violation is a malformed_response error; nothing is ever defaulted, since a
// silent default would misrepresent AI confidence to the user.
func parseTriageResponse(raw string) (*parsed, error) {
	// Models occasionally wrap the JSON in prose despite instructions.
	// Take the outermost braces and nothing else.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, Errorf(KindMalformedResponse, nil, "no JSON object in response")
	}

	var resp triageResponse
	if err := json.Unmarshal([]byte(raw[start:end+1]), &resp); err != nil {
		return nil, Errorf(KindMalformedResponse, err, "invalid JSON in response")
	}

	prio, err := ticket.ParsePriority(resp.Priority)
	if err != nil {
		return nil, Errorf(KindMalformedResponse, err, "priority outside enumeration")
	}

	if resp.PriorityConfidence == nil {
		return nil, Errorf(KindMalformedResponse, nil, "missing required field priority_confidence")
	}
	conf := *resp.PriorityConfidence
	if conf < 0.0 || conf > 1.0 {
		return nil, Errorf(KindMalformedResponse, nil, "confidence %v outside [0,1]", conf)
	}

	if strings.TrimSpace(resp.PriorityRationale) == "" {
		return nil, Errorf(KindMalformedResponse, nil, "missing required field priority_rationale")
	}
	if strings.TrimSpace(resp.ReplyDraft) == "" {
		return nil, Errorf(KindMalformedResponse, nil, "missing required field reply_draft")
	}

	p := &parsed{
		Priority:          prio,
		Confidence:        conf,
		PriorityRationale: resp.PriorityRationale,
		Assignee:          resp.SuggestedAssignee,
		AssigneeRationale: resp.AssigneeRationale,
		ReplyDraft:        resp.ReplyDraft,
	}
	// Rationale without an assignee makes no sense downstream.
	if p.Assignee == "" {
		p.AssigneeRationale = ""
	}
	return p, nil
}

// truncateWords shortens s to at most max words at a word boundary, keeping
// the leading content intact. Returns the (possibly shortened) text and
// whether truncation happened.
func truncateWords(s string, max int) (string, bool) {
	words := strings.Fields(s)
	if len(words) <= max {
		return s, false
	}
	return strings.Join(words[:max], " "), true
}
