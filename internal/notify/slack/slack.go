// Package slack sends triage notifications to Slack via incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/deskhivehq/deskhive/internal/ticket"
	"github.com/deskhivehq/deskhive/internal/triage"
)

const (
	maxRationaleLen = 1000
	maxReplyLen     = 2000
	httpTimeout     = 10 * time.Second
)

// Notifier posts completed triage results to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, Send is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Send posts a triage result to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Send(ctx context.Context, tk *ticket.Ticket, r *triage.Result) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(tk, r)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(tk *ticket.Ticket, r *triage.Result) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(tk, r),
			{"type": "divider"},
			fieldsBlock(tk, r),
			{"type": "divider"},
			rationaleBlock(r),
			replyBlock(r),
			{"type": "divider"},
			contextBlock(tk, r),
		},
	}
}

func headerBlock(tk *ticket.Ticket, r *triage.Result) map[string]any {
	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": fmt.Sprintf("%s %s Ticket: %s", priorityEmoji(r.Priority), r.Priority, tk.Title),
		},
	}
}

func fieldsBlock(tk *ticket.Ticket, r *triage.Result) map[string]any {
	assignee := r.Assignee
	if assignee == "" {
		assignee = "unassigned"
	}

	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Priority:* %s (%.0f%% confidence)", r.Priority, r.Confidence*100),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Assignee:* %s", assignee),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Customer:* %s", tk.CustomerEmail),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Duration:* %.1fs", r.Duration),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func rationaleBlock(r *triage.Result) map[string]any {
	text := truncate(r.PriorityRationale, maxRationaleLen)
	if r.AssigneeRationale != "" {
		text += "\n" + truncate(r.AssigneeRationale, maxRationaleLen)
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Rationale*\n\n%s", text),
		},
	}
}

func replyBlock(r *triage.Result) map[string]any {
	text := truncate(r.ReplyDraft, maxReplyLen)
	if r.ReplyTruncated {
		text += "\n_(draft shortened to the word limit)_"
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Suggested reply*\n\n%s", text),
		},
	}
}

func contextBlock(tk *ticket.Ticket, r *triage.Result) map[string]any {
	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("deskhive • ticket %s • %s • %s",
				tk.ID, shortModel(r.Model), r.TriagedAt.UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func priorityEmoji(p ticket.Priority) string {
	switch p {
	case ticket.PriorityP0:
		return "\U0001f534" // red circle
	case ticket.PriorityP1:
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f7e2" // green circle
	}
}

// dateModelRe matches model names ending with a YYYYMMDD date suffix.
var dateModelRe = regexp.MustCompile(`-\d{8}$`)

func shortModel(model string) string {
	if model == "" {
		return "local heuristic"
	}
	return dateModelRe.ReplaceAllString(model, "")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
