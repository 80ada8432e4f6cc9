// Package claude implements the triage.Provider interface on top of the
// Anthropic messages API.
package claude

import (
	"context"
	"errors"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/deskhivehq/deskhive/internal/triage"
)

// Client is a triage.Provider backed by the Anthropic SDK.
type Client struct {
	sdk   anthropic.Client
	model string
}

// New creates a new Claude client for the given API key and model name.
func New(apiKey, model string) *Client {
	return &Client{
		sdk:   anthropic.NewClient(option.WithAPIKey(apiKey)),
		model: model,
	}
}

// Complete sends one message request and returns the text completion.
// Failures are classified for the orchestrator: credential rejections are
// configuration errors, everything else transport. Context expiry passes
// through unwrapped so the caller can detect its own deadline.
func (c *Client) Complete(ctx context.Context, req *triage.CompletionRequest) (*triage.Completion, error) {
	msg, err := c.sdk.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return nil, classifyErr(err)
	}

	return completionFromMessage(msg), nil
}

// completionFromMessage flattens the SDK response into the provider contract.
// Only text blocks carry triage content.
func completionFromMessage(msg *anthropic.Message) *triage.Completion {
	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return &triage.Completion{
		Text:  text,
		Model: string(msg.Model),
		Usage: triage.Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}
}

// classifyErr maps SDK failures onto the triage error taxonomy.
func classifyErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		// let the orchestrator attribute this to its own deadline
		return err
	}

	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return triage.Errorf(triage.KindConfiguration, err, "anthropic rejected credentials (status %d)", apierr.StatusCode)
		default:
			return triage.Errorf(triage.KindTransport, err, "anthropic api error (status %d)", apierr.StatusCode)
		}
	}

	return triage.Errorf(triage.KindTransport, err, "anthropic request failed")
}
