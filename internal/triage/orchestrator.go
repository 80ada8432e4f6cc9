package triage

import (
	"context"
	"errors"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/deskhivehq/deskhive/internal/directory"
	"github.com/deskhivehq/deskhive/internal/ticket"
)

const (
	// DefaultTimeout is the hard wall-clock deadline on the external call.
	DefaultTimeout = 5 * time.Second

	// DefaultMaxReplyWords bounds the generated reply draft.
	DefaultMaxReplyWords = 120

	// ResponseTokens caps the model's output size.
	ResponseTokens = 1500

	// triageTemperature keeps the structured output stable across runs.
	triageTemperature = 0.3
)

// Triager is the caller-visible triage contract, satisfied by both the
// Orchestrator and the local Fallback.
type Triager interface {
	Triage(ctx context.Context, snap ticket.Snapshot) (*Result, error)
}

// Hooks are optional observability callbacks fired during a run.
// Nil members are skipped.
type Hooks struct {
	OnLLMCall  func(inputTokens, outputTokens int, duration float64)
	OnComplete func(e *CompleteEvent)
}

// CompleteEvent summarizes a finished run for metrics.
type CompleteEvent struct {
	Outcome         string // "success" or an error kind
	Model           string
	Confidence      float64
	Duration        float64
	TokensIn        int
	TokensOut       int
	ReplyTruncated  bool
	AssigneeDropped string // "", "unknown_name" or "low_confidence"
}

// Options tune one orchestrator instance. Zero values take the defaults.
type Options struct {
	Timeout       time.Duration
	MaxReplyWords int

	// MinAssigneeConfidence suppresses the assignee suggestion when the
	// priority confidence falls below it. Zero disables the check.
	MinAssigneeConfidence float64
}

// Orchestrator performs one bounded LLM call per triage and validates the
// structured result. It holds no mutable state, so concurrent Triage calls
// for different tickets are independent.
type Orchestrator struct {
	provider Provider
	dir      *directory.Directory
	logger   log.Logger
	hooks    Hooks

	timeout       time.Duration
	maxReplyWords int
	minConfidence float64
}

// NewOrchestrator creates a new triage orchestrator.
func NewOrchestrator(provider Provider, dir *directory.Directory, logger log.Logger, hooks Hooks, opts Options) *Orchestrator {
	if logger == nil {
		logger = log.Nop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxReplyWords <= 0 {
		opts.MaxReplyWords = DefaultMaxReplyWords
	}
	return &Orchestrator{
		provider:      provider,
		dir:           dir,
		logger:        logger,
		hooks:         hooks,
		timeout:       opts.Timeout,
		maxReplyWords: opts.MaxReplyWords,
		minConfidence: opts.MinAssigneeConfidence,
	}
}

// Triage builds the prompt, invokes the provider exactly once under the
// deadline, and validates and normalizes the response. There is no internal
// retry: a retry decision belongs to the caller, where it stays visible.
func (o *Orchestrator) Triage(ctx context.Context, snap ticket.Snapshot) (*Result, error) {
	prompt := buildTriagePrompt(snap, o.dir, o.maxReplyWords)

	start := time.Now()

	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	comp, err := o.provider.Complete(cctx, &CompletionRequest{
		MaxTokens:   ResponseTokens,
		Temperature: triageTemperature,
		Prompt:      prompt,
	})
	llmDur := time.Since(start).Seconds()

	if err != nil {
		terr := o.classify(err)
		o.logger.Error(ctx, terr, "llm call failed", "kind", terr.Kind, "title", snap.Title)
		o.complete(&CompleteEvent{Outcome: string(terr.Kind), Duration: llmDur})
		return nil, terr
	}

	if o.hooks.OnLLMCall != nil {
		o.hooks.OnLLMCall(comp.Usage.InputTokens, comp.Usage.OutputTokens, llmDur)
	}

	p, err := parseTriageResponse(comp.Text)
	if err != nil {
		var terr *Error
		errors.As(err, &terr)
		o.logger.Error(ctx, err, "response validation failed", "model", comp.Model, "title", snap.Title)
		o.complete(&CompleteEvent{
			Outcome:   string(terr.Kind),
			Model:     comp.Model,
			Duration:  time.Since(start).Seconds(),
			TokensIn:  comp.Usage.InputTokens,
			TokensOut: comp.Usage.OutputTokens,
		})
		return nil, err
	}

	res := &Result{
		Priority:          p.Priority,
		Confidence:        p.Confidence,
		PriorityRationale: p.PriorityRationale,
		Assignee:          p.Assignee,
		AssigneeRationale: p.AssigneeRationale,
		ReplyDraft:        p.ReplyDraft,
		Model:             comp.Model,
		Usage:             comp.Usage,
	}

	res.ReplyDraft, res.ReplyTruncated = truncateWords(res.ReplyDraft, o.maxReplyWords)
	if res.ReplyTruncated {
		o.logger.Info(ctx, "reply draft truncated", "max_words", o.maxReplyWords)
	}

	// Never surface an assignee the directory does not know, and never
	// fuzzy-match toward one.
	dropped := ""
	if res.Assignee != "" && !o.dir.Contains(res.Assignee) {
		o.logger.Info(ctx, "dropping unknown assignee", "assignee", res.Assignee)
		res.Assignee, res.AssigneeRationale = "", ""
		dropped = "unknown_name"
	}
	if res.Assignee != "" && o.minConfidence > 0 && res.Confidence < o.minConfidence {
		o.logger.Info(ctx, "dropping low-confidence assignee",
			"assignee", res.Assignee, "confidence", res.Confidence, "min", o.minConfidence)
		res.Assignee, res.AssigneeRationale = "", ""
		dropped = "low_confidence"
	}

	res.Duration = time.Since(start).Seconds()
	res.TriagedAt = time.Now()

	o.complete(&CompleteEvent{
		Outcome:         "success",
		Model:           res.Model,
		Confidence:      res.Confidence,
		Duration:        res.Duration,
		TokensIn:        res.Usage.InputTokens,
		TokensOut:       res.Usage.OutputTokens,
		ReplyTruncated:  res.ReplyTruncated,
		AssigneeDropped: dropped,
	})

	o.logger.Info(ctx, "triage complete",
		"priority", res.Priority,
		"confidence", res.Confidence,
		"assignee", res.Assignee,
		"duration", res.Duration,
		"truncated", res.ReplyTruncated,
	)
	return res, nil
}

// classify maps a provider failure onto the error taxonomy. Providers may
// pre-classify (configuration vs transport); deadline expiry always wins.
func (o *Orchestrator) classify(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return Errorf(KindTimeout, err, "deadline of %s exceeded", o.timeout)
	}
	var terr *Error
	if errors.As(err, &terr) {
		return terr
	}
	return Errorf(KindTransport, err, "inference call failed")
}

func (o *Orchestrator) complete(e *CompleteEvent) {
	if o.hooks.OnComplete != nil {
		o.hooks.OnComplete(e)
	}
}
