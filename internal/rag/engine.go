package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dochub/internal/contextutil"
	"dochub/internal/llm"
	"dochub/internal/retry"
)

// Fixed user-facing answers for the terminal failure states.
const (
	MessageNoDocuments = "Please upload at least one document first."
	MessageUnavailable = "Sorry, the AI service encountered an error. Please try again in a moment."
	MessageAuthError   = "API configuration error. Please check the model API key."
	MessageQuota       = "API quota exceeded. Please try again later."
)

// ErrEmptyQuestion is returned when the question is blank after trimming.
var ErrEmptyQuestion = errors.New("question is empty")

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks dochub/internal/rag Engine,Generator

// Engine answers questions grounded in a caller-supplied document set.
type Engine interface {
	// Ask answers req.Question from req.Documents. The only error is ErrEmptyQuestion; every
	// upstream failure is reported through the result's Outcome and a fixed message.
	Ask(ctx context.Context, req AskRequest) (AnswerResult, error)
}

// Generator produces raw text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Observer receives per-ask measurements.
type Observer interface {
	AskCompleted(outcome Outcome, elapsed time.Duration)
	GenerationAttempt(err error)
}

// Options configures an Engine. Zero fields take the defaults.
type Options struct {
	Scoring       ScoringConfig
	Limit         int
	MaxChunkChars int
	Template      *GroundingTemplate
	Retry         retry.Policy
	Observer      Observer
}

// DefaultOptions returns the historical scoring weights, window limits and a 3-attempt
// retry policy on rate limits with a 2s base delay. Three attempts wait 2s then 4s; a fourth
// attempt is needed for the 8s wait.
func DefaultOptions() Options {
	return Options{
		Scoring:       DefaultScoring(),
		Limit:         DefaultLimit,
		MaxChunkChars: MaxChunkChars,
		Template:      NewGroundingTemplate(),
		Retry: retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			Retryable:   llm.IsRateLimited,
		},
	}
}

type ragEngine struct {
	generator Generator
	opts      Options
}

// NewEngine creates a new grounded answer engine.
func NewEngine(generator Generator, opts Options) Engine {
	defaults := DefaultOptions()
	if opts.Scoring == (ScoringConfig{}) {
		opts.Scoring = defaults.Scoring
	}
	if opts.Limit <= 0 {
		opts.Limit = defaults.Limit
	}
	if opts.MaxChunkChars <= 0 {
		opts.MaxChunkChars = defaults.MaxChunkChars
	}
	if opts.Template == nil {
		opts.Template = defaults.Template
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry.MaxAttempts = defaults.Retry.MaxAttempts
	}
	if opts.Retry.BaseDelay <= 0 {
		opts.Retry.BaseDelay = defaults.Retry.BaseDelay
	}
	if opts.Retry.Retryable == nil {
		opts.Retry.Retryable = defaults.Retry.Retryable
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	return &ragEngine{generator: generator, opts: opts}
}

// Ask answers a question over the supplied documents.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AnswerResult, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return AnswerResult{}, ErrEmptyQuestion
	}

	var debug *DebugInfo
	if req.Debug {
		debug = &DebugInfo{
			Stats:         ComputeStats(req.Documents),
			PromptVersion: e.opts.Template.Version(),
		}
	}

	finish := func(res AnswerResult) (AnswerResult, error) {
		if res.Citations == nil {
			res.Citations = []Citation{}
		}
		res.Debug = debug
		elapsed := time.Since(start)
		e.opts.Observer.AskCompleted(res.Outcome, elapsed)
		logger.InfoContext(ctx, "ask completed",
			"outcome", res.Outcome,
			"citations", len(res.Citations),
			"duration_ms", elapsed.Milliseconds(),
		)
		return res, nil
	}

	query := NewQuery(question)
	sel := Select(query, req.Documents, e.opts.Scoring, e.opts.Limit)
	if debug != nil {
		debug.Keywords = query.Keywords
		debug.Fallback = sel.Fallback
		debug.Scored = scoredEntries(sel.Scored)
	}

	if sel.Eligible == 0 {
		logger.InfoContext(ctx, "no eligible documents", "supplied", len(req.Documents))
		return finish(AnswerResult{Answer: MessageNoDocuments, Outcome: OutcomeNoDocuments})
	}

	logger.DebugContext(ctx, "documents ranked",
		"keywords", query.Keywords,
		"eligible", sel.Eligible,
		"scored", len(sel.Scored),
		"selected", len(sel.Documents),
	)
	if sel.Fallback {
		logger.WarnContext(ctx, "no keyword matches, using first documents as context",
			"keywords", len(query.Keywords),
			"selected", len(sel.Documents),
		)
	}

	chunks := AssembleContext(sel.Documents, e.opts.MaxChunkChars)
	prompt := e.opts.Template.Render(question, chunks)

	raw, attempts, err := e.generate(ctx, prompt)
	if debug != nil {
		debug.Attempts = attempts
	}
	if err != nil {
		outcome, message := classifyFailure(err)
		logger.ErrorContext(ctx, "generation failed",
			"outcome", outcome,
			"attempts", attempts,
			"error", err,
		)
		return finish(AnswerResult{Answer: message, Outcome: outcome})
	}

	parsed, ok := e.opts.Template.Parse(raw, chunks)
	outcome := OutcomeAnswered
	if !ok {
		outcome = OutcomeFallbackCited
		logger.WarnContext(ctx, "no verified sources in model reply, citing context",
			"prompt_version", e.opts.Template.Version(),
			"chunks", len(chunks),
		)
	}

	return finish(AnswerResult{
		Answer:    parsed.Answer,
		Citations: parsed.Citations,
		Outcome:   outcome,
	})
}

// generate calls the generator under the retry policy and reports how many calls were made.
func (e *ragEngine) generate(ctx context.Context, prompt string) (string, int, error) {
	policy := e.opts.Retry
	if policy.Logger == nil {
		policy.Logger = contextutil.LoggerFromContext(ctx)
	}

	var (
		raw      string
		attempts int
	)
	err := policy.Do(ctx, func(ctx context.Context) error {
		attempts++
		out, err := e.generator.Generate(ctx, prompt)
		e.opts.Observer.GenerationAttempt(err)
		if err != nil {
			return err
		}
		raw = out
		return nil
	})
	if err != nil {
		return "", attempts, fmt.Errorf("failed to generate answer: %w", err)
	}
	return raw, attempts, nil
}

// classifyFailure maps a generation error to its outcome and fixed answer.
func classifyFailure(err error) (Outcome, string) {
	switch {
	case errors.Is(err, llm.ErrUnauthorized):
		return OutcomeUpstreamAuth, MessageAuthError
	case errors.Is(err, llm.ErrQuotaExceeded):
		return OutcomeUpstreamQuota, MessageQuota
	default:
		return OutcomeUpstreamUnavailable, MessageUnavailable
	}
}

func scoredEntries(scored []ScoredDocument) []ScoredEntry {
	entries := make([]ScoredEntry, len(scored))
	for i, s := range scored {
		entries[i] = ScoredEntry{
			Rank:  i + 1,
			ID:    s.Document.ID,
			Name:  s.Document.Name,
			Score: s.Score,
		}
	}
	return entries
}

type nopObserver struct{}

func (nopObserver) AskCompleted(Outcome, time.Duration) {}
func (nopObserver) GenerationAttempt(error)             {}
