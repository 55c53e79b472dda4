package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"dochub/internal/config"
	"dochub/internal/llm"
	"dochub/internal/metrics"
	"dochub/internal/rag"
	"dochub/internal/retry"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "dochub",
		Short:         "Grounded question answering over your own documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd(), newAskCmd(), newTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setupLogging configures the default slog logger from cfg.
func setupLogging(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)
	return logger
}

// newGenerator builds the generation client for the configured provider.
func newGenerator(ctx context.Context, cfg *config.Config) (rag.Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		slog.Debug("LLM configuration", "provider", cfg.LLMProvider, "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
		return llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName), nil
	default:
		slog.Debug("LLM configuration", "provider", cfg.LLMProvider, "model", cfg.GeminiModel)
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, nil
	}
}

// newEngine builds the grounded answer engine from cfg.
func newEngine(ctx context.Context, cfg *config.Config) (rag.Engine, error) {
	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := rag.DefaultOptions()
	opts.Scoring = cfg.Scoring
	opts.Retry = retry.Policy{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		Retryable:   llm.IsRateLimited,
	}
	opts.Observer = metrics.Observer{}
	return rag.NewEngine(generator, opts), nil
}
