package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"dochub/internal/config"
	"dochub/internal/contextutil"
	"dochub/internal/extract"
	"dochub/internal/rag"
)

func newAskCmd() *cobra.Command {
	var (
		dir     string
		workers int
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "ask --dir <folder> <question>",
		Short: "Answer a question from the .txt and .md files of a folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := setupLogging(cfg)
			ctx := contextutil.WithLogger(cmd.Context(), logger)

			files, err := extract.LoadDir(ctx, dir, workers)
			if err != nil {
				return err
			}
			docs := make([]rag.Document, 0, len(files))
			for _, f := range files {
				docs = append(docs, rag.Document{ID: f.RelPath, Name: f.RelPath, Text: f.Text, Status: rag.StatusReady})
			}
			logger.Info("Loaded documents", "dir", dir, "count", len(docs))

			engine, err := newEngine(ctx, cfg)
			if err != nil {
				return err
			}

			result, err := engine.Ask(ctx, rag.AskRequest{
				Question:  strings.Join(args, " "),
				Documents: docs,
				Debug:     debug,
			})
			if err != nil {
				return err
			}
			printAnswer(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "folder of .txt and .md documents")
	cmd.Flags().IntVar(&workers, "workers", 4, "files extracted concurrently")
	cmd.Flags().BoolVar(&debug, "debug", false, "print retrieval details")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

// printAnswer writes the answer, its sources and any debug details.
func printAnswer(w io.Writer, result rag.AnswerResult) {
	fmt.Fprintln(w, result.Answer)

	if len(result.Citations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Sources:")
		for _, c := range result.Citations {
			fmt.Fprintf(w, "  - %s: %q\n", c.DocumentName, c.Excerpt)
		}
	}

	if d := result.Debug; d != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "outcome=%s attempts=%d fallback=%t prompt=%s\n", result.Outcome, d.Attempts, d.Fallback, d.PromptVersion)
		fmt.Fprintf(w, "keywords=%v\n", d.Keywords)
		for _, s := range d.Scored {
			fmt.Fprintf(w, "  %d. %s (%d)\n", s.Rank, s.Name, s.Score)
		}
	}
}
