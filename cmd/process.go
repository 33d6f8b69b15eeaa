package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxflow/internal/config"
	"github.com/teemow/inboxflow/internal/engine"
	"github.com/teemow/inboxflow/internal/llm"
	"github.com/teemow/inboxflow/internal/prompts"
	"github.com/teemow/inboxflow/internal/store"
)

// newAssistantEngine opens the store and builds the processing engine
// from the environment configuration. The caller must close the store.
func newAssistantEngine(ctx context.Context) (*engine.Engine, *store.Store, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	s, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	promptSvc := prompts.NewService(s)
	if err := promptSvc.EnsureLoaded(); err != nil {
		_ = s.Close()
		return nil, nil, fmt.Errorf("failed to load default prompts: %w", err)
	}

	client, err := llm.New(ctx, cfg)
	if err != nil {
		_ = s.Close()
		return nil, nil, err
	}

	eng := engine.New(s, client, promptSvc, engine.WithMaxTokens(cfg.MaxTokens))
	return eng, s, nil
}

func newProcessCmd() *cobra.Command {
	var emailID string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Categorize emails and extract action items",
		Long: `Run the processing pipeline: categorize each uncategorized email with
the configured LLM, and extract action items from emails classified as
To-Do. Pass --email to process a single email instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer cancel()

			eng, s, err := newAssistantEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if emailID != "" {
				result, err := eng.ProcessEmail(ctx, emailID)
				if err != nil {
					return err
				}
				fmt.Printf("Email %s categorized as %s", result.EmailID, result.Category)
				if len(result.ActionItems) > 0 {
					fmt.Printf(" with %d action item(s)", len(result.ActionItems))
				}
				fmt.Println()
				return nil
			}

			summary, err := eng.ProcessInbox(ctx, func(current, total int, subject string) {
				fmt.Printf("[%d/%d] %s\n", current, total, subject)
			})
			if err != nil {
				return err
			}

			fmt.Printf("Processed %d of %d email(s)\n", summary.Processed, summary.Total)
			for _, e := range summary.Errors {
				fmt.Printf("  %s\n", e)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&emailID, "email", "", "Process a single email by ID")

	return cmd
}
