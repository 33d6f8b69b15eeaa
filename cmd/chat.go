package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var emailID string

	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask a question about the stored inbox",
		Long: `Ask a question about the stored inbox. Questions about tasks or
important emails are answered straight from the database; anything else
is answered by the configured LLM with the inbox (or a selected email)
as context.

Examples:
  inboxflow chat "what tasks do I have?"
  inboxflow chat --email email_001 "summarize this email"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer cancel()

			eng, s, err := newAssistantEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			query := strings.Join(args, " ")
			response, err := eng.Chat(ctx, query, emailID)
			if err != nil {
				return err
			}

			fmt.Println(response)
			return nil
		},
	}

	cmd.Flags().StringVar(&emailID, "email", "", "Scope the question to one email by ID")

	return cmd
}
