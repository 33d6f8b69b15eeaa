package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxflow/internal/config"
	"github.com/teemow/inboxflow/internal/gmail"
	"github.com/teemow/inboxflow/internal/mail"
	"github.com/teemow/inboxflow/internal/store"
)

func newLoadCmd() *cobra.Command {
	var (
		source  string
		file    string
		account string
		max     int64
		clear   bool
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load emails into the local database",
		Long: `Load emails into the local SQLite database from the bundled sample
set, a JSON inbox file, or Gmail. Emails already present are skipped,
so loading is safe to repeat.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			s, err := store.Open(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = s.Close() }()

			if clear {
				if err := s.ClearEmails(); err != nil {
					return fmt.Errorf("failed to clear inbox: %w", err)
				}
				fmt.Println("Cleared existing emails")
			}

			ctx := context.Background()

			switch source {
			case "sample", "file":
				var emails []mail.Email
				if source == "file" {
					if file == "" {
						return fmt.Errorf("--file is required when --source is file")
					}
					emails, err = mail.LoadInboxFile(file)
				} else {
					emails, err = mail.SampleInbox()
				}
				if err != nil {
					return fmt.Errorf("failed to load emails: %w", err)
				}

				inserted, skipped, err := s.LoadEmails(emails)
				if err != nil {
					return fmt.Errorf("failed to store emails: %w", err)
				}
				fmt.Printf("Loaded %d email(s), skipped %d duplicate(s)\n", inserted, skipped)
				return nil
			case "gmail":
				client, err := gmail.NewClientForAccount(ctx, account)
				if err != nil {
					return err
				}
				result, err := gmail.ImportInbox(ctx, client, s, max)
				if err != nil {
					return fmt.Errorf("failed to import from Gmail: %w", err)
				}
				fmt.Printf("Fetched %d message(s): %d imported, %d already present\n",
					result.Fetched, result.Inserted, result.Skipped)
				return nil
			default:
				return fmt.Errorf("unknown source: %s (supported: sample, file, gmail)", source)
			}
		},
	}

	cmd.Flags().StringVar(&source, "source", "sample", "Where to load from: sample, file, or gmail")
	cmd.Flags().StringVar(&file, "file", "", "Path to a JSON inbox file (required with --source file)")
	cmd.Flags().StringVar(&account, "account", "default", "Google account name for Gmail import")
	cmd.Flags().Int64Var(&max, "max", 50, "Maximum number of Gmail messages to import")
	cmd.Flags().BoolVar(&clear, "clear", false, "Delete all stored emails before loading")

	return cmd
}
