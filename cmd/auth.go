package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxflow/internal/google"
)

func newAuthCmd() *cobra.Command {
	var (
		account string
		code    string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize Gmail access for an account",
		Long: `Authorize read-only Gmail access so 'inboxflow load --source gmail'
can import messages.

Without --code, prints the Google authorization URL to visit. After
granting access, run the command again with the authorization code:

  inboxflow auth --account default --code <authorization code>

Requires GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET in the environment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if code == "" {
				if google.HasTokenForAccount(account) {
					fmt.Printf("Account %q is already authorized.\n", account)
					return nil
				}
				fmt.Println(google.GetAuthenticationErrorMessage(account))
				return nil
			}

			if err := google.SaveTokenForAccount(cmd.Context(), account, code); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			fmt.Printf("Token saved for account %q. Gmail import is now available.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Account name the token is stored under")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the Google consent page")

	return cmd
}
