package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the inboxflow application
var rootCmd = &cobra.Command{
	Use:   "inboxflow",
	Short: "Local-first email assistant with LLM-powered triage",
	Long: `inboxflow loads emails into a local SQLite database, categorizes them
with an LLM, extracts action items, and drafts replies.

It can run as:
  - A web server with a browser UI (default)
  - An MCP (Model Context Protocol) server for AI assistants
  - A one-shot CLI for loading, processing, and chatting`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "inboxflow version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newLoadCmd())
	rootCmd.AddCommand(newProcessCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
