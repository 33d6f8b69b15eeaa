// Package cmd implements the command-line interface for inboxflow.
//
// This package provides the following commands:
//   - serve: Start the web UI and API server, or an MCP server for AI assistants
//   - load: Load emails into the local database from samples, a file, or Gmail
//   - process: Categorize emails and extract action items with the configured LLM
//   - chat: Ask a one-shot question about the stored inbox
//   - auth: Authorize read-only Gmail access for an account
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
