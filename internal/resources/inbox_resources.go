package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/inboxflow/internal/mail"
	"github.com/teemow/inboxflow/internal/server"
)

// RegisterInboxResources registers read-only resources describing the
// current inbox state
func RegisterInboxResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	statsResource := mcp.NewResource(
		"inbox://stats",
		"Inbox Statistics",
		mcp.WithResourceDescription("Email counts per category, pending action items, and saved drafts"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(statsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleInboxStats(request, sc)
	})

	tasksResource := mcp.NewResource(
		"inbox://tasks/pending",
		"Pending Tasks",
		mcp.WithResourceDescription("Action items extracted from emails that are not yet completed"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(tasksResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handlePendingTasks(request, sc)
	})

	promptsResource := mcp.NewResource(
		"inbox://prompts",
		"Prompt Templates",
		mcp.WithResourceDescription("The prompt templates driving categorization, extraction, and drafting"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(promptsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handlePrompts(request, sc)
	})

	return nil
}

// handleInboxStats returns the current inbox counters
func handleInboxStats(request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	total, err := sc.Store().CountEmails()
	if err != nil {
		return nil, fmt.Errorf("failed to count emails: %w", err)
	}
	counts, err := sc.Store().CountByCategory()
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	pending, err := sc.Store().ListActionItems(mail.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tasks: %w", err)
	}
	drafts, err := sc.Store().ListDrafts("")
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	return jsonResource(request, map[string]any{
		"total_emails":  total,
		"by_category":   counts,
		"pending_tasks": len(pending),
		"drafts":        len(drafts),
	})
}

// handlePendingTasks returns the open action items
func handlePendingTasks(request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	items, err := sc.Store().ListActionItems(mail.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tasks: %w", err)
	}
	if items == nil {
		items = []mail.ActionItem{}
	}
	return jsonResource(request, items)
}

// handlePrompts returns the stored prompt templates
func handlePrompts(request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	all, err := sc.Prompts().All()
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	return jsonResource(request, all)
}

func jsonResource(request mcp.ReadResourceRequest, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
