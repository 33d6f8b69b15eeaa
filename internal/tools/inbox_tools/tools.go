package inbox_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/inboxflow/internal/gmail"
	"github.com/teemow/inboxflow/internal/instrumentation"
	"github.com/teemow/inboxflow/internal/mail"
	"github.com/teemow/inboxflow/internal/server"
	"github.com/teemow/inboxflow/internal/tools/batch"
	"github.com/teemow/inboxflow/internal/tools/common"
)

// defaultGmailImportLimit caps one Gmail import batch.
const defaultGmailImportLimit = 50

// RegisterInboxTools registers the inbox management tools with the MCP server
func RegisterInboxTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerReadTools(s, sc)
	if !readOnly {
		registerWriteTools(s, sc)
	}
	return nil
}

// registerReadTools registers tools that only read stored data
func registerReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	listEmailsTool := mcp.NewTool("inbox_list_emails",
		mcp.WithDescription("List stored emails, newest first, optionally filtered by category"),
		mcp.WithString("category",
			mcp.Description("Filter by category: Important, To-Do, Newsletter, Spam, or Uncategorized"),
		),
	)

	s.AddTool(listEmailsTool, common.InstrumentedToolHandler("inbox_list_emails", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		category := common.OptionalString(args, "category", "")
		if category != "" && !mail.IsValidCategory(category) {
			return mcp.NewToolResultError(fmt.Sprintf("Unknown category: %s", category)), nil
		}

		emails, err := sc.Store().ListEmails(category)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list emails: %v", err)), nil
		}

		result, _ := json.MarshalIndent(emails, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))

	getEmailTool := mcp.NewTool("inbox_get_email",
		mcp.WithDescription("Get a stored email with its extracted action items"),
		mcp.WithString("emailId",
			mcp.Required(),
			mcp.Description("The ID of the email to retrieve"),
		),
	)

	s.AddTool(getEmailTool, common.InstrumentedToolHandler("inbox_get_email", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		emailID, err := common.RequiredString(args, "emailId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		email, err := sc.Store().GetEmail(emailID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get email: %v", err)), nil
		}
		items, err := sc.Store().ActionItemsByEmail(emailID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get action items: %v", err)), nil
		}

		result, _ := json.MarshalIndent(map[string]any{
			"email":        email,
			"action_items": items,
		}, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))

	searchEmailsTool := mcp.NewTool("inbox_search_emails",
		mcp.WithDescription("Search stored emails by sender, subject, or body"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search for"),
		),
		mcp.WithString("field",
			mcp.Description("Restrict the search to one field: sender, subject, or body. Searches all fields when omitted."),
		),
	)

	s.AddTool(searchEmailsTool, common.InstrumentedToolHandler("inbox_search_emails", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		query, err := common.RequiredString(args, "query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		emails, err := sc.Store().SearchEmails(query, common.OptionalString(args, "field", ""))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to search emails: %v", err)), nil
		}

		result, _ := json.MarshalIndent(emails, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))

	statsTool := mcp.NewTool("inbox_stats",
		mcp.WithDescription("Get inbox statistics: total emails, counts per category, pending tasks, and drafts"),
	)

	s.AddTool(statsTool, common.InstrumentedToolHandler("inbox_stats", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := inboxStats(sc)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to collect stats: %v", err)), nil
		}

		result, _ := json.MarshalIndent(stats, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))

	chatTool := mcp.NewTool("inbox_chat",
		mcp.WithDescription("Ask a question about the stored inbox. Questions about tasks or important emails are answered from the database; anything else is answered by the configured LLM."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The question to ask"),
		),
		mcp.WithString("emailId",
			mcp.Description("Optional email ID to scope the question to one email"),
		),
	)

	s.AddTool(chatTool, common.InstrumentedToolHandlerWithProvider("inbox_chat", sc.Config().LLMProvider, instrumentation.OperationChat, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		query, err := common.RequiredString(args, "query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		eng, err := sc.Engine()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		response, err := eng.Chat(ctx, query, common.OptionalString(args, "emailId", ""))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Chat failed: %v", err)), nil
		}
		return mcp.NewToolResultText(response), nil
	}))
}

// registerWriteTools registers tools that modify stored data
func registerWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	loadTool := mcp.NewTool("inbox_load",
		mcp.WithDescription("Load emails into the inbox from the bundled sample set, a JSON file, or Gmail. Emails already present are skipped."),
		mcp.WithString("source",
			mcp.Description("Where to load from: 'sample' (default), 'file', or 'gmail'"),
		),
		mcp.WithString("file",
			mcp.Description("Path to a JSON inbox file. Required when source is 'file'."),
		),
		mcp.WithString("account",
			mcp.Description("Google account name for Gmail import (default: 'default')"),
		),
		mcp.WithNumber("max",
			mcp.Description("Maximum number of Gmail messages to import (default: 50)"),
		),
	)

	s.AddTool(loadTool, common.InstrumentedToolHandler("inbox_load", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		source := common.OptionalString(args, "source", "sample")

		switch source {
		case "sample", "file":
			var (
				emails []mail.Email
				err    error
			)
			if source == "file" {
				path, pathErr := common.RequiredString(args, "file")
				if pathErr != nil {
					return mcp.NewToolResultError("file is required when source is 'file'"), nil
				}
				emails, err = mail.LoadInboxFile(path)
			} else {
				emails, err = mail.SampleInbox()
			}
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to load emails: %v", err)), nil
			}

			inserted, skipped, err := sc.Store().LoadEmails(emails)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to store emails: %v", err)), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("Loaded %d email(s), skipped %d duplicate(s)", inserted, skipped)), nil
		case "gmail":
			account := common.OptionalString(args, "account", "default")
			client, err := gmail.NewClientForAccount(ctx, account)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			max := int64(common.OptionalInt(args, "max", defaultGmailImportLimit))
			res, err := gmail.ImportInbox(ctx, client, sc.Store(), max)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to import from Gmail: %v", err)), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("Fetched %d message(s): %d imported, %d already present", res.Fetched, res.Inserted, res.Skipped)), nil
		default:
			return mcp.NewToolResultError(fmt.Sprintf("Unknown source: %s (supported: sample, file, gmail)", source)), nil
		}
	}))

	setCategoryTool := mcp.NewTool("inbox_set_category",
		mcp.WithDescription("Set the category of a stored email"),
		mcp.WithString("emailId",
			mcp.Required(),
			mcp.Description("The ID of the email to update"),
		),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("New category: Important, To-Do, Newsletter, Spam, or Uncategorized"),
		),
	)

	s.AddTool(setCategoryTool, common.InstrumentedToolHandler("inbox_set_category", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		emailID, err := common.RequiredString(args, "emailId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		category, err := common.RequiredString(args, "category")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !mail.IsValidCategory(category) {
			return mcp.NewToolResultError(fmt.Sprintf("Unknown category: %s", category)), nil
		}

		if err := sc.Store().UpdateCategory(emailID, category); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to update category: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Email %s categorized as %s", emailID, category)), nil
	}))

	processTool := mcp.NewTool("inbox_process",
		mcp.WithDescription("Categorize one or more emails and extract action items from To-Do emails. Accepts a single email ID or an array of IDs. Omit emailId to process every uncategorized email."),
		mcp.WithString("emailId",
			mcp.Description("Email ID or array of email IDs to process. All uncategorized emails are processed when omitted."),
		),
	)

	s.AddTool(processTool, common.InstrumentedToolHandlerWithProvider("inbox_process", sc.Config().LLMProvider, instrumentation.OperationCategorize, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		eng, err := sc.Engine()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		args := request.GetArguments()
		if args["emailId"] == nil {
			summary, err := eng.ProcessInbox(ctx, nil)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to process inbox: %v", err)), nil
			}
			result, _ := json.MarshalIndent(summary, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}

		ids, err := batch.ParseIDs(args["emailId"], "emailId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		outcomes := batch.Run(ids, func(id string) (string, error) {
			res, err := eng.ProcessEmail(ctx, id)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("categorized as %s with %d action item(s)", res.Category, len(res.ActionItems)), nil
		})
		return mcp.NewToolResultText(batch.Format(outcomes)), nil
	}))

	clearTool := mcp.NewTool("inbox_clear",
		mcp.WithDescription("Delete all stored emails, action items, and drafts. Prompt templates are preserved."),
	)

	s.AddTool(clearTool, common.InstrumentedToolHandler("inbox_clear", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := sc.Store().ClearEmails(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to clear inbox: %v", err)), nil
		}
		return mcp.NewToolResultText("Inbox cleared"), nil
	}))
}

// inboxStats collects inbox statistics from the store
func inboxStats(sc *server.ServerContext) (map[string]any, error) {
	total, err := sc.Store().CountEmails()
	if err != nil {
		return nil, err
	}
	counts, err := sc.Store().CountByCategory()
	if err != nil {
		return nil, err
	}
	pending, err := sc.Store().ListActionItems(mail.StatusPending)
	if err != nil {
		return nil, err
	}
	drafts, err := sc.Store().ListDrafts("")
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"total_emails":  total,
		"by_category":   counts,
		"pending_tasks": len(pending),
		"drafts":        len(drafts),
	}, nil
}
