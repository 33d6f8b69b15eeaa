package draft_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/inboxflow/internal/instrumentation"
	"github.com/teemow/inboxflow/internal/mail"
	"github.com/teemow/inboxflow/internal/server"
	"github.com/teemow/inboxflow/internal/tools/common"
)

// RegisterDraftTools registers the reply draft tools with the MCP server
func RegisterDraftTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listDraftsTool := mcp.NewTool("drafts_list",
		mcp.WithDescription("List saved reply drafts, optionally filtered by the email they answer"),
		mcp.WithString("emailId",
			mcp.Description("List only drafts for this email"),
		),
	)

	s.AddTool(listDraftsTool, common.InstrumentedToolHandler("drafts_list", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		drafts, err := sc.Store().ListDrafts(common.OptionalString(args, "emailId", ""))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list drafts: %v", err)), nil
		}

		result, _ := json.MarshalIndent(drafts, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))

	getDraftTool := mcp.NewTool("drafts_get",
		mcp.WithDescription("Get a saved reply draft"),
		mcp.WithNumber("draftId",
			mcp.Required(),
			mcp.Description("The ID of the draft to retrieve"),
		),
	)

	s.AddTool(getDraftTool, common.InstrumentedToolHandler("drafts_get", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		draftID, err := common.RequiredInt64(args, "draftId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		draft, err := sc.Store().GetDraft(draftID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get draft: %v", err)), nil
		}

		result, _ := json.MarshalIndent(draft, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))

	if readOnly {
		return nil
	}

	generateDraftTool := mcp.NewTool("drafts_generate",
		mcp.WithDescription("Generate a reply draft for a stored email using the configured LLM and save it"),
		mcp.WithString("emailId",
			mcp.Required(),
			mcp.Description("The ID of the email to reply to"),
		),
		mcp.WithString("tone",
			mcp.Description("Tone of the reply, e.g. 'professional' (default), 'casual', or 'brief'"),
		),
	)

	s.AddTool(generateDraftTool, common.InstrumentedToolHandlerWithProvider("drafts_generate", sc.Config().LLMProvider, instrumentation.OperationDraft, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		emailID, err := common.RequiredString(args, "emailId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		eng, err := sc.Engine()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		draft, err := eng.GenerateReplyDraft(ctx, emailID, common.OptionalString(args, "tone", "professional"))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to generate draft: %v", err)), nil
		}

		result, _ := json.MarshalIndent(draft, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))

	saveDraftTool := mcp.NewTool("drafts_save",
		mcp.WithDescription("Save a reply draft written by hand"),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Draft subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Draft body"),
		),
		mcp.WithString("emailId",
			mcp.Description("The email this draft answers"),
		),
	)

	s.AddTool(saveDraftTool, common.InstrumentedToolHandler("drafts_save", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		subject, err := common.RequiredString(args, "subject")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		body, err := common.RequiredString(args, "body")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		draft := mail.Draft{
			EmailID: common.OptionalString(args, "emailId", ""),
			Subject: subject,
			Body:    body,
		}
		id, err := sc.Store().InsertDraft(draft)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to save draft: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Draft %d saved", id)), nil
	}))

	updateDraftTool := mcp.NewTool("drafts_update",
		mcp.WithDescription("Update the subject and body of a saved draft"),
		mcp.WithNumber("draftId",
			mcp.Required(),
			mcp.Description("The ID of the draft to update"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("New subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("New body"),
		),
	)

	s.AddTool(updateDraftTool, common.InstrumentedToolHandler("drafts_update", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		draftID, err := common.RequiredInt64(args, "draftId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		subject, err := common.RequiredString(args, "subject")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		body, err := common.RequiredString(args, "body")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := sc.Store().UpdateDraft(draftID, subject, body); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to update draft: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Draft %d updated", draftID)), nil
	}))

	deleteDraftTool := mcp.NewTool("drafts_delete",
		mcp.WithDescription("Delete a saved draft"),
		mcp.WithNumber("draftId",
			mcp.Required(),
			mcp.Description("The ID of the draft to delete"),
		),
	)

	s.AddTool(deleteDraftTool, common.InstrumentedToolHandler("drafts_delete", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		draftID, err := common.RequiredInt64(args, "draftId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := sc.Store().DeleteDraft(draftID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete draft: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Draft %d deleted", draftID)), nil
	}))

	return nil
}
