package prompt_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/inboxflow/internal/instrumentation"
	"github.com/teemow/inboxflow/internal/mail"
	"github.com/teemow/inboxflow/internal/prompts"
	"github.com/teemow/inboxflow/internal/server"
	"github.com/teemow/inboxflow/internal/tools/common"
)

// RegisterPromptTools registers the prompt template tools with the MCP server
func RegisterPromptTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listPromptsTool := mcp.NewTool("prompts_list",
		mcp.WithDescription("List the prompt templates used for categorization, action item extraction, and reply drafting"),
	)

	s.AddTool(listPromptsTool, common.InstrumentedToolHandler("prompts_list", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		all, err := sc.Prompts().All()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list prompts: %v", err)), nil
		}

		result, _ := json.MarshalIndent(all, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))

	getPromptTool := mcp.NewTool("prompts_get",
		mcp.WithDescription("Get the content of one prompt template"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Prompt name: categorization, action_item, or auto_reply"),
		),
	)

	s.AddTool(getPromptTool, common.InstrumentedToolHandler("prompts_get", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		name, err := common.RequiredString(args, "name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		content, err := sc.Prompts().Get(name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get prompt: %v", err)), nil
		}
		return mcp.NewToolResultText(content), nil
	}))

	testPromptTool := mcp.NewTool("prompts_test",
		mcp.WithDescription("Run a prompt template against a sample email and return the model response"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Prompt name: categorization, action_item, or auto_reply"),
		),
		mcp.WithString("sender",
			mcp.Required(),
			mcp.Description("Sample email sender"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Sample email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Sample email body"),
		),
	)

	s.AddTool(testPromptTool, common.InstrumentedToolHandlerWithProvider("prompts_test", sc.Config().LLMProvider, instrumentation.OperationTest, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		name, err := common.RequiredString(args, "name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		sender, err := common.RequiredString(args, "sender")
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

		eng, err := sc.Engine()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		sample := mail.Email{Sender: sender, Subject: subject, Body: body}
		result, err := eng.TestPrompt(ctx, name, sample)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to test prompt: %v", err)), nil
		}
		return mcp.NewToolResultText(result), nil
	}))

	if readOnly {
		return nil
	}

	updatePromptTool := mcp.NewTool("prompts_update",
		mcp.WithDescription("Replace the content of a prompt template. Placeholders {sender}, {subject}, and {body} are substituted when the prompt runs."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Prompt name: categorization, action_item, or auto_reply"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The new prompt content"),
		),
	)

	s.AddTool(updatePromptTool, common.InstrumentedToolHandler("prompts_update", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		name, err := common.RequiredString(args, "name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		content, err := common.RequiredString(args, "content")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := sc.Prompts().Update(name, content); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to update prompt: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Prompt %s updated", name)), nil
	}))

	resetPromptTool := mcp.NewTool("prompts_reset",
		mcp.WithDescription("Reset one prompt template, or all of them, to the built-in defaults"),
		mcp.WithString("name",
			mcp.Description("Prompt name to reset. All prompts are reset when omitted."),
		),
	)

	s.AddTool(resetPromptTool, common.InstrumentedToolHandler("prompts_reset", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		kinds := prompts.Kinds
		if name := common.OptionalString(args, "name", ""); name != "" {
			kinds = []string{name}
		}
		for _, kind := range kinds {
			if err := sc.Prompts().Reset(kind); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to reset prompt: %v", err)), nil
			}
		}

		result, _ := json.Marshal(kinds)
		return mcp.NewToolResultText(fmt.Sprintf("Reset prompts: %s", result)), nil
	}))

	return nil
}
