package task_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/inboxflow/internal/mail"
	"github.com/teemow/inboxflow/internal/server"
	"github.com/teemow/inboxflow/internal/tools/batch"
	"github.com/teemow/inboxflow/internal/tools/common"
)

// RegisterTaskTools registers the action item tools with the MCP server
func RegisterTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listTasksTool := mcp.NewTool("tasks_list",
		mcp.WithDescription("List action items extracted from emails, optionally filtered by status"),
		mcp.WithString("status",
			mcp.Description("Filter by status: 'pending' or 'completed'. Lists all items when omitted."),
		),
		mcp.WithString("emailId",
			mcp.Description("List only the action items of one email"),
		),
	)

	s.AddTool(listTasksTool, common.InstrumentedToolHandler("tasks_list", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		var (
			items []mail.ActionItem
			err   error
		)
		if emailID := common.OptionalString(args, "emailId", ""); emailID != "" {
			items, err = sc.Store().ActionItemsByEmail(emailID)
		} else {
			items, err = sc.Store().ListActionItems(common.OptionalString(args, "status", ""))
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list action items: %v", err)), nil
		}

		result, _ := json.MarshalIndent(items, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))

	if readOnly {
		return nil
	}

	completeTaskTool := mcp.NewTool("tasks_complete",
		mcp.WithDescription("Mark one or more action items as completed. Accepts a single ID or an array of IDs."),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("Action item ID or array of IDs to mark completed"),
		),
	)

	s.AddTool(completeTaskTool, common.InstrumentedToolHandler("tasks_complete", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		ids, err := batch.ParseIDs(args["taskId"], "taskId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		outcomes := batch.Run(ids, func(id string) (string, error) {
			taskID, err := parseTaskID(id)
			if err != nil {
				return "", err
			}
			if err := sc.Store().UpdateActionItemStatus(taskID, mail.StatusCompleted); err != nil {
				return "", err
			}
			return "completed", nil
		})
		return mcp.NewToolResultText(batch.Format(outcomes)), nil
	}))

	reopenTaskTool := mcp.NewTool("tasks_reopen",
		mcp.WithDescription("Mark an action item as pending again"),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the action item to reopen"),
		),
	)

	s.AddTool(reopenTaskTool, common.InstrumentedToolHandler("tasks_reopen", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		id, err := common.RequiredString(args, "taskId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		taskID, err := parseTaskID(id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := sc.Store().UpdateActionItemStatus(taskID, mail.StatusPending); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to reopen action item: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Action item %d reopened", taskID)), nil
	}))

	return nil
}

// parseTaskID converts a string tool argument to a numeric action item id
func parseTaskID(id string) (int64, error) {
	taskID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid action item id: %s", id)
	}
	return taskID, nil
}
