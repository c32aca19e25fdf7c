package contract

import "context"

// ToolGateway executes tool calls issued by the reasoning component against one session.
type ToolGateway interface {
	Execute(ctx context.Context, req ToolRequest) ToolResult
}
