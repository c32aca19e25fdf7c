package orchestratornode

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
)

// HistoryKey is the prompt variable holding the running transcript.
const HistoryKey = "history"

func CallModel(
	ctx context.Context,
	in *GraphState,
	model compose.Runnable[map[string]any, *schema.Message],
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	msg, err := model.Invoke(ctx, map[string]any{HistoryKey: in.History})
	if err != nil {
		return nil, fmt.Errorf("%w: turn model invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
	}
	in.Steps++

	reqs := toToolRequests(msg.ToolCalls)
	in.History = append(in.History, msg)
	in.Pending = reqs

	if len(reqs) == 0 {
		in.Reply = strings.TrimSpace(msg.Content)
	}
	return in, nil
}

// toToolRequests decodes every call on its own. A call with a missing name or
// malformed arguments keeps its slot with DecodeErr set.
func toToolRequests(calls []schema.ToolCall) []contractx.ToolRequest {
	if len(calls) == 0 {
		return nil
	}
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		req := contractx.ToolRequest{
			ID:   call.ID,
			Tool: strings.TrimSpace(call.Function.Name),
			Args: map[string]any{},
		}
		if req.Tool == "" {
			req.DecodeErr = "tool call name is empty"
			reqs = append(reqs, req)
			continue
		}

		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &req.Args); err != nil {
				req.Args = map[string]any{}
				req.DecodeErr = fmt.Sprintf("%v: invalid arguments for %s: %v", contractx.ErrSchemaViolation, req.Tool, err)
			}
		}
		reqs = append(reqs, req)
	}
	return reqs
}
