package orchestratornode

import (
	"context"
	"fmt"
	"slices"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
)

// DispatchToolCalls runs the pending calls one by one in delivery order and feeds
// every result back into the transcript.
func DispatchToolCalls(
	ctx context.Context,
	in *GraphState,
	tools contractx.ToolGateway,
	endOnFinalize bool,
	maxSteps int,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}
	if tools == nil {
		return nil, fmt.Errorf("%w: tool gateway is nil", contractx.ErrValidation)
	}

	for _, req := range in.Pending {
		wasFinalized := in.Session.Finalized()
		var res contractx.ToolResult
		if req.DecodeErr != "" {
			log.Warn().
				Str("session_id", in.Session.ID).
				Str("tool", req.Tool).
				Str("error", req.DecodeErr).
				Msg("tool call could not be decoded")
			res = contractx.ToolResult{Tool: req.Tool, Error: req.DecodeErr}
		} else {
			res = tools.Execute(ctx, req)
		}
		content := res.Content()
		in.History = append(in.History, schema.ToolMessage(content, req.ID))

		log.Debug().
			Str("session_id", in.Session.ID).
			Str("tool", req.Tool).
			Str("result", content).
			Msg("tool call dispatched")

		if endOnFinalize && !wasFinalized && in.Session.Finalized() {
			in.Ended = true
			in.Reply = content
		}
	}
	in.Pending = nil
	if in.Checkpoint != nil {
		in.Checkpoint(slices.Clone(in.History))
	}

	if !in.Ended && maxSteps > 0 && in.Steps >= maxSteps {
		in.Exhausted = true
	}
	return in, nil
}
