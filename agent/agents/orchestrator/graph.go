package orchestrator

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
	nodex "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/nodes"
)

func compileTurnModelGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.MessagesPlaceholder(nodex.HistoryKey, false),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add turn prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add turn model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add turn edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add turn edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add turn edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.turn_model"))
	if err != nil {
		return nil, fmt.Errorf("compile turn model graph: %w", err)
	}
	return runner, nil
}

// compileHandleTurnGraph wires the model/tool loop:
// validate_request -> call_model <-> dispatch_tools -> finalize_reply.
func (o *Orchestrator) compileHandleTurnGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode(nodex.NodeValidateRequest,
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.NodeCallModel,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.CallModel(ctx, in, o.modelRunner)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node call_model: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.NodeDispatchTools,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			var tools contractx.ToolGateway
			if in != nil {
				tools = o.catalog.Bind(in.Session)
			}
			return nodex.DispatchToolCalls(ctx, in, tools, o.endOnFinalize, o.maxSteps)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node dispatch_tools: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.NodeFinalizeReply,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	afterModel := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			return nodex.NextAfterModel(in), nil
		},
		map[string]bool{
			nodex.NodeDispatchTools: true,
			nodex.NodeFinalizeReply: true,
		},
	)
	afterTools := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			return nodex.NextAfterTools(in), nil
		},
		map[string]bool{
			nodex.NodeCallModel:     true,
			nodex.NodeFinalizeReply: true,
		},
	)

	if err := graph.AddEdge(compose.START, nodex.NodeValidateRequest); err != nil {
		return nil, fmt.Errorf("add edge start->validate_request: %w", err)
	}
	if err := graph.AddEdge(nodex.NodeValidateRequest, nodex.NodeCallModel); err != nil {
		return nil, fmt.Errorf("add edge validate_request->call_model: %w", err)
	}
	if err := graph.AddBranch(nodex.NodeCallModel, afterModel); err != nil {
		return nil, fmt.Errorf("add branch after call_model: %w", err)
	}
	if err := graph.AddBranch(nodex.NodeDispatchTools, afterTools); err != nil {
		return nil, fmt.Errorf("add branch after dispatch_tools: %w", err)
	}
	if err := graph.AddEdge(nodex.NodeFinalizeReply, compose.END); err != nil {
		return nil, fmt.Errorf("add edge finalize_reply->end: %w", err)
	}

	// every model round costs two graph steps
	runner, err := graph.Compile(ctx,
		compose.WithGraphName("orchestrator.handle_turn"),
		compose.WithMaxRunSteps(2*o.maxSteps+10),
	)
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
