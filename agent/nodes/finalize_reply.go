package orchestratornode

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" && in.Exhausted {
		log.Warn().Str("session_id", in.Session.ID).Int("steps", in.Steps).Msg("turn hit step limit")
		reply = StepLimitReply
	}
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: model returned empty message", contractx.ErrValidation)
	}
	// the model did not speak this reply itself
	if in.Ended || in.Exhausted {
		in.History = append(in.History, schema.AssistantMessage(reply, nil))
	}
	return GraphOutput{Reply: reply, Ended: in.Ended, History: in.History}, nil
}
