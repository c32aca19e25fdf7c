package orchestratornode

const (
	NodeValidateRequest = "validate_request"
	NodeCallModel       = "call_model"
	NodeDispatchTools   = "dispatch_tools"
	NodeFinalizeReply   = "finalize_reply"
)

// StepLimitReply is spoken when the model keeps calling tools past the step limit.
const StepLimitReply = "Sorry, I lost track for a moment. Could you say that again?"

func NextAfterModel(in *GraphState) string {
	if in != nil && len(in.Pending) > 0 {
		return NodeDispatchTools
	}
	return NodeFinalizeReply
}

func NextAfterTools(in *GraphState) string {
	if in == nil || in.Ended || in.Exhausted {
		return NodeFinalizeReply
	}
	return NodeCallModel
}
