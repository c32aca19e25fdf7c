package orchestratornode

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
	recordx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/record"
	statex "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/state"
)

type fakeGateway struct {
	reqs     []contractx.ToolRequest
	finalize string
	sess     *statex.Session
}

func (f *fakeGateway) Execute(ctx context.Context, req contractx.ToolRequest) contractx.ToolResult {
	f.reqs = append(f.reqs, req)
	if req.Tool == f.finalize {
		_ = f.sess.MarkFinalized("mem://lead", time.Now())
		return contractx.ToolResult{Tool: req.Tool, Result: "Thanks Ana!"}
	}
	return contractx.ToolResult{Tool: req.Tool, Result: "ok " + req.Tool}
}

func newState(t *testing.T) *GraphState {
	t.Helper()
	sess := statex.NewSession(recordx.LeadSchema(), time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	in, err := ValidateRequest(GraphInput{Session: sess, Text: "hi"}, time.Now)
	if err != nil {
		t.Fatalf("ValidateRequest() error = %v", err)
	}
	return in
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	sess := statex.NewSession(recordx.OrderSchema(), time.Now())
	history := []*schema.Message{schema.UserMessage("earlier")}

	_, err := ValidateRequest(GraphInput{Text: "hello"}, time.Now)
	if !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	_, err = ValidateRequest(GraphInput{Session: sess, Text: "   "}, time.Now)
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}

	in, err := ValidateRequest(GraphInput{Session: sess, History: history, Text: "  a latte please "}, time.Now)
	if err != nil {
		t.Fatalf("ValidateRequest() error = %v", err)
	}
	if len(in.History) != 2 || in.History[1].Content != "a latte please" {
		t.Fatalf("unexpected history: %#v", in.History)
	}
	if len(history) != 1 {
		t.Fatal("caller history must not be modified")
	}
}

func TestToToolRequests(t *testing.T) {
	t.Parallel()

	reqs := toToolRequests([]schema.ToolCall{
		{ID: "c1", Function: schema.FunctionCall{Name: "set_size", Arguments: `{"size":"large"}`}},
		{ID: "c2", Function: schema.FunctionCall{Name: "get_order_status"}},
	})
	if len(reqs) != 2 || reqs[0].ID != "c1" || reqs[0].Args["size"] != "large" || len(reqs[1].Args) != 0 {
		t.Fatalf("unexpected requests: %#v", reqs)
	}
	if reqs[0].DecodeErr != "" || reqs[1].DecodeErr != "" {
		t.Fatalf("unexpected decode errors: %#v", reqs)
	}
}

func TestToToolRequestsKeepsUndecodableCalls(t *testing.T) {
	t.Parallel()

	reqs := toToolRequests([]schema.ToolCall{
		{ID: "c1", Function: schema.FunctionCall{Name: "set_drink_type", Arguments: `{"drink":"latte"}`}},
		{ID: "c2", Function: schema.FunctionCall{Name: "set_size", Arguments: `{"size":`}},
		{ID: "c3"},
	})
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(reqs))
	}
	if reqs[0].DecodeErr != "" || reqs[0].Args["drink"] != "latte" {
		t.Fatalf("valid call was affected: %#v", reqs[0])
	}
	if reqs[1].ID != "c2" || reqs[1].Tool != "set_size" || !strings.Contains(reqs[1].DecodeErr, "invalid arguments for set_size") {
		t.Fatalf("unexpected malformed request: %#v", reqs[1])
	}
	if reqs[2].ID != "c3" || reqs[2].DecodeErr == "" {
		t.Fatalf("expected decode error for nameless call: %#v", reqs[2])
	}
}

func TestDispatchToolCallsAnswersUndecodableCall(t *testing.T) {
	t.Parallel()

	in := newState(t)
	in.Pending = []contractx.ToolRequest{
		{ID: "a", Tool: "update_lead_profile"},
		{ID: "b", Tool: "lookup_faq", DecodeErr: "invalid arguments for lookup_faq"},
	}
	var saved []*schema.Message
	in.Checkpoint = func(history []*schema.Message) { saved = history }
	gw := &fakeGateway{sess: in.Session}

	out, err := DispatchToolCalls(context.Background(), in, gw, false, 5)
	if err != nil {
		t.Fatalf("DispatchToolCalls() error = %v", err)
	}
	if len(gw.reqs) != 1 || gw.reqs[0].ID != "a" {
		t.Fatalf("undecodable call must not reach the gateway: %#v", gw.reqs)
	}
	last := out.History[len(out.History)-1]
	if last.ToolCallID != "b" || last.Content != "error: invalid arguments for lookup_faq" {
		t.Fatalf("unexpected tool message: %#v", last)
	}
	if len(saved) != len(out.History) {
		t.Fatalf("checkpoint got %d messages, want %d", len(saved), len(out.History))
	}
}

func TestDispatchToolCallsAppendsResultsInOrder(t *testing.T) {
	t.Parallel()

	in := newState(t)
	in.Steps = 1
	in.Pending = []contractx.ToolRequest{
		{ID: "a", Tool: "update_lead_profile"},
		{ID: "b", Tool: "lookup_faq"},
	}
	gw := &fakeGateway{sess: in.Session}

	out, err := DispatchToolCalls(context.Background(), in, gw, true, 5)
	if err != nil {
		t.Fatalf("DispatchToolCalls() error = %v", err)
	}
	if len(gw.reqs) != 2 || gw.reqs[0].ID != "a" || gw.reqs[1].ID != "b" {
		t.Fatalf("unexpected dispatch order: %#v", gw.reqs)
	}
	last := out.History[len(out.History)-1]
	if last.Role != schema.Tool || last.ToolCallID != "b" || last.Content != "ok lookup_faq" {
		t.Fatalf("unexpected tool message: %#v", last)
	}
	if out.Ended || out.Exhausted || len(out.Pending) != 0 {
		t.Fatalf("unexpected state: ended=%v exhausted=%v pending=%d", out.Ended, out.Exhausted, len(out.Pending))
	}
	if NextAfterTools(out) != NodeCallModel {
		t.Fatalf("expected loop back to model, got %s", NextAfterTools(out))
	}
}

func TestDispatchToolCallsEndsOnFinalize(t *testing.T) {
	t.Parallel()

	in := newState(t)
	in.Pending = []contractx.ToolRequest{{ID: "f", Tool: "finalize_lead_and_end"}}
	gw := &fakeGateway{sess: in.Session, finalize: "finalize_lead_and_end"}

	out, err := DispatchToolCalls(context.Background(), in, gw, true, 5)
	if err != nil {
		t.Fatalf("DispatchToolCalls() error = %v", err)
	}
	if !out.Ended || out.Reply != "Thanks Ana!" {
		t.Fatalf("expected ended with confirmation, got ended=%v reply=%q", out.Ended, out.Reply)
	}
	if NextAfterTools(out) != NodeFinalizeReply {
		t.Fatalf("expected finalize_reply, got %s", NextAfterTools(out))
	}

	final, err := FinalizeReply(out)
	if err != nil {
		t.Fatalf("FinalizeReply() error = %v", err)
	}
	if !final.Ended || final.Reply != "Thanks Ana!" {
		t.Fatalf("unexpected output: %#v", final)
	}
}

func TestDispatchToolCallsStepLimit(t *testing.T) {
	t.Parallel()

	in := newState(t)
	in.Steps = 3
	in.Pending = []contractx.ToolRequest{{ID: "x", Tool: "lookup_faq"}}

	out, err := DispatchToolCalls(context.Background(), in, &fakeGateway{sess: in.Session}, true, 3)
	if err != nil {
		t.Fatalf("DispatchToolCalls() error = %v", err)
	}
	if !out.Exhausted {
		t.Fatal("expected exhausted after the step limit")
	}

	final, err := FinalizeReply(out)
	if err != nil {
		t.Fatalf("FinalizeReply() error = %v", err)
	}
	if final.Reply != StepLimitReply {
		t.Fatalf("unexpected reply: %q", final.Reply)
	}
}

func TestNextAfterModel(t *testing.T) {
	t.Parallel()

	if got := NextAfterModel(&GraphState{Pending: []contractx.ToolRequest{{Tool: "x"}}}); got != NodeDispatchTools {
		t.Fatalf("unexpected next node: %s", got)
	}
	if got := NextAfterModel(&GraphState{Reply: "hello"}); got != NodeFinalizeReply {
		t.Fatalf("unexpected next node: %s", got)
	}
}

func TestFinalizeReplyRejectsEmptyMessage(t *testing.T) {
	t.Parallel()

	_, err := FinalizeReply(&GraphState{Reply: "   "})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
