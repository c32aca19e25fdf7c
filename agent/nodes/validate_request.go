package orchestratornode

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
	statex "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session is missing")
)

type GraphInput struct {
	Session    *statex.Session
	History    []*schema.Message
	Text       string
	// Checkpoint receives the transcript after every completed tool round.
	Checkpoint func(history []*schema.Message)
}

type GraphOutput struct {
	Reply   string
	Ended   bool
	History []*schema.Message
}

type GraphState struct {
	Text    string
	Now     time.Time
	Session *statex.Session
	History []*schema.Message

	Checkpoint func(history []*schema.Message)

	Steps     int
	Pending   []contractx.ToolRequest
	Reply     string
	Ended     bool
	Exhausted bool
}

// ValidateRequest starts a turn. History is copied so a failed turn leaves the
// caller's transcript untouched.
func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	if in.Session == nil || in.Session.Record == nil {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	history := slices.Clone(in.History)
	history = append(history, schema.UserMessage(text))

	return &GraphState{
		Text:    text,
		Now:     nowFn().UTC(),
		Session:    in.Session,
		History:    history,
		Checkpoint: in.Checkpoint,
	}, nil
}
