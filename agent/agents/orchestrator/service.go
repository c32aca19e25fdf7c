package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
	nodex "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/nodes"
	statex "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/state"
	toolx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/tool"
)

var (
	ErrInvalidMessage    = nodex.ErrInvalidMessage
	ErrInvalidSession    = nodex.ErrInvalidSession
	ErrConversationEnded = errors.New("conversation already ended")
)

const DefaultMaxSteps = 8

type Config struct {
	MaxSteps      int
	EndOnFinalize bool
}

// Orchestrator owns the compiled turn graph. It is shared by every session of one
// variant; per-session state lives in Runner.
type Orchestrator struct {
	catalog *toolx.Catalog

	modelRunner compose.Runnable[map[string]any, *schema.Message]
	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	maxSteps      int
	endOnFinalize bool

	now func() time.Time
}

func New(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	catalog *toolx.Catalog,
	systemPrompt string,
	cfg Config,
) (*Orchestrator, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if catalog == nil {
		return nil, errors.New("tool catalog is required")
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: system prompt is empty", contractx.ErrPromptMissing)
	}

	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	toolModel, err := chatModel.WithTools(catalog.Infos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools: %v", contractx.ErrModelInvoke, err)
	}
	modelRunner, err := compileTurnModelGraph(ctx, toolModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile turn model graph: %v", contractx.ErrModelInvoke, err)
	}

	o := &Orchestrator{
		catalog:       catalog,
		modelRunner:   modelRunner,
		maxSteps:      maxSteps,
		endOnFinalize: cfg.EndOnFinalize,
		now:           time.Now,
	}

	graphRunner, err := o.compileHandleTurnGraph(ctx)
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// NewRunner starts a fresh conversation with an empty record.
func (o *Orchestrator) NewRunner() *Runner {
	return &Runner{o: o, session: o.catalog.NewSession()}
}

// Runner drives one conversation. Turns must not overlap.
type Runner struct {
	o *Orchestrator

	mu      sync.Mutex
	session *statex.Session
	history []*schema.Message
	ended   bool
}

func (r *Runner) Session() *statex.Session {
	return r.session
}

func (r *Runner) History() []*schema.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*schema.Message(nil), r.history...)
}

// HandleTurn feeds one user utterance through the model and the tool catalog and
// returns what should be said back. ended reports that the conversation is over.
// When a turn fails after tools already ran, the transcript keeps everything up to
// the last completed tool round so it matches the record.
func (r *Runner) HandleTurn(ctx context.Context, text string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ended {
		return "", true, ErrConversationEnded
	}

	var checkpoint []*schema.Message
	out, err := r.o.graphRunner.Invoke(ctx, nodex.GraphInput{
		Session: r.session,
		History: r.history,
		Text:    text,
		Checkpoint: func(history []*schema.Message) {
			checkpoint = history
		},
	})
	if err != nil {
		if checkpoint != nil {
			r.history = checkpoint
		}
		return "", false, err
	}

	r.history = out.History
	r.ended = out.Ended
	return out.Reply, out.Ended, nil
}
