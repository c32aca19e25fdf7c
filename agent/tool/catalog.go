package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
	knowledgex "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/knowledge"
	recordx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/record"
	statex "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/state"
	storex "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/store"
)

// Handler applies one tool call to the session and returns the acknowledgement
// surfaced to the conversation.
type Handler func(ctx context.Context, sess *statex.Session, args map[string]any) (string, error)

type Tool struct {
	Info     *schema.ToolInfo
	Mutating bool // rejected once the session is finalized
	Handler  Handler
}

// Catalog is the fixed registry of tools for one record schema. It is built once
// at startup and shared by every session of that variant.
type Catalog struct {
	schema *recordx.Schema
	writer storex.Writer
	now    func() time.Time

	tools []Tool
	index map[string]int

	confirm  func(r *recordx.Record) string
	degraded string
}

type Option func(*Catalog)

func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
		}
	}
}

// New builds the catalog for a variant. kb is only used by the lead variant and may be nil.
func New(variant contractx.Variant, writer storex.Writer, kb *knowledgex.Base, opts ...Option) (*Catalog, error) {
	if writer == nil {
		return nil, errors.New("persistence writer is required")
	}
	switch variant {
	case contractx.VariantOrder:
		return NewOrderCatalog(writer, opts...), nil
	case contractx.VariantLead:
		return NewLeadCatalog(writer, kb, opts...), nil
	default:
		return nil, fmt.Errorf("%w: unknown variant %q", contractx.ErrValidation, variant)
	}
}

func newCatalog(s *recordx.Schema, writer storex.Writer, opts []Option) *Catalog {
	c := &Catalog{
		schema: s,
		writer: writer,
		now:    time.Now,
		index:  make(map[string]int, 8),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Catalog) register(t Tool) {
	if _, dup := c.index[t.Info.Name]; dup {
		panic(fmt.Sprintf("tool %s registered twice", t.Info.Name))
	}
	c.index[t.Info.Name] = len(c.tools)
	c.tools = append(c.tools, t)
}

func (c *Catalog) Schema() *recordx.Schema {
	return c.schema
}

// NewSession starts an empty session for this catalog's schema.
func (c *Catalog) NewSession() *statex.Session {
	return statex.NewSession(c.schema, c.now())
}

// Infos is the tool description handed to the reasoning component.
func (c *Catalog) Infos() []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, 0, len(c.tools))
	for _, t := range c.tools {
		out = append(out, t.Info)
	}
	return out
}

func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.tools))
	for _, t := range c.tools {
		out = append(out, t.Info.Name)
	}
	return out
}

func (c *Catalog) Lookup(name string) (Tool, bool) {
	i, ok := c.index[name]
	if !ok {
		return Tool{}, false
	}
	return c.tools[i], true
}

// Invoke runs a tool and returns its typed error, if any. On failure the returned
// message may still carry text meant for the conversation.
func (c *Catalog) Invoke(ctx context.Context, sess *statex.Session, name string, args map[string]any) (string, error) {
	if sess == nil || sess.Record == nil {
		return "", fmt.Errorf("%w: session is nil", contractx.ErrValidation)
	}
	t, ok := c.Lookup(strings.TrimSpace(name))
	if !ok {
		return "", fmt.Errorf("%w: %s", contractx.ErrUnknownTool, name)
	}
	if t.Mutating && sess.Finalized() {
		return fmt.Sprintf("%s already finalized.", c.schema.Noun),
			fmt.Errorf("%w: tool=%s session=%s", contractx.ErrFinalized, name, sess.ID)
	}
	if args == nil {
		args = map[string]any{}
	}

	msg, err := t.Handler(ctx, sess, args)
	if err != nil {
		return msg, err
	}

	log.Info().
		Str("tool", name).
		Str("session_id", sess.ID).
		Str("progress", sess.Record.Summary()).
		Msg("tool applied")
	return msg, nil
}

// Execute is the conversation boundary: it never fails, every error becomes part
// of the result so one broken call cannot end the conversation.
func (c *Catalog) Execute(ctx context.Context, sess *statex.Session, req contractx.ToolRequest) (out contractx.ToolResult) {
	out.Tool = req.Tool
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("tool", req.Tool).Interface("panic", r).Msg("tool handler panicked")
			out = contractx.ToolResult{Tool: req.Tool, Error: "internal error while running " + req.Tool}
		}
	}()

	msg, err := c.Invoke(ctx, sess, req.Tool, req.Args)
	if err != nil {
		sessionID := ""
		if sess != nil {
			sessionID = sess.ID
		}
		log.Warn().Err(err).Str("tool", req.Tool).Str("session_id", sessionID).Msg("tool call failed")
		out.Error = err.Error()
		if msg != "" {
			out.Result = msg
		}
		return out
	}
	out.Result = msg
	return out
}

// Bind exposes the catalog as a gateway for a single session.
func (c *Catalog) Bind(sess *statex.Session) contractx.ToolGateway {
	return &boundCatalog{catalog: c, session: sess}
}

type boundCatalog struct {
	catalog *Catalog
	session *statex.Session
}

func (b *boundCatalog) Execute(ctx context.Context, req contractx.ToolRequest) contractx.ToolResult {
	return b.catalog.Execute(ctx, b.session, req)
}

// finalize validates completeness, persists and closes the session. An incomplete
// record is a normal answer listing what is missing, not an error.
func (c *Catalog) finalize(ctx context.Context, sess *statex.Session) (string, error) {
	rec := sess.Record
	if missing := rec.MissingLabels(); len(missing) > 0 {
		log.Info().Str("session_id", sess.ID).Strs("missing", missing).Msg("cannot finalize")
		return "Missing: " + strings.Join(missing, ", "), nil
	}

	now := c.now()
	entry := storex.Entry{
		Kind:      c.schema.Name,
		Key:       now.Format(statex.SessionIDLayout),
		SessionID: sess.ID,
		Document:  rec.Encode(recordx.Stamp{Time: now, SessionID: sess.ID}),
	}

	location, err := c.writer.Persist(ctx, entry)
	if err != nil {
		if !errors.Is(err, contractx.ErrPersistence) {
			err = fmt.Errorf("%w: %v", contractx.ErrPersistence, err)
		}
		return c.degraded, err
	}
	if err := sess.MarkFinalized(location, now); err != nil {
		return "", err
	}

	log.Info().Str("session_id", sess.ID).Str("location", location).Str("summary", rec.Summary()).Msg("record finalized")
	return c.confirm(rec), nil
}

func noParams() *schema.ParamsOneOf {
	return schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{})
}

func paramFor(f recordx.Field, required bool) *schema.ParameterInfo {
	switch f.Kind {
	case recordx.KindEnum:
		return &schema.ParameterInfo{Type: schema.String, Desc: f.Desc, Enum: f.Options, Required: required}
	case recordx.KindList:
		return &schema.ParameterInfo{
			Type:     schema.Array,
			Desc:     f.Desc,
			ElemInfo: &schema.ParameterInfo{Type: schema.String, Enum: f.Options},
			Required: required,
		}
	default:
		return &schema.ParameterInfo{Type: schema.String, Desc: f.Desc, Required: required}
	}
}
