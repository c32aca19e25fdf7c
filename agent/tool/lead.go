package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
	knowledgex "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/knowledge"
	recordx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/record"
	statex "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/state"
	storex "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/store"
)

const (
	ToolUpdateLeadProfile = "update_lead_profile"
	ToolFinalizeLead      = "finalize_lead_and_end"
	ToolLookupFAQ         = "lookup_faq"
)

func NewLeadCatalog(writer storex.Writer, kb *knowledgex.Base, opts ...Option) *Catalog {
	s := recordx.LeadSchema()
	c := newCatalog(s, writer, opts)
	c.confirm = confirmLead
	c.degraded = "Lead recorded but encountered an issue."

	params := make(map[string]*schema.ParameterInfo, len(s.Fields))
	for _, f := range s.Fields {
		params[f.Key] = paramFor(f, false)
	}

	c.register(Tool{
		Info: &schema.ToolInfo{
			Name:        ToolUpdateLeadProfile,
			Desc:        "Save any lead details the prospect shared. Only pass fields that were mentioned.",
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		},
		Mutating: true,
		Handler:  c.updateLeadProfile,
	})

	c.register(Tool{
		Info: &schema.ToolInfo{
			Name:        ToolFinalizeLead,
			Desc:        "Save the qualified lead and end the conversation. Requires name, email and use case.",
			ParamsOneOf: noParams(),
		},
		Mutating: true,
		Handler: func(ctx context.Context, sess *statex.Session, _ map[string]any) (string, error) {
			return c.finalize(ctx, sess)
		},
	})

	c.register(Tool{
		Info: &schema.ToolInfo{
			Name: ToolLookupFAQ,
			Desc: "Look up an answer to a product or pricing question in the company FAQ.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {Type: schema.String, Desc: "The prospect's question", Required: true},
			}),
		},
		Handler: lookupFAQ(kb),
	})

	return c
}

// updateLeadProfile validates every supplied field before applying any of them,
// so a bad value leaves the record untouched.
func (c *Catalog) updateLeadProfile(ctx context.Context, sess *statex.Session, args map[string]any) (string, error) {
	type update struct {
		key   string
		value string
	}

	var updates []update
	for _, f := range c.schema.Fields {
		raw, ok, err := stringArg(args, f.Key)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		v := strings.TrimSpace(raw)
		if err := c.schema.Check(f.Key, v); err != nil {
			return "", err
		}
		updates = append(updates, update{key: f.Key, value: v})
	}

	for k := range args {
		if _, known := c.schema.Field(k); !known {
			log.Debug().Str("arg", k).Str("session_id", sess.ID).Msg("ignoring unknown lead field")
		}
	}

	if len(updates) == 0 {
		return "", fmt.Errorf("%w: no lead fields supplied", contractx.ErrValidation)
	}

	labels := make([]string, 0, len(updates))
	for _, u := range updates {
		if err := sess.Record.Set(u.key, u.value); err != nil {
			return "", err
		}
		f, _ := c.schema.Field(u.key)
		labels = append(labels, f.Label)
	}

	msg := fmt.Sprintf("Saved %s.", strings.Join(labels, ", "))
	if missing := sess.Record.MissingLabels(); len(missing) > 0 {
		msg += fmt.Sprintf(" Still needed: %s.", strings.Join(missing, ", "))
	}
	return msg, nil
}

func lookupFAQ(kb *knowledgex.Base) Handler {
	return func(ctx context.Context, sess *statex.Session, args map[string]any) (string, error) {
		query, err := requiredStringArg(args, "query")
		if err != nil {
			return "", err
		}
		if kb == nil {
			return "No FAQ is available; offer to have the team follow up.", nil
		}
		entry, ok := kb.Search(query)
		if !ok {
			return "No matching FAQ entry; offer to have the team follow up.", nil
		}
		return entry.Answer, nil
	}
}

func confirmLead(r *recordx.Record) string {
	name, _ := r.String(recordx.FieldLeadName)
	email, _ := r.String(recordx.FieldEmail)
	useCase, _ := r.String(recordx.FieldUseCase)

	company := ""
	if v, ok := r.String(recordx.FieldCompany); ok {
		company = " from " + v
	}
	return fmt.Sprintf("Thanks %s%s! Your details are saved and our team will reach out at %s about: %s.",
		name, company, email, strings.TrimSuffix(useCase, "."))
}
