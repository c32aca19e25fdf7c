package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	recordx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/record"
	statex "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/state"
	storex "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/store"
)

const (
	ToolSetDrinkType   = "set_drink_type"
	ToolSetSize        = "set_size"
	ToolSetMilk        = "set_milk"
	ToolSetExtras      = "set_extras"
	ToolSetName        = "set_name"
	ToolGetOrderStatus = "get_order_status"
	ToolCompleteOrder  = "complete_order"
)

func NewOrderCatalog(writer storex.Writer, opts ...Option) *Catalog {
	s := recordx.OrderSchema()
	c := newCatalog(s, writer, opts)
	c.confirm = confirmOrder
	c.degraded = "Order recorded but encountered an issue."

	field := func(key string) recordx.Field {
		f, _ := s.Field(key)
		return f
	}

	c.register(Tool{
		Info: &schema.ToolInfo{
			Name: ToolSetDrinkType,
			Desc: "Set the coffee drink the customer ordered.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"drink": paramFor(field(recordx.FieldDrinkType), true),
			}),
		},
		Mutating: true,
		Handler: c.enumSetter(recordx.FieldDrinkType, "drink", func(v string) string {
			return fmt.Sprintf("One %s coming up!", v)
		}),
	})

	c.register(Tool{
		Info: &schema.ToolInfo{
			Name: ToolSetSize,
			Desc: "Set the size of the drink.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"size": paramFor(field(recordx.FieldSize), true),
			}),
		},
		Mutating: true,
		Handler: c.enumSetter(recordx.FieldSize, "size", func(v string) string {
			return fmt.Sprintf("%s size selected.", recordx.TitleCase(v))
		}),
	})

	c.register(Tool{
		Info: &schema.ToolInfo{
			Name: ToolSetMilk,
			Desc: "Set the milk for the drink; use none for black coffee.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"milk": paramFor(field(recordx.FieldMilk), true),
			}),
		},
		Mutating: true,
		Handler: c.enumSetter(recordx.FieldMilk, "milk", func(v string) string {
			if v == "none" {
				return "Black coffee confirmed."
			}
			return fmt.Sprintf("%s milk selected.", recordx.TitleCase(v))
		}),
	})

	c.register(Tool{
		Info: &schema.ToolInfo{
			Name: ToolSetExtras,
			Desc: "Set the extras. Call with an empty list when the customer wants none.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"extras": paramFor(field(recordx.FieldExtras), false),
			}),
		},
		Mutating: true,
		Handler:  c.setExtras,
	})

	c.register(Tool{
		Info: &schema.ToolInfo{
			Name: ToolSetName,
			Desc: "Set the customer's name for the order.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"name": paramFor(field(recordx.FieldName), true),
			}),
		},
		Mutating: true,
		Handler:  c.setName,
	})

	c.register(Tool{
		Info: &schema.ToolInfo{
			Name:        ToolGetOrderStatus,
			Desc:        "Report what has been collected so far and what is still missing.",
			ParamsOneOf: noParams(),
		},
		Handler: c.orderStatus,
	})

	c.register(Tool{
		Info: &schema.ToolInfo{
			Name:        ToolCompleteOrder,
			Desc:        "Finalize and save the order once every detail is collected.",
			ParamsOneOf: noParams(),
		},
		Mutating: true,
		Handler: func(ctx context.Context, sess *statex.Session, _ map[string]any) (string, error) {
			return c.finalize(ctx, sess)
		},
	})

	return c
}

// enumSetter validates one enumerated argument before writing it to the record.
func (c *Catalog) enumSetter(key, arg string, ack func(string) string) Handler {
	return func(ctx context.Context, sess *statex.Session, args map[string]any) (string, error) {
		raw, err := requiredStringArg(args, arg)
		if err != nil {
			return "", err
		}
		v := normalizeOption(raw)
		if err := c.schema.Check(key, v); err != nil {
			return "", err
		}
		if err := sess.Record.Set(key, v); err != nil {
			return "", err
		}
		return ack(v), nil
	}
}

func (c *Catalog) setExtras(ctx context.Context, sess *statex.Session, args map[string]any) (string, error) {
	raw, err := stringListArg(args, "extras")
	if err != nil {
		return "", err
	}
	extras := make([]string, 0, len(raw))
	for _, e := range raw {
		extras = append(extras, normalizeOption(e))
	}
	if err := c.schema.Check(recordx.FieldExtras, extras); err != nil {
		return "", err
	}
	if err := sess.Record.Set(recordx.FieldExtras, extras); err != nil {
		return "", err
	}
	if len(extras) == 0 {
		return "No extras added.", nil
	}
	return fmt.Sprintf("Added %s.", strings.Join(extras, ", ")), nil
}

func (c *Catalog) setName(ctx context.Context, sess *statex.Session, args map[string]any) (string, error) {
	raw, err := requiredStringArg(args, "name")
	if err != nil {
		return "", err
	}
	name := recordx.TitleCase(strings.TrimSpace(raw))
	if err := c.schema.Check(recordx.FieldName, name); err != nil {
		return "", err
	}
	if err := sess.Record.Set(recordx.FieldName, name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Thank you, %s.", name), nil
}

func (c *Catalog) orderStatus(ctx context.Context, sess *statex.Session, _ map[string]any) (string, error) {
	rec := sess.Record
	if sess.Finalized() {
		return "Order finalized: " + rec.Summary(), nil
	}
	if rec.IsComplete() {
		return "Order complete: " + rec.Summary(), nil
	}
	return fmt.Sprintf("Order in progress. Still needed: %s.", strings.Join(rec.MissingLabels(), ", ")), nil
}

func confirmOrder(r *recordx.Record) string {
	drink, _ := r.String(recordx.FieldDrinkType)
	size, _ := r.String(recordx.FieldSize)
	milk, _ := r.String(recordx.FieldMilk)
	name, _ := r.String(recordx.FieldName)
	extras, _ := r.List(recordx.FieldExtras)

	milkText := fmt.Sprintf(" with %s milk", milk)
	if milk == "none" {
		milkText = " with no milk"
	}
	extrasText := ""
	if len(extras) > 0 {
		extrasText = " and " + strings.Join(extras, ", ")
	}
	return fmt.Sprintf("Your %s %s%s%s is confirmed, %s.", size, drink, milkText, extrasText, name)
}
