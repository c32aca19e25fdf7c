package record

import (
	"fmt"
	"strings"
)

const (
	FieldDrinkType = "drinkType"
	FieldSize      = "size"
	FieldMilk      = "milk"
	FieldExtras    = "extras"
	FieldName      = "name"
)

var (
	DrinkTypes = []string{"latte", "cappuccino", "americano", "espresso", "mocha", "coffee", "cold brew", "matcha"}
	Sizes      = []string{"small", "medium", "large", "extra large"}
	Milks      = []string{"whole", "skim", "almond", "oat", "soy", "coconut", "none"}
	Extras     = []string{"sugar", "whipped cream", "caramel", "extra shot", "vanilla", "cinnamon", "honey"}
)

const OrderInProgress = "Order in progress..."

// OrderDocument is the JSON written for one finalized order.
type OrderDocument struct {
	DrinkType *string  `json:"drinkType"`
	Size      *string  `json:"size"`
	Milk      *string  `json:"milk"`
	Extras    []string `json:"extras"`
	Name      *string  `json:"name"`
	Timestamp string   `json:"timestamp"`
	SessionID string   `json:"session_id"`
}

var orderSchema = &Schema{
	Name: "order",
	Noun: "Order",
	Fields: []Field{
		{Key: FieldDrinkType, Label: "drink type", Kind: KindEnum, Options: DrinkTypes, Required: true,
			Desc: "The type of coffee drink the customer wants"},
		{Key: FieldSize, Label: "size", Kind: KindEnum, Options: Sizes, Required: true,
			Desc: "The size of the drink"},
		{Key: FieldMilk, Label: "milk", Kind: KindEnum, Options: Milks, Required: true,
			Desc: "The type of milk for the drink"},
		{Key: FieldExtras, Label: "extras", Kind: KindList, Options: Extras, Required: true,
			Desc: "List of extras, or empty for no extras"},
		{Key: FieldName, Label: "name", Kind: KindText, Required: true,
			Desc: "Customer's name for the order"},
	},
	Encode:    encodeOrder,
	Summarize: summarizeOrder,
}

// OrderSchema is shared and must not be mutated.
func OrderSchema() *Schema {
	return orderSchema
}

func NewOrder() *Record {
	return orderSchema.New()
}

func encodeOrder(r *Record, stamp Stamp) any {
	extras, ok := r.List(FieldExtras)
	if !ok {
		extras = []string{}
	}
	return OrderDocument{
		DrinkType: r.optional(FieldDrinkType),
		Size:      r.optional(FieldSize),
		Milk:      r.optional(FieldMilk),
		Extras:    extras,
		Name:      r.optional(FieldName),
		Timestamp: stamp.Timestamp(),
		SessionID: "session_" + stamp.SessionID,
	}
}

func summarizeOrder(r *Record) string {
	if !r.IsComplete() {
		return OrderInProgress
	}

	drink, _ := r.String(FieldDrinkType)
	size, _ := r.String(FieldSize)
	milk, _ := r.String(FieldMilk)
	name, _ := r.String(FieldName)
	extras, _ := r.List(FieldExtras)

	extrasText := ""
	if len(extras) > 0 {
		extrasText = " with " + strings.Join(extras, ", ")
	}
	return fmt.Sprintf("%s %s with %s milk%s for %s",
		strings.ToUpper(size), TitleCase(drink), TitleCase(milk), extrasText, name)
}
