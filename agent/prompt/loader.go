package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
)

var (
	//go:embed template/barista.txt
	baristaRaw string

	//go:embed template/lead.txt
	leadRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Order string
	Lead  string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Order: strings.TrimSpace(baristaRaw),
		Lead:  strings.TrimSpace(leadRaw),
	}
}

// For returns the system prompt for a variant. Prompts are rendered as FString
// templates, so they must not contain braces.
func (p PromptSet) For(variant contractx.Variant) (string, error) {
	var out string
	switch variant {
	case contractx.VariantOrder:
		out = p.Order
	case contractx.VariantLead:
		out = p.Lead
	default:
		return "", fmt.Errorf("%w: unknown variant %q", contractx.ErrPromptMissing, variant)
	}
	if out == "" {
		return "", fmt.Errorf("%w: variant=%s", contractx.ErrPromptMissing, variant)
	}
	return out, nil
}
