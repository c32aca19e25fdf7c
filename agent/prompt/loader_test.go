package prompt

import (
	"errors"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
)

func TestLoadPromptSetPerVariant(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	for _, v := range []contractx.Variant{contractx.VariantOrder, contractx.VariantLead} {
		p, err := set.For(v)
		if err != nil {
			t.Fatalf("For(%s) error = %v", v, err)
		}
		if strings.ContainsAny(p, "{}") {
			t.Fatalf("prompt for %s must not contain template braces", v)
		}
	}

	order, _ := set.For(contractx.VariantOrder)
	if !strings.Contains(order, "complete_order") {
		t.Fatal("order prompt should mention complete_order")
	}
}

func TestPromptMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadPromptSet().For(contractx.Variant("ticket"))
	if !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("expected ErrPromptMissing, got %v", err)
	}
	_, err = PromptSet{}.For(contractx.VariantLead)
	if !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("expected ErrPromptMissing, got %v", err)
	}
}
