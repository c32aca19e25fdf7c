package llm

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
	configx "github.com/tanpawarit/Chative-Slot-Filling-Agent/pkg/config"
)

func validConfig() Config {
	return Config{
		BaseURL:            "https://openrouter.ai/api/v1",
		APIKey:             "k",
		Model:              "m",
		MaxCompletionToken: 500,
		Temperature:        0.5,
		Timeout:            30 * time.Second,
		Order:              Profile{Temperature: -1},
		Lead:               Profile{Temperature: -1},
	}
}

func TestOpenRouterForAppliesVariantOverrides(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.APIKey = " key "
	cfg.Model = "openai/gpt-4o-mini"
	cfg.Lead = Profile{Model: "anthropic/claude-3.5-haiku", Temperature: 0.2}

	order := cfg.OpenRouterFor(contractx.VariantOrder)
	if order.Model != "openai/gpt-4o-mini" || order.Temperature != 0.5 {
		t.Fatalf("unexpected order config: %+v", order)
	}
	if order.APIKey != "key" || order.MaxCompletionToken == nil || *order.MaxCompletionToken != 500 {
		t.Fatalf("unexpected shared fields: %+v", order)
	}

	lead := cfg.OpenRouterFor(contractx.VariantLead)
	if lead.Model != "anthropic/claude-3.5-haiku" || lead.Temperature != 0.2 {
		t.Fatalf("unexpected lead config: %+v", lead)
	}
}

func TestOpenRouterForZeroTemperatureOverride(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Order = Profile{Temperature: 0}
	if got := cfg.OpenRouterFor(contractx.VariantOrder).Temperature; got != 0 {
		t.Fatalf("expected explicit zero temperature, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for name, mutate := range map[string]func(*Config){
		"missing key":      func(c *Config) { c.APIKey = " " },
		"missing model":    func(c *Config) { c.Model = "" },
		"relative url":     func(c *Config) { c.BaseURL = "openrouter.ai" },
		"zero tokens":      func(c *Config) { c.MaxCompletionToken = 0 },
		"zero timeout":     func(c *Config) { c.Timeout = 0 },
		"hot default":      func(c *Config) { c.Temperature = 2.5 },
		"negative default": func(c *Config) { c.Temperature = -0.1 },
		"hot lead":         func(c *Config) { c.Lead.Temperature = 3 },
	} {
		cfg := validConfig()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, contractx.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", name, err)
		}
	}
}

func TestConfigLoadsVariantProfilesFromEnv(t *testing.T) {
	t.Setenv("LLMTEST_API_KEY", "key")
	t.Setenv("LLMTEST_MODEL", "openai/gpt-4o-mini")
	t.Setenv("LLMTEST_LEAD_MODEL", "anthropic/claude-3.5-haiku")
	t.Setenv("LLMTEST_LEAD_TEMPERATURE", "0.1")

	cfg, err := configx.Load[Config]("LLMTEST", filepath.Join(t.TempDir(), "absent.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Order.Model != "" || cfg.Order.Temperature != -1 {
		t.Fatalf("unexpected order profile: %+v", cfg.Order)
	}

	lead := cfg.OpenRouterFor(contractx.VariantLead)
	if lead.Model != "anthropic/claude-3.5-haiku" || lead.Temperature != 0.1 {
		t.Fatalf("unexpected lead config: %+v", lead)
	}
	if got := cfg.OpenRouterFor(contractx.VariantOrder); got.Model != "openai/gpt-4o-mini" || got.Temperature != 0.5 {
		t.Fatalf("unexpected order config: %+v", got)
	}
}
