package llm

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
	openrouterx "github.com/tanpawarit/Chative-Slot-Filling-Agent/pkg/openrouter"
)

// MaxTemperature is the upper bound OpenRouter accepts.
const MaxTemperature = 2

// Profile overrides the shared model settings for one variant.
// An empty Model or a negative Temperature falls back to the shared value.
type Profile struct {
	Model       string  `envconfig:"MODEL"`
	Temperature float32 `envconfig:"TEMPERATURE" default:"-1"`
}

// Config is loaded with the OPENROUTER prefix. Variant overrides read
// OPENROUTER_ORDER_MODEL, OPENROUTER_LEAD_TEMPERATURE and so on.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	Order Profile `envconfig:"ORDER"`
	Lead  Profile `envconfig:"LEAD"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	if u, err := url.Parse(strings.TrimSpace(c.BaseURL)); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base url %q is not absolute", contractx.ErrValidation, c.BaseURL)
	}
	if c.MaxCompletionToken <= 0 {
		return fmt.Errorf("%w: max completion token must be positive", contractx.ErrValidation)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", contractx.ErrValidation)
	}
	if c.Temperature < 0 || c.Temperature > MaxTemperature {
		return fmt.Errorf("%w: temperature %.2f out of range [0, %d]", contractx.ErrValidation, c.Temperature, MaxTemperature)
	}
	for variant, p := range map[contractx.Variant]Profile{
		contractx.VariantOrder: c.Order,
		contractx.VariantLead:  c.Lead,
	} {
		if p.Temperature > MaxTemperature {
			return fmt.Errorf("%w: %s temperature %.2f above %d", contractx.ErrValidation, variant, p.Temperature, MaxTemperature)
		}
	}
	return nil
}

func (c Config) profile(variant contractx.Variant) Profile {
	switch variant {
	case contractx.VariantOrder:
		return c.Order
	case contractx.VariantLead:
		return c.Lead
	default:
		return Profile{Temperature: -1}
	}
}

// OpenRouterFor resolves the model settings one variant runs with.
func (c Config) OpenRouterFor(variant contractx.Variant) openrouterx.Config {
	p := c.profile(variant)

	modelName := strings.TrimSpace(c.Model)
	if v := strings.TrimSpace(p.Model); v != "" {
		modelName = v
	}
	temp := c.Temperature
	if p.Temperature >= 0 {
		temp = p.Temperature
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
