package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
)

// Entry is one finalized record handed to a Writer.
type Entry struct {
	Kind      string // schema name, e.g. "order" or "lead"
	Key       string // YYYYMMDD_HHMMSS of the finalization
	SessionID string
	Document  any
}

// Writer commits a finalized record and reports where it went. Failures wrap
// contract.ErrPersistence.
type Writer interface {
	Persist(ctx context.Context, e Entry) (string, error)
}

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendUpstash  = "upstash"
)

type Config struct {
	Backend          string        `split_words:"true" default:"file"`
	PostgresDSN      string        `envconfig:"POSTGRES_DSN"`
	UpstashURL       string        `split_words:"true"`
	UpstashToken     string        `split_words:"true"`
	UpstashTimeout   time.Duration `split_words:"true" default:"10s"`
	UpstashKeyPrefix string        `split_words:"true" default:"slots:"`
}

// Paths locates the file backends.
type Paths struct {
	OrdersDir string
	LeadsPath string
}

// Open builds the writer for a variant from configuration.
func Open(ctx context.Context, cfg Config, variant contractx.Variant, paths Paths) (Writer, error) {
	if !variant.Valid() {
		return nil, fmt.Errorf("%w: unknown variant %q", contractx.ErrValidation, variant)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendFile:
		if variant == contractx.VariantOrder {
			return NewFileWriter(paths.OrdersDir, string(variant)), nil
		}
		return NewArrayFileWriter(paths.LeadsPath), nil
	case BackendPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return nil, fmt.Errorf("%w: postgres dsn is required", contractx.ErrValidation)
		}
		w := NewPostgresWriter(OpenPostgres(cfg.PostgresDSN))
		if err := w.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return w, nil
	case BackendUpstash:
		return NewUpstashListWriter(UpstashConfig{
			URL:     cfg.UpstashURL,
			Token:   cfg.UpstashToken,
			Timeout: cfg.UpstashTimeout,
		}, WithKeyPrefix(cfg.UpstashKeyPrefix))
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", contractx.ErrValidation, cfg.Backend)
	}
}

func entryKey(e Entry, now time.Time) string {
	if k := strings.TrimSpace(e.Key); k != "" {
		return k
	}
	return now.Format("20060102_150405")
}

func persistErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", contractx.ErrPersistence, fmt.Sprintf(format, args...))
}
