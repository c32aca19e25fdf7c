package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultListKeyPrefix = "slots:"
	maxResponseSizeBytes = 2 << 20
)

var ErrInvalidKind = errors.New("document kind is empty")

// UpstashOption customizes UpstashListWriter.
type UpstashOption func(*UpstashListWriter)

func WithKeyPrefix(prefix string) UpstashOption {
	return func(s *UpstashListWriter) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithHTTPClient(client *http.Client) UpstashOption {
	return func(s *UpstashListWriter) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// UpstashListWriter appends documents to a Redis list per kind through the Upstash
// REST API. RPUSH is atomic, so concurrent sessions never lose an append.
type UpstashListWriter struct {
	baseURL    string
	token      string
	httpClient *http.Client
	keyPrefix  string
}

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

type UpstashConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

func NewUpstashListWriter(cfg UpstashConfig, opts ...UpstashOption) (*UpstashListWriter, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	w := &UpstashListWriter{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		keyPrefix: defaultListKeyPrefix,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	return w, nil
}

func (s *UpstashListWriter) Persist(ctx context.Context, e Entry) (string, error) {
	key, err := s.listKey(e.Kind)
	if err != nil {
		return "", persistErr("%v", err)
	}

	payload, err := json.Marshal(e.Document)
	if err != nil {
		return "", persistErr("marshal %s document: %v", e.Kind, err)
	}

	resp, err := s.exec(ctx, []any{"RPUSH", key, string(payload)})
	if err != nil {
		return "", persistErr("%v", err)
	}

	var length int64
	if err := json.Unmarshal(resp.Result, &length); err != nil {
		return "", persistErr("decode rpush result: %v", err)
	}

	location := fmt.Sprintf("upstash:%s[%d]", key, length-1)
	log.Info().Str("location", location).Str("session_id", e.SessionID).Msg("document saved")
	return location, nil
}

// Range returns every document stored for kind, oldest first.
func (s *UpstashListWriter) Range(ctx context.Context, kind string) ([]json.RawMessage, error) {
	key, err := s.listKey(kind)
	if err != nil {
		return nil, err
	}

	resp, err := s.exec(ctx, []any{"LRANGE", key, 0, -1})
	if err != nil {
		return nil, err
	}

	var encoded []string
	if err := json.Unmarshal(resp.Result, &encoded); err != nil {
		return nil, fmt.Errorf("decode lrange result: %w", err)
	}
	out := make([]json.RawMessage, 0, len(encoded))
	for _, item := range encoded {
		out = append(out, json.RawMessage(item))
	}
	return out, nil
}

func (s *UpstashListWriter) listKey(kind string) (string, error) {
	if strings.TrimSpace(kind) == "" {
		return "", ErrInvalidKind
	}
	prefix := strings.TrimSpace(s.keyPrefix)
	if prefix == "" {
		prefix = defaultListKeyPrefix
	}
	return prefix + kind, nil
}

func (s *UpstashListWriter) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	if s == nil {
		return nil, errors.New("nil writer")
	}
	if len(command) == 0 {
		return nil, errors.New("empty redis command")
	}

	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}
