package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
)

func TestUpstashListWriterListKey(t *testing.T) {
	t.Parallel()

	w := &UpstashListWriter{}
	got, err := w.listKey("lead")
	if err != nil {
		t.Fatalf("listKey() error = %v", err)
	}
	if got != "slots:lead" {
		t.Fatalf("listKey() = %q, want %q", got, "slots:lead")
	}
}

func TestUpstashListWriterListKeyEmptyKind(t *testing.T) {
	t.Parallel()

	w := &UpstashListWriter{}
	_, err := w.listKey("   ")
	if !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("listKey() error = %v, want ErrInvalidKind", err)
	}
}

func TestNewUpstashListWriterRequiresURLAndToken(t *testing.T) {
	t.Parallel()

	if _, err := NewUpstashListWriter(UpstashConfig{Token: "t"}); err == nil {
		t.Fatal("expected error for missing url")
	}
	if _, err := NewUpstashListWriter(UpstashConfig{URL: "https://example.upstash.io"}); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestUpstashListWriterPersistPushesDocument(t *testing.T) {
	t.Parallel()

	var gotCommand []any
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Errorf("decode command: %v", err)
		}
		fmt.Fprint(w, `{"result":3}`)
	}))
	t.Cleanup(server.Close)

	writer, err := NewUpstashListWriter(
		UpstashConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
		WithKeyPrefix("shop:"),
	)
	if err != nil {
		t.Fatalf("NewUpstashListWriter() error = %v", err)
	}

	location, err := writer.Persist(context.Background(), Entry{
		Kind:      "lead",
		SessionID: "20260101_000000",
		Document:  map[string]any{"name": "Ana"},
	})
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	if location != "upstash:shop:lead[2]" {
		t.Fatalf("location = %q", location)
	}
	if gotAuth != "Bearer token" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if len(gotCommand) != 3 {
		t.Fatalf("unexpected command: %#v", gotCommand)
	}
	if gotCommand[0] != "RPUSH" || gotCommand[1] != "shop:lead" {
		t.Fatalf("unexpected command: %#v", gotCommand)
	}
	if gotCommand[2] != `{"name":"Ana"}` {
		t.Fatalf("payload = %v", gotCommand[2])
	}
}

func TestUpstashListWriterPersistErrorWrapsPersistence(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"WRONGTYPE"}`)
	}))
	t.Cleanup(server.Close)

	writer, err := NewUpstashListWriter(
		UpstashConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashListWriter() error = %v", err)
	}

	_, err = writer.Persist(context.Background(), Entry{Kind: "order", Document: map[string]any{}})
	if !errors.Is(err, contractx.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestUpstashListWriterRange(t *testing.T) {
	t.Parallel()

	var gotCommand []any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Errorf("decode command: %v", err)
		}
		fmt.Fprint(w, `{"result":["{\"name\":\"Ana\"}","{\"name\":\"Ben\"}"]}`)
	}))
	t.Cleanup(server.Close)

	writer, err := NewUpstashListWriter(
		UpstashConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashListWriter() error = %v", err)
	}

	items, err := writer.Range(context.Background(), "lead")
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if string(items[1]) != `{"name":"Ben"}` {
		t.Fatalf("items[1] = %s", items[1])
	}
	if gotCommand[0] != "LRANGE" || gotCommand[1] != "slots:lead" {
		t.Fatalf("unexpected command: %#v", gotCommand)
	}
}
