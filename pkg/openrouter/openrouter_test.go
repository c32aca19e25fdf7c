package openrouter

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAttributionHeaders(t *testing.T) {
	t.Parallel()

	c := &OpenRouterConfig{SiteURL: " https://example.com ", SiteName: "Slots"}
	h := c.attributionHeaders()
	if h["HTTP-Referer"] != "https://example.com" || h["X-Title"] != "Slots" {
		t.Fatalf("unexpected headers: %v", h)
	}
	if len((&OpenRouterConfig{}).attributionHeaders()) != 0 {
		t.Fatal("expected no headers when site info is empty")
	}
}

func TestHeaderTransportSetsHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := &http.Client{Transport: &headerTransport{
		headers: map[string]string{"X-Title": "Slots"},
		next:    http.DefaultTransport,
	}}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()

	if got.Get("X-Title") != "Slots" {
		t.Fatalf("header not forwarded: %v", got)
	}
}
