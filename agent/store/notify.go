package store

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Publisher delivers a finalized document to a downstream consumer.
type Publisher interface {
	Publish(ctx context.Context, destination string, body []byte) (string, error)
}

// NotifyingWriter publishes every successfully persisted document. Publishing is
// best effort and never fails the persist.
type NotifyingWriter struct {
	next        Writer
	pub         Publisher
	destination string
}

func NewNotifyingWriter(next Writer, pub Publisher, destination string) *NotifyingWriter {
	return &NotifyingWriter{next: next, pub: pub, destination: destination}
}

func (w *NotifyingWriter) Persist(ctx context.Context, e Entry) (string, error) {
	location, err := w.next.Persist(ctx, e)
	if err != nil {
		return "", err
	}
	if w.pub == nil || w.destination == "" {
		return location, nil
	}

	body, err := json.Marshal(map[string]any{
		"kind":       e.Kind,
		"session_id": e.SessionID,
		"location":   location,
		"document":   e.Document,
	})
	if err != nil {
		log.Error().Err(err).Str("kind", e.Kind).Msg("marshal notification")
		return location, nil
	}

	messageID, err := w.pub.Publish(ctx, w.destination, body)
	if err != nil {
		log.Error().Err(err).Str("destination", w.destination).Str("location", location).Msg("publish notification")
		return location, nil
	}
	log.Debug().Str("message_id", messageID).Str("destination", w.destination).Msg("notification published")
	return location, nil
}
