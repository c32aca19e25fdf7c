package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type documentRow struct {
	bun.BaseModel `bun:"table:slot_documents,alias:sd"`

	ID        string         `bun:"id,pk,type:uuid"`
	Kind      string         `bun:"kind,notnull"`
	SessionID string         `bun:"session_id"`
	DocKey    string         `bun:"doc_key,notnull"`
	Payload   map[string]any `bun:"payload,type:jsonb,notnull"`
	CreatedAt time.Time      `bun:"created_at,notnull"`
}

func OpenPostgres(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// PostgresWriter stores every finalized document as a row in slot_documents.
// Unlike the file backends it is safe for any number of concurrent sessions.
type PostgresWriter struct {
	db    *bun.DB
	now   func() time.Time
	newID func() string
}

func NewPostgresWriter(db *bun.DB) *PostgresWriter {
	return &PostgresWriter{
		db:    db,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (w *PostgresWriter) EnsureSchema(ctx context.Context) error {
	if _, err := w.db.NewCreateTable().Model((*documentRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return persistErr("create table slot_documents: %v", err)
	}
	return nil
}

func (w *PostgresWriter) Persist(ctx context.Context, e Entry) (string, error) {
	row, err := newDocumentRow(e, w.newID(), w.now())
	if err != nil {
		return "", err
	}
	if _, err := w.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return "", persistErr("insert %s document: %v", e.Kind, err)
	}

	location := "postgres://slot_documents/" + row.ID
	log.Info().Str("location", location).Str("kind", e.Kind).Str("session_id", e.SessionID).Msg("document saved")
	return location, nil
}

// List returns stored payloads of one kind in insertion order.
func (w *PostgresWriter) List(ctx context.Context, kind string) ([]map[string]any, error) {
	var rows []documentRow
	err := w.db.NewSelect().
		Model(&rows).
		Where("kind = ?", kind).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select %s documents: %w", kind, err)
	}
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Payload)
	}
	return out, nil
}

func newDocumentRow(e Entry, id string, now time.Time) (*documentRow, error) {
	raw, err := json.Marshal(e.Document)
	if err != nil {
		return nil, persistErr("marshal %s document: %v", e.Kind, err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, persistErr("%s document is not a JSON object: %v", e.Kind, err)
	}
	return &documentRow{
		ID:        id,
		Kind:      e.Kind,
		SessionID: e.SessionID,
		DocKey:    entryKey(e, now),
		Payload:   payload,
		CreatedAt: now.UTC(),
	}, nil
}
