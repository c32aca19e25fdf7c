package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// ArrayFileWriter appends documents to a single JSON array file by rewriting the
// whole file. Writers in this process are serialized by a mutex and writers in
// other processes by an advisory lock on <path>.lock.
type ArrayFileWriter struct {
	path string
	mu   sync.Mutex
}

func NewArrayFileWriter(path string) *ArrayFileWriter {
	if strings.TrimSpace(path) == "" {
		path = "leads_db.json"
	}
	return &ArrayFileWriter{path: path}
}

func (w *ArrayFileWriter) Path() string {
	return w.path
}

func (w *ArrayFileWriter) Persist(ctx context.Context, e Entry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", persistErr("context: %v", err)
	}

	payload, err := json.Marshal(e.Document)
	if err != nil {
		return "", persistErr("marshal %s document: %v", e.Kind, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", persistErr("create directory %s: %v", dir, err)
		}
	}

	unlock, err := lockFile(w.path + ".lock")
	if err != nil {
		return "", persistErr("lock %s: %v", w.path, err)
	}
	defer unlock()

	items := readArrayLenient(w.path)
	items = append(items, json.RawMessage(payload))

	data, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return "", persistErr("marshal %s: %v", w.path, err)
	}
	if err := writeAtomic(w.path, data); err != nil {
		return "", persistErr("write %s: %v", w.path, err)
	}

	log.Info().Str("path", w.path).Str("kind", e.Kind).Int("count", len(items)).Msg("document appended")
	return w.path, nil
}

// ReadArray returns the documents stored in an array file. A missing file is an
// empty array.
func ReadArray(path string) ([]json.RawMessage, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []json.RawMessage{}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}

// readArrayLenient never fails: unreadable or corrupt content is treated as empty
// and replaced by the next write.
func readArrayLenient(path string) []json.RawMessage {
	items, err := ReadArray(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("existing array unreadable, starting empty")
		return []json.RawMessage{}
	}
	return items
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
