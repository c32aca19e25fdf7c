package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// FileWriter writes one indented JSON document per file named <prefix>_<key>.json.
// A second finalization with the same key gets a random suffix instead of
// overwriting the first.
type FileWriter struct {
	dir       string
	prefix    string
	now       func() time.Time
	newSuffix func() string
}

func NewFileWriter(dir, prefix string) *FileWriter {
	if strings.TrimSpace(dir) == "" {
		dir = "orders"
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = "order"
	}
	return &FileWriter{
		dir:       dir,
		prefix:    prefix,
		now:       time.Now,
		newSuffix: func() string { return uuid.NewString()[:8] },
	}
}

func (w *FileWriter) Dir() string {
	return w.dir
}

func (w *FileWriter) Persist(ctx context.Context, e Entry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", persistErr("context: %v", err)
	}

	payload, err := json.MarshalIndent(e.Document, "", "    ")
	if err != nil {
		return "", persistErr("marshal %s document: %v", e.Kind, err)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", persistErr("create directory %s: %v", w.dir, err)
	}

	base := w.prefix + "_" + entryKey(e, w.now())
	path := filepath.Join(w.dir, base+".json")
	f, err := createExclusive(path)
	if errors.Is(err, fs.ErrExist) {
		log.Warn().Str("path", path).Msg("document key collision, writing with suffix")
		path = filepath.Join(w.dir, base+"_"+w.newSuffix()+".json")
		f, err = createExclusive(path)
	}
	if err != nil {
		return "", persistErr("create %s: %v", path, err)
	}

	if _, err := f.Write(payload); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", persistErr("write %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", persistErr("close %s: %v", path, err)
	}

	log.Info().Str("path", path).Str("kind", e.Kind).Str("session_id", e.SessionID).Msg("document saved")
	return path, nil
}

func createExclusive(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

// ReadDocument decodes one document written by FileWriter into out.
func ReadDocument(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
