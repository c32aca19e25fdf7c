package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/rs/zerolog/log"
)

type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Defaults is written when the knowledge-base file does not exist.
var Defaults = []Entry{
	{
		Question: "What does the product do?",
		Answer:   "We build voice and chat assistants that collect structured information from customers and hand it to your existing systems.",
	},
	{
		Question: "How much does it cost?",
		Answer:   "Pricing starts with a free tier for prototypes; paid plans are billed per active conversation minute. Our team can share a quote for your volume.",
	},
	{
		Question: "Do you offer a free trial?",
		Answer:   "Yes, every new workspace gets a 14 day trial with all features enabled.",
	},
	{
		Question: "Which integrations are supported?",
		Answer:   "Finalized records can be exported as JSON, written to Postgres, or pushed to a webhook so they land in your CRM.",
	},
	{
		Question: "How long does onboarding take?",
		Answer:   "Most teams launch their first assistant within a week; enterprise rollouts usually take two to four weeks.",
	},
}

// Base loads the knowledge base at most once per process.
type Base struct {
	path string

	once    sync.Once
	entries []Entry
	err     error
}

func NewBase(path string) *Base {
	return &Base{path: path}
}

func (b *Base) Path() string {
	return b.path
}

// Entries ensures the default file exists, then loads it. The result, including
// any error, is cached for the lifetime of the Base.
func (b *Base) Entries() ([]Entry, error) {
	b.once.Do(func() {
		if err := EnsureDefault(b.path); err != nil {
			b.err = err
			return
		}
		b.entries, b.err = Load(b.path)
		if b.err == nil {
			log.Info().Str("path", b.path).Int("entries", len(b.entries)).Msg("knowledge base loaded")
		}
	})
	return b.entries, b.err
}

// Search returns the entry sharing the most words with query.
func (b *Base) Search(query string) (Entry, bool) {
	entries, err := b.Entries()
	if err != nil {
		log.Warn().Err(err).Str("path", b.path).Msg("knowledge base unavailable")
		return Entry{}, false
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return Entry{}, false
	}

	best, bestScore := Entry{}, 0
	for _, e := range entries {
		score := 0
		words := tokenize(e.Question + " " + e.Answer)
		for term := range terms {
			if _, ok := words[term]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = e, score
		}
	}
	return best, bestScore > 0
}

// EnsureDefault writes Defaults to path when no file exists there.
func EnsureDefault(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat knowledge base: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create knowledge base directory: %w", err)
		}
	}
	raw, err := json.MarshalIndent(Defaults, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal default knowledge base: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write default knowledge base: %w", err)
	}
	log.Info().Str("path", path).Msg("default knowledge base written")
	return nil
}

func Load(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode knowledge base: %w", err)
	}
	return entries, nil
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "do": {}, "does": {}, "you": {}, "your": {},
	"we": {}, "our": {}, "to": {}, "of": {}, "and": {}, "or": {}, "it": {}, "what": {},
	"how": {}, "which": {}, "can": {}, "are": {}, "for": {}, "in": {}, "with": {},
}

func tokenize(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}
