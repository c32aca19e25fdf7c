package record

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type FieldKind int

const (
	KindEnum FieldKind = iota // one value from Options
	KindText                  // any non-empty string
	KindList                  // zero or more values from Options
)

func (k FieldKind) String() string {
	switch k {
	case KindEnum:
		return "enum"
	case KindText:
		return "text"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type Field struct {
	Key      string
	Label    string // used when listing missing fields to the customer
	Kind     FieldKind
	Options  []string
	Required bool
	Desc     string
}

func (f Field) Allows(v string) bool {
	return slices.Contains(f.Options, v)
}

// Stamp carries the metadata merged into a persisted document.
type Stamp struct {
	Time      time.Time
	SessionID string
}

// TimestampLayout is the ISO-8601 layout used for persisted documents.
const TimestampLayout = time.RFC3339Nano

func (s Stamp) Timestamp() string {
	return s.Time.Format(TimestampLayout)
}

// Schema describes one kind of record: its fields, how it is rendered and how it
// is mapped to a persisted document.
type Schema struct {
	Name   string
	Noun   string
	Fields []Field

	Encode    func(r *Record, stamp Stamp) any
	Summarize func(r *Record) string
}

func (s *Schema) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

func (s *Schema) Required() []Field {
	out := make([]Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

func (s *Schema) New() *Record {
	return &Record{
		schema:  s,
		scalars: make(map[string]string, len(s.Fields)),
		lists:   make(map[string][]string, 1),
	}
}

// Check reports whether value is acceptable for the field: enumeration membership
// for enum and list fields, non-empty for free text.
func (s *Schema) Check(key string, value any) error {
	f, ok := s.Field(key)
	if !ok {
		return fmt.Errorf("%w: unknown field %q for %s", contractx.ErrValidation, key, s.Name)
	}

	switch f.Kind {
	case KindEnum, KindText:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s must be a string", contractx.ErrValidation, key)
		}
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s is empty", contractx.ErrValidation, key)
		}
		if f.Kind == KindEnum && !f.Allows(v) {
			return fmt.Errorf("%w: %s=%q is not one of [%s]", contractx.ErrValidation, key, v, strings.Join(f.Options, ", "))
		}
	case KindList:
		vs, ok := value.([]string)
		if !ok {
			return fmt.Errorf("%w: %s must be a list of strings", contractx.ErrValidation, key)
		}
		for _, v := range vs {
			if !f.Allows(v) {
				return fmt.Errorf("%w: %s item %q is not one of [%s]", contractx.ErrValidation, key, v, strings.Join(f.Options, ", "))
			}
		}
	}
	return nil
}

// TitleCase upper-cases every letter that follows a non-letter and lower-cases
// the rest, so "o'brien" becomes "O'Brien".
func TitleCase(s string) string {
	runes := []rune(cases.Lower(language.English).String(s))
	prevLetter := false
	for i, r := range runes {
		if !prevLetter {
			runes[i] = unicode.ToTitle(r)
		}
		prevLetter = unicode.IsLetter(r)
	}
	return string(runes)
}
