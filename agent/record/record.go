package record

import (
	"fmt"
	"slices"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Agent/agent/contract"
)

// Record is the partially filled value built during a conversation. It only holds
// values; enumeration checks belong to the caller (see Schema.Check).
type Record struct {
	schema  *Schema
	scalars map[string]string
	lists   map[string][]string
}

func (r *Record) Schema() *Schema {
	return r.schema
}

// Get returns the current value (string or []string) and whether it was ever set.
func (r *Record) Get(key string) (any, bool) {
	if v, ok := r.scalars[key]; ok {
		return v, true
	}
	if v, ok := r.lists[key]; ok {
		return slices.Clone(v), true
	}
	return nil, false
}

func (r *Record) String(key string) (string, bool) {
	v, ok := r.scalars[key]
	return v, ok
}

func (r *Record) List(key string) ([]string, bool) {
	v, ok := r.lists[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

func (r *Record) IsSet(key string) bool {
	if _, ok := r.scalars[key]; ok {
		return true
	}
	_, ok := r.lists[key]
	return ok
}

// Set overwrites the field. A nil list is stored as an explicitly empty list.
func (r *Record) Set(key string, value any) error {
	f, ok := r.schema.Field(key)
	if !ok {
		return fmt.Errorf("%w: unknown field %q for %s", contractx.ErrValidation, key, r.schema.Name)
	}

	switch f.Kind {
	case KindList:
		vs, ok := value.([]string)
		if !ok && value != nil {
			return fmt.Errorf("%w: %s must be a list of strings", contractx.ErrValidation, key)
		}
		if vs == nil {
			vs = []string{}
		}
		r.lists[key] = slices.Clone(vs)
	default:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s must be a string", contractx.ErrValidation, key)
		}
		r.scalars[key] = v
	}
	return nil
}

func (r *Record) IsComplete() bool {
	return len(r.Missing()) == 0
}

// Missing returns the keys of required fields never set, in schema order.
func (r *Record) Missing() []string {
	var missing []string
	for _, f := range r.schema.Required() {
		if !r.IsSet(f.Key) {
			missing = append(missing, f.Key)
		}
	}
	return missing
}

func (r *Record) MissingLabels() []string {
	keys := r.Missing()
	labels := make([]string, 0, len(keys))
	for _, k := range keys {
		f, _ := r.schema.Field(k)
		labels = append(labels, f.Label)
	}
	return labels
}

// Document maps every declared field: nil for unset scalars, an empty list for
// an unset list.
func (r *Record) Document() map[string]any {
	doc := make(map[string]any, len(r.schema.Fields))
	for _, f := range r.schema.Fields {
		if f.Kind == KindList {
			vs, ok := r.List(f.Key)
			if !ok {
				vs = []string{}
			}
			doc[f.Key] = vs
			continue
		}
		if v, ok := r.scalars[f.Key]; ok {
			doc[f.Key] = v
		} else {
			doc[f.Key] = nil
		}
	}
	return doc
}

func (r *Record) Summary() string {
	if r.schema.Summarize == nil {
		return fmt.Sprintf("%v", r.Document())
	}
	return r.schema.Summarize(r)
}

// Encode builds the persisted document for this record.
func (r *Record) Encode(stamp Stamp) any {
	if r.schema.Encode == nil {
		doc := r.Document()
		doc["timestamp"] = stamp.Timestamp()
		doc["session_id"] = stamp.SessionID
		return doc
	}
	return r.schema.Encode(r, stamp)
}

func (r *Record) optional(key string) *string {
	v, ok := r.scalars[key]
	if !ok {
		return nil
	}
	return &v
}
