package sitecontent

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LanguageKey returns the flat key for a language variant, e.g. "title_az".
func LanguageKey(base string, lang Language) string {
	return base + "_" + string(lang)
}

// SplitLanguageKey splits "title_az" into ("title", "az"). ok is false for keys
// without a supported language suffix.
func SplitLanguageKey(key string) (base string, lang Language, ok bool) {
	i := strings.LastIndex(key, "_")
	if i <= 0 || i == len(key)-1 {
		return "", "", false
	}
	lang = Language(key[i+1:])
	if !lang.IsValid() {
		return "", "", false
	}
	return key[:i], lang, true
}

// EncodeFields flattens fields into the stored key/value form: the bare name
// for a legacy value and a suffixed key per present language.
func EncodeFields(fields map[string]Field) map[string]string {
	out := make(map[string]string, len(fields)*len(Languages))
	for name, f := range fields {
		if f.Format == FormatLegacy || f.Legacy != "" {
			out[name] = f.Legacy
		}
		if f.Format != FormatMultilingual {
			continue
		}
		for lang, v := range f.Values {
			out[LanguageKey(name, lang)] = v
		}
	}
	return out
}

// DecodeFields is the inverse of EncodeFields. Only names listed in known are
// treated as base fields when known is non-empty.
func DecodeFields(flat map[string]string, known ...string) map[string]Field {
	allowed := make(map[string]bool, len(known))
	for _, k := range known {
		allowed[k] = true
	}
	accept := func(name string) bool { return len(allowed) == 0 || allowed[name] }

	fields := make(map[string]Field)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if base, lang, ok := SplitLanguageKey(k); ok && accept(base) {
			f := fields[base]
			f.Set(lang, flat[k])
			fields[base] = f
			continue
		}
		if !accept(k) {
			continue
		}
		f := fields[k]
		f.Legacy = flat[k]
		fields[k] = f
	}
	return fields
}

func flatten(id uuid.UUID, kind Kind, attrs map[string]any, text map[string]string, createdBy string, createdAt, updatedAt time.Time) map[string]any {
	out := make(map[string]any, len(attrs)+len(text)+5)
	for k, v := range attrs {
		out[k] = v
	}
	for k, v := range text {
		out[k] = v
	}
	out["id"] = id
	out["kind"] = kind
	if createdBy != "" {
		out["created_by"] = createdBy
	}
	out["created_at"] = createdAt
	out["updated_at"] = updatedAt
	return out
}

// MarshalJSON renders the stored form of the record, with every language
// variant under its suffixed key.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(flatten(r.ID, r.Kind, r.Attributes, EncodeFields(r.Fields), r.CreatedBy, r.CreatedAt, r.UpdatedAt))
}

// Resolved is a record projected onto a single language.
type Resolved struct {
	ID         uuid.UUID
	Kind       Kind
	Language   Language
	Fields     map[string]string
	Attributes map[string]any
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MarshalJSON renders the projection with one bare key per text field.
func (r *Resolved) MarshalJSON() ([]byte, error) {
	return json.Marshal(flatten(r.ID, r.Kind, r.Attributes, r.Fields, r.CreatedBy, r.CreatedAt, r.UpdatedAt))
}

// Record turns the projection back into a record whose text fields are all
// legacy values.
func (r *Resolved) Record() *Record {
	rec := &Record{
		ID:         r.ID,
		Kind:       r.Kind,
		Fields:     make(map[string]Field, len(r.Fields)),
		Attributes: make(map[string]any, len(r.Attributes)),
		CreatedBy:  r.CreatedBy,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	for name, v := range r.Fields {
		rec.Fields[name] = LegacyField(v)
	}
	for k, v := range r.Attributes {
		rec.Attributes[k] = v
	}
	return rec
}
