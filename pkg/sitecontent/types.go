package sitecontent

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Language is one of the supported content languages.
type Language string

// Supported languages.
const (
	LanguageEN Language = "en"
	LanguageAZ Language = "az"
	LanguageRU Language = "ru"
)

// DefaultLanguage is used when a request names no language or an unknown one.
const DefaultLanguage = LanguageEN

// Languages lists every supported language in fallback priority order.
var Languages = []Language{LanguageEN, LanguageAZ, LanguageRU}

// IsValid reports whether l is a supported language.
func (l Language) IsValid() bool {
	switch l {
	case LanguageEN, LanguageAZ, LanguageRU:
		return true
	}
	return false
}

// ParseLanguage maps s to a supported language, falling back to DefaultLanguage.
func ParseLanguage(s string) Language {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	if !l.IsValid() {
		return DefaultLanguage
	}
	return l
}

// FieldFormat tags how a base field is stored.
type FieldFormat int

const (
	// FormatLegacy is a single value with no language information.
	FormatLegacy FieldFormat = iota
	// FormatMultilingual carries per-language values.
	FormatMultilingual
)

func (f FieldFormat) String() string {
	if f == FormatMultilingual {
		return "multilingual"
	}
	return "legacy"
}

// Field is one base text field of a record.
//
// Values is only meaningful for FormatMultilingual. A key that is present with
// an empty value is still "present" and keeps the field multilingual; an empty
// string is treated as a missing translation.
type Field struct {
	Format FieldFormat
	Legacy string
	Values map[Language]string
}

// LegacyField builds a field holding a single untranslated value.
func LegacyField(value string) Field {
	return Field{Format: FormatLegacy, Legacy: value}
}

// MultilingualField builds a field from per-language values.
func MultilingualField(values map[Language]string) Field {
	f := Field{Format: FormatMultilingual, Values: make(map[Language]string, len(Languages))}
	for lang, v := range values {
		if lang.IsValid() {
			f.Values[lang] = v
		}
	}
	return f
}

// Value returns the stored value for lang and whether the key is present.
func (f Field) Value(lang Language) (string, bool) {
	if f.Format != FormatMultilingual {
		return "", false
	}
	v, ok := f.Values[lang]
	return v, ok
}

// Set stores value for lang, switching the field to multilingual. A legacy
// value already on the field is kept alongside.
func (f *Field) Set(lang Language, value string) {
	if f.Values == nil {
		f.Values = make(map[Language]string, len(Languages))
	}
	f.Format = FormatMultilingual
	f.Values[lang] = value
}

// Clone returns a deep copy of f.
func (f Field) Clone() Field {
	out := Field{Format: f.Format, Legacy: f.Legacy}
	if f.Values != nil {
		out.Values = make(map[Language]string, len(f.Values))
		for k, v := range f.Values {
			out.Values[k] = v
		}
	}
	return out
}

// Record is a stored content entry of a given Kind.
type Record struct {
	ID         uuid.UUID
	Kind       Kind
	Fields     map[string]Field
	Attributes map[string]any
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone returns a deep copy of the record's maps so callers can mutate it freely.
func (r *Record) Clone() *Record {
	out := *r
	out.Fields = make(map[string]Field, len(r.Fields))
	for name, f := range r.Fields {
		out.Fields[name] = f.Clone()
	}
	out.Attributes = make(map[string]any, len(r.Attributes))
	for k, v := range r.Attributes {
		out.Attributes[k] = v
	}
	return &out
}

// Attribute returns a string attribute, or "" when absent or not a string.
func (r *Record) Attribute(name string) string {
	if s, ok := r.Attributes[name].(string); ok {
		return s
	}
	return ""
}

// Admin is an account allowed to manage content.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultAdminRole is assigned to newly registered admins.
const DefaultAdminRole = "admin"

// SortOrder selects the ordering of ListRecords results by creation time.
type SortOrder int

const (
	SortNewestFirst SortOrder = iota
	SortOldestFirst
)

// ListOptions narrows a ListRecords call.
type ListOptions struct {
	Sort SortOrder
}
