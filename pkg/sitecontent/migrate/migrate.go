// Package migrate holds maintenance jobs that rewrite stored records: filling
// empty language slots and backfilling machine translations.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/translate"
)

// DefaultDelay spaces out records during a translation backfill
const DefaultDelay = 500 * time.Millisecond

// Report summarizes one job over one kind
type Report struct {
	Kind       sitecontent.Kind
	Scanned    int
	Updated    int
	Translated int
	Skipped    int
	Failed     int
}

// Migrator runs maintenance jobs against a repository
type Migrator struct {
	repo       sitecontent.Repository
	translator sitecontent.Translator
	delay      time.Duration
	now        func() time.Time
	dryRun     bool
}

// Option configures a Migrator
type Option func(*Migrator)

// WithTranslator sets the translator used by TranslateBackfill
func WithTranslator(t sitecontent.Translator) Option {
	return func(m *Migrator) {
		m.translator = t
	}
}

// WithDelay overrides DefaultDelay
func WithDelay(d time.Duration) Option {
	return func(m *Migrator) {
		m.delay = d
	}
}

// WithDryRun reports changes without saving them
func WithDryRun(dryRun bool) Option {
	return func(m *Migrator) {
		m.dryRun = dryRun
	}
}

// WithClock overrides the time source for UpdatedAt
func WithClock(now func() time.Time) Option {
	return func(m *Migrator) {
		m.now = now
	}
}

// New creates a Migrator
func New(repo sitecontent.Repository, opts ...Option) (*Migrator, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	m := &Migrator{repo: repo, delay: DefaultDelay, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// textKinds returns kinds, or every kind with translatable fields when empty
func textKinds(kinds []sitecontent.Kind) ([]sitecontent.Schema, error) {
	var out []sitecontent.Schema
	if len(kinds) == 0 {
		for _, s := range sitecontent.Schemas() {
			if len(s.TextFields) > 0 {
				out = append(out, s)
			}
		}
		return out, nil
	}
	for _, k := range kinds {
		s, ok := sitecontent.SchemaFor(k)
		if !ok {
			return nil, fmt.Errorf("%w: %s", sitecontent.ErrUnknownKind, k)
		}
		out = append(out, s)
	}
	return out, nil
}

// CopyMissingLanguages copies the first available value (en, az, ru; a legacy
// value counts as en) into every empty language slot of each text field.
func (m *Migrator) CopyMissingLanguages(ctx context.Context, kinds ...sitecontent.Kind) ([]Report, error) {
	schemas, err := textKinds(kinds)
	if err != nil {
		return nil, err
	}

	reports := make([]Report, 0, len(schemas))
	for _, schema := range schemas {
		report := Report{Kind: schema.Kind}

		records, err := m.repo.ListRecords(ctx, schema.Kind, sitecontent.ListOptions{Sort: sitecontent.SortOldestFirst})
		if err != nil {
			return reports, fmt.Errorf("list %s: %w", schema.Kind, err)
		}

		for _, record := range records {
			report.Scanned++
			changed := false
			for _, tf := range schema.TextFields {
				field, ok := record.Fields[tf.Name]
				if !ok {
					continue
				}
				if fillEmptySlots(&field) {
					record.Fields[tf.Name] = field
					changed = true
				}
			}
			if !changed {
				report.Skipped++
				continue
			}
			if err := m.save(ctx, record); err != nil {
				slog.Error("Failed to save record", "kind", schema.Kind, "id", record.ID, "error", err)
				report.Failed++
				continue
			}
			report.Updated++
			slog.Info("Copied missing languages", "kind", schema.Kind, "id", record.ID)
		}

		slog.Info("Language migration complete", "kind", schema.Kind, "updated", report.Updated, "total", report.Scanned)
		reports = append(reports, report)
	}
	return reports, nil
}

// fillEmptySlots copies the first available value into the empty languages
// of f. A legacy value is moved into en.
func fillEmptySlots(f *sitecontent.Field) bool {
	_, source := sitecontent.FirstAvailable(*f)
	if source == "" {
		return false
	}

	changed := false
	if f.Legacy != "" {
		if en, _ := f.Value(sitecontent.LanguageEN); en == "" {
			f.Set(sitecontent.LanguageEN, f.Legacy)
		}
		f.Legacy = ""
		changed = true
	}
	for _, lang := range sitecontent.Languages {
		if v, _ := f.Value(lang); v == "" {
			f.Set(lang, source)
			changed = true
		}
	}
	return changed
}

// TranslateBackfill detects each record's source language and fills the
// other languages with machine translations. A slot is only overwritten by
// a translation that differs from the source; when none comes back an empty
// or copied slot receives the source text.
func (m *Migrator) TranslateBackfill(ctx context.Context, kind sitecontent.Kind) (Report, error) {
	report := Report{Kind: kind}
	if m.translator == nil {
		return report, errors.New("translator is required")
	}

	schema, ok := sitecontent.SchemaFor(kind)
	if !ok {
		return report, fmt.Errorf("%w: %s", sitecontent.ErrUnknownKind, kind)
	}
	if len(schema.TextFields) == 0 {
		return report, fmt.Errorf("%s has no translatable fields", kind)
	}

	records, err := m.repo.ListRecords(ctx, kind, sitecontent.ListOptions{Sort: sitecontent.SortOldestFirst})
	if err != nil {
		return report, fmt.Errorf("list %s: %w", kind, err)
	}

	for i, record := range records {
		report.Scanned++
		if i > 0 && m.delay > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(m.delay):
			}
		}

		translated, changed := m.backfillRecord(ctx, schema, record)
		if !changed {
			report.Skipped++
			continue
		}
		if err := m.save(ctx, record); err != nil {
			slog.Error("Failed to save record", "kind", kind, "id", record.ID, "error", err)
			report.Failed++
			continue
		}
		report.Updated++
		if translated {
			report.Translated++
		} else {
			slog.Warn("Saved with source text fallback", "kind", kind, "id", record.ID)
		}
	}

	slog.Info("Translation backfill complete", "kind", kind, "translated", report.Translated, "skipped", report.Skipped, "total", report.Scanned)
	return report, nil
}

func (m *Migrator) backfillRecord(ctx context.Context, schema sitecontent.Schema, record *sitecontent.Record) (translated, changed bool) {
	primary := record.Fields[schema.TextFields[0].Name]
	source, ok := DetectSource(primary)
	if !ok {
		slog.Debug("Skipping record with no content", "kind", schema.Kind, "id", record.ID)
		return false, false
	}

	sourceTitle := valueIn(primary, source)
	if strings.TrimSpace(sourceTitle) == "" {
		return false, false
	}
	if !needsTranslation(primary, source, sourceTitle) {
		slog.Debug("Already translated", "kind", schema.Kind, "id", record.ID)
		return false, false
	}

	pending := make(map[string]string, len(schema.TextFields))
	for _, tf := range schema.TextFields {
		if v := valueIn(record.Fields[tf.Name], source); strings.TrimSpace(v) != "" {
			pending[tf.Name] = v
		}
	}

	result := m.translator.TranslateFields(ctx, source, pending)

	for name, text := range pending {
		field := record.Fields[name]
		if field.Legacy != "" {
			if en, _ := field.Value(sitecontent.LanguageEN); en == "" {
				field.Set(sitecontent.LanguageEN, field.Legacy)
			}
			field.Legacy = ""
			changed = true
		}
		for _, lang := range sitecontent.Languages {
			if lang == source {
				continue
			}
			if t := result[name][lang]; strings.TrimSpace(t) != "" && !translate.SameText(t, text) {
				field.Set(lang, t)
				translated, changed = true, true
				continue
			}
			if current, _ := field.Value(lang); current == "" {
				field.Set(lang, text)
				changed = true
			}
		}
		record.Fields[name] = field
	}
	return translated, changed
}

// DetectSource picks the language a field was authored in: the first whose
// value differs from both others, else the first non-empty one. A legacy
// value counts as en.
func DetectSource(f sitecontent.Field) (sitecontent.Language, bool) {
	for _, lang := range sitecontent.Languages {
		v := valueIn(f, lang)
		if strings.TrimSpace(v) == "" {
			continue
		}
		unique := true
		for _, other := range sitecontent.Languages {
			if other != lang && translate.SameText(v, valueIn(f, other)) {
				unique = false
				break
			}
		}
		if unique {
			return lang, true
		}
	}
	lang, v := sitecontent.FirstAvailable(f)
	if strings.TrimSpace(v) == "" {
		return "", false
	}
	return lang, true
}

func needsTranslation(f sitecontent.Field, source sitecontent.Language, text string) bool {
	for _, lang := range sitecontent.Languages {
		if lang == source {
			continue
		}
		v := valueIn(f, lang)
		if strings.TrimSpace(v) == "" || translate.SameText(v, text) {
			return true
		}
	}
	return false
}

func valueIn(f sitecontent.Field, lang sitecontent.Language) string {
	if v, _ := f.Value(lang); v != "" {
		return v
	}
	if lang == sitecontent.LanguageEN {
		return f.Legacy
	}
	return ""
}

func (m *Migrator) save(ctx context.Context, record *sitecontent.Record) error {
	if m.dryRun {
		return nil
	}
	record.UpdatedAt = m.now().UTC()
	return m.repo.UpdateRecord(ctx, record)
}
