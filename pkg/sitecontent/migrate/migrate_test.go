package migrate_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/migrate"
	"github.com/tendant/site-content/pkg/sitecontent/repo/memory"
)

type mapTranslator struct {
	out     map[string]string
	sources []sitecontent.Language
}

// TranslateFields returns out[text+"/"+lang] for each target language
func (t *mapTranslator) TranslateFields(ctx context.Context, source sitecontent.Language, fields map[string]string) sitecontent.Translations {
	t.sources = append(t.sources, source)
	result := make(sitecontent.Translations)
	for name, text := range fields {
		result[name] = map[sitecontent.Language]string{}
		for _, lang := range sitecontent.Languages {
			if lang != source {
				result[name][lang] = t.out[text+"/"+string(lang)]
			}
		}
	}
	return result
}

func setupMigrateTest(t *testing.T, opts ...migrate.Option) (*migrate.Migrator, *memory.Repository) {
	t.Helper()
	repo := memory.New()
	m, err := migrate.New(repo, append([]migrate.Option{migrate.WithDelay(0)}, opts...)...)
	require.NoError(t, err)
	return m, repo
}

func seed(t *testing.T, repo *memory.Repository, kind sitecontent.Kind, fields map[string]sitecontent.Field) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	record := &sitecontent.Record{
		ID:         uuid.New(),
		Kind:       kind,
		Fields:     fields,
		Attributes: map[string]any{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, repo.CreateRecord(context.Background(), record))
	return record.ID
}

func ml(en, az, ru string) sitecontent.Field {
	return sitecontent.MultilingualField(map[sitecontent.Language]string{
		sitecontent.LanguageEN: en,
		sitecontent.LanguageAZ: az,
		sitecontent.LanguageRU: ru,
	})
}

func TestNew_RequiresRepository(t *testing.T) {
	_, err := migrate.New(nil)
	assert.Error(t, err)
}

func TestCopyMissingLanguages(t *testing.T) {
	m, repo := setupMigrateTest(t)
	ctx := context.Background()

	azOnly := seed(t, repo, sitecontent.KindFAQ, map[string]sitecontent.Field{
		"question": ml("", "Sual", ""),
		"answer":   ml("", "", "Ответ"),
	})
	legacy := seed(t, repo, sitecontent.KindFAQ, map[string]sitecontent.Field{
		"question": sitecontent.LegacyField("Question"),
	})
	complete := seed(t, repo, sitecontent.KindFAQ, map[string]sitecontent.Field{
		"question": ml("Q", "S", "В"),
	})

	reports, err := m.CopyMissingLanguages(ctx, sitecontent.KindFAQ)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 3, reports[0].Scanned)
	assert.Equal(t, 2, reports[0].Updated)
	assert.Equal(t, 1, reports[0].Skipped)

	got, err := repo.GetRecord(ctx, sitecontent.KindFAQ, azOnly)
	require.NoError(t, err)
	for _, lang := range sitecontent.Languages {
		q, _ := got.Fields["question"].Value(lang)
		a, _ := got.Fields["answer"].Value(lang)
		assert.Equal(t, "Sual", q, lang)
		assert.Equal(t, "Ответ", a, lang)
	}

	got, err = repo.GetRecord(ctx, sitecontent.KindFAQ, legacy)
	require.NoError(t, err)
	assert.Equal(t, sitecontent.FormatMultilingual, got.Fields["question"].Format)
	assert.Empty(t, got.Fields["question"].Legacy)
	ru, _ := got.Fields["question"].Value(sitecontent.LanguageRU)
	assert.Equal(t, "Question", ru)

	got, err = repo.GetRecord(ctx, sitecontent.KindFAQ, complete)
	require.NoError(t, err)
	az, _ := got.Fields["question"].Value(sitecontent.LanguageAZ)
	assert.Equal(t, "S", az)
}

func TestCopyMissingLanguages_AllKindsAndDryRun(t *testing.T) {
	m, repo := setupMigrateTest(t, migrate.WithDryRun(true))
	ctx := context.Background()

	id := seed(t, repo, sitecontent.KindNews, map[string]sitecontent.Field{"title": ml("Hello", "", "")})

	reports, err := m.CopyMissingLanguages(ctx)
	require.NoError(t, err)
	for _, r := range reports {
		assert.NotEqual(t, sitecontent.KindGallery, r.Kind)
		assert.NotEqual(t, sitecontent.KindAIModel, r.Kind)
	}

	got, err := repo.GetRecord(ctx, sitecontent.KindNews, id)
	require.NoError(t, err)
	az, _ := got.Fields["title"].Value(sitecontent.LanguageAZ)
	assert.Empty(t, az)

	_, err = m.CopyMissingLanguages(ctx, sitecontent.Kind("bogus"))
	assert.ErrorIs(t, err, sitecontent.ErrUnknownKind)
}

func TestDetectSource(t *testing.T) {
	tests := []struct {
		name  string
		field sitecontent.Field
		want  sitecontent.Language
		ok    bool
	}{
		{"only russian differs", ml("Hello", "hello", "Привет"), sitecontent.LanguageRU, true},
		{"only azerbaijani differs", ml("Same", "Fərqli", "same"), sitecontent.LanguageAZ, true},
		{"all equal falls back to first", ml("Same", "same", "SAME"), sitecontent.LanguageEN, true},
		{"english only", ml("Hello", "", ""), sitecontent.LanguageEN, true},
		{"legacy counts as english", sitecontent.LegacyField("Hello"), sitecontent.LanguageEN, true},
		{"empty", ml("", " ", ""), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := migrate.DetectSource(tt.field)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslateBackfill(t *testing.T) {
	translator := &mapTranslator{out: map[string]string{
		"Sahə/en":    "Area",
		"Sahə/ru":    "Область",
		"Mətn/en":    "Text",
		"Mətn/ru":    "mətn",
		"Skip me/az": "x",
	}}
	m, repo := setupMigrateTest(t, migrate.WithTranslator(translator))
	ctx := context.Background()

	copied := seed(t, repo, sitecontent.KindUsageArea, map[string]sitecontent.Field{
		"title":     ml("", "Sahə", ""),
		"paragraph": ml("", "Mətn", "Custom"),
	})
	finished := seed(t, repo, sitecontent.KindUsageArea, map[string]sitecontent.Field{
		"title": ml("Skip me", "Başqa", "Другое"),
	})
	empty := seed(t, repo, sitecontent.KindUsageArea, map[string]sitecontent.Field{
		"title": ml("", "", ""),
	})

	report, err := m.TranslateBackfill(ctx, sitecontent.KindUsageArea)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 1, report.Translated)
	assert.Equal(t, 2, report.Skipped)

	got, err := repo.GetRecord(ctx, sitecontent.KindUsageArea, copied)
	require.NoError(t, err)
	title := got.Fields["title"]
	en, _ := title.Value(sitecontent.LanguageEN)
	ru, _ := title.Value(sitecontent.LanguageRU)
	assert.Equal(t, "Area", en)
	assert.Equal(t, "Область", ru)

	paragraph := got.Fields["paragraph"]
	en, _ = paragraph.Value(sitecontent.LanguageEN)
	ru, _ = paragraph.Value(sitecontent.LanguageRU)
	assert.Equal(t, "Text", en)
	assert.Equal(t, "Custom", ru, "an identity translation must not overwrite existing text")

	got, err = repo.GetRecord(ctx, sitecontent.KindUsageArea, finished)
	require.NoError(t, err)
	az, _ := got.Fields["title"].Value(sitecontent.LanguageAZ)
	assert.Equal(t, "Başqa", az)

	_, err = repo.GetRecord(ctx, sitecontent.KindUsageArea, empty)
	require.NoError(t, err)

	assert.Equal(t, []sitecontent.Language{sitecontent.LanguageAZ}, translator.sources)
}

func TestTranslateBackfill_FallbackToSource(t *testing.T) {
	m, repo := setupMigrateTest(t, migrate.WithTranslator(&mapTranslator{}))
	ctx := context.Background()

	id := seed(t, repo, sitecontent.KindFAQ, map[string]sitecontent.Field{
		"question": ml("", "Sual", ""),
	})

	report, err := m.TranslateBackfill(ctx, sitecontent.KindFAQ)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 0, report.Translated)

	got, err := repo.GetRecord(ctx, sitecontent.KindFAQ, id)
	require.NoError(t, err)
	ru, _ := got.Fields["question"].Value(sitecontent.LanguageRU)
	assert.Equal(t, "Sual", ru)
}

func TestTranslateBackfill_Errors(t *testing.T) {
	m, _ := setupMigrateTest(t)
	_, err := m.TranslateBackfill(context.Background(), sitecontent.KindFAQ)
	assert.Error(t, err)

	m, _ = setupMigrateTest(t, migrate.WithTranslator(&mapTranslator{}))
	_, err = m.TranslateBackfill(context.Background(), sitecontent.KindGallery)
	assert.Error(t, err)

	_, err = m.TranslateBackfill(context.Background(), sitecontent.Kind("bogus"))
	assert.ErrorIs(t, err, sitecontent.ErrUnknownKind)
}
