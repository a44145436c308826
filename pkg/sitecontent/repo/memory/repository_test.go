package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/repo/memory"
)

func newRecord(kind sitecontent.Kind, createdAt time.Time, title string) *sitecontent.Record {
	return &sitecontent.Record{
		ID:   uuid.New(),
		Kind: kind,
		Fields: map[string]sitecontent.Field{
			"title": sitecontent.MultilingualField(map[sitecontent.Language]string{sitecontent.LanguageEN: title}),
		},
		Attributes: map[string]any{"image": "a.png"},
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestRepository_RecordCRUD(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	rec := newRecord(sitecontent.KindNews, time.Now(), "Launch")
	require.NoError(t, repo.CreateRecord(ctx, rec))

	got, err := repo.GetRecord(ctx, sitecontent.KindNews, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	// Stored copies are isolated from callers
	got.Attributes["image"] = "changed.png"
	again, err := repo.GetRecord(ctx, sitecontent.KindNews, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.png", again.Attributes["image"])

	got.Fields["title"] = sitecontent.LegacyField("Updated")
	require.NoError(t, repo.UpdateRecord(ctx, got))
	updated, err := repo.GetRecord(ctx, sitecontent.KindNews, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Fields["title"].Legacy)

	require.NoError(t, repo.DeleteRecord(ctx, sitecontent.KindNews, rec.ID))
	_, err = repo.GetRecord(ctx, sitecontent.KindNews, rec.ID)
	assert.ErrorIs(t, err, sitecontent.ErrRecordNotFound)
}

func TestRepository_KindIsolation(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	rec := newRecord(sitecontent.KindFAQ, time.Now(), "Q")
	require.NoError(t, repo.CreateRecord(ctx, rec))

	_, err := repo.GetRecord(ctx, sitecontent.KindNews, rec.ID)
	assert.ErrorIs(t, err, sitecontent.ErrRecordNotFound)
	assert.ErrorIs(t, repo.DeleteRecord(ctx, sitecontent.KindNews, rec.ID), sitecontent.ErrRecordNotFound)

	wrongKind := rec.Clone()
	wrongKind.Kind = sitecontent.KindNews
	assert.ErrorIs(t, repo.UpdateRecord(ctx, wrongKind), sitecontent.ErrRecordNotFound)
}

func TestRepository_ListRecordsSorted(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	older := newRecord(sitecontent.KindSlider, base, "older")
	newer := newRecord(sitecontent.KindSlider, base.Add(time.Hour), "newer")
	other := newRecord(sitecontent.KindTeam, base, "other")
	for _, r := range []*sitecontent.Record{older, newer, other} {
		require.NoError(t, repo.CreateRecord(ctx, r))
	}

	list, err := repo.ListRecords(ctx, sitecontent.KindSlider, sitecontent.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	list, err = repo.ListRecords(ctx, sitecontent.KindSlider, sitecontent.ListOptions{Sort: sitecontent.SortOldestFirst})
	require.NoError(t, err)
	assert.Equal(t, older.ID, list[0].ID)

	empty, err := repo.ListRecords(ctx, sitecontent.KindGallery, sitecontent.ListOptions{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRepository_Admins(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	admin := &sitecontent.Admin{ID: uuid.New(), Username: "editor", Email: "Editor@example.com", PasswordHash: "hash", Role: "admin"}
	require.NoError(t, repo.CreateAdmin(ctx, admin))

	got, err := repo.GetAdminByEmail(ctx, "editor@example.com")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)

	byID, err := repo.GetAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", byID.PasswordHash)

	exists, err := repo.AdminExists(ctx, "other@example.com", "editor")
	require.NoError(t, err)
	assert.True(t, exists)

	dup := &sitecontent.Admin{ID: uuid.New(), Username: "someone", Email: "editor@example.com"}
	assert.ErrorIs(t, repo.CreateAdmin(ctx, dup), sitecontent.ErrDuplicateAdmin)

	_, err = repo.GetAdmin(ctx, uuid.New())
	assert.ErrorIs(t, err, sitecontent.ErrAdminNotFound)
}
