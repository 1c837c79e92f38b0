package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"vaulter/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) (*store.KVStore, *store.FileIndexStore) {
	t.Helper()
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "vaulter.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.NewKVStore(db), store.NewFileIndexStore(db)
}

func TestSessionService_Email(t *testing.T) {
	ctx := context.Background()
	kv, _ := openStores(t)
	svc := NewSessionService(kv, nil)

	email, err := svc.RememberedEmail(ctx)
	require.NoError(t, err)
	assert.Empty(t, email)

	for _, bad := range []string{"", "plainaddress", "Ada <ada@example.com>", "@example.com"} {
		assert.True(t, errors.Is(svc.RememberEmail(ctx, bad), ErrInvalidEmail), bad)
	}

	require.NoError(t, svc.RememberEmail(ctx, " ada@example.com "))
	email, err = svc.RememberedEmail(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", email)

	require.NoError(t, svc.SetCurrentSpace(ctx, "did:key:z6Mkspace"))
	require.NoError(t, svc.ForgetEmail(ctx))

	email, err = svc.RememberedEmail(ctx)
	require.NoError(t, err)
	assert.Empty(t, email)
	space, err := svc.CurrentSpace(ctx)
	require.NoError(t, err)
	assert.Empty(t, space)
}

func TestSessionService_CurrentSpace(t *testing.T) {
	ctx := context.Background()
	kv, _ := openStores(t)
	svc := NewSessionService(kv, nil)

	assert.True(t, errors.Is(svc.SetCurrentSpace(ctx, "space-1"), ErrInvalidInput))
	assert.True(t, errors.Is(svc.SetCurrentSpace(ctx, "did:"), ErrInvalidInput))

	require.NoError(t, svc.SetCurrentSpace(ctx, "did:key:abc"))
	space, err := svc.CurrentSpace(ctx)
	require.NoError(t, err)
	assert.Equal(t, "did:key:abc", space)
}

func newTestIndexer(t *testing.T) *Indexer {
	_, files := openStores(t)
	ix := NewIndexer(files, nil)
	tick := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	ix.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return ix
}

func TestIndexer_IndexUpload(t *testing.T) {
	ctx := context.Background()
	ix := newTestIndexer(t)

	f, err := ix.IndexUpload(ctx, UploadInput{
		CID:         "bafyA",
		Name:        "Holiday.JPG",
		Description: "Beach Trip",
		Tags:        []string{" summer", "summer", "", "Family "},
		SpaceDID:    "did:key:space",
		Size:        2048,
	})
	require.NoError(t, err)
	assert.Equal(t, "holiday.jpg", f.NameLower)
	assert.Equal(t, []string{"summer", "Family"}, f.Tags)
	assert.Equal(t, "holiday.jpg beach trip summer family", f.SearchText)
	assert.Equal(t, f.CreatedAt, f.UpdatedAt)

	_, err = ix.IndexUpload(ctx, UploadInput{CID: "bafyA", Name: "again", SpaceDID: "did:key:space"})
	assert.True(t, errors.Is(err, store.ErrDuplicateFile))

	for _, in := range []UploadInput{
		{Name: "x", SpaceDID: "did:key:s"},
		{CID: "c", SpaceDID: "did:key:s"},
		{CID: "c", Name: "x"},
		{CID: "c", Name: "x", SpaceDID: "did:key:s", Size: -1},
	} {
		_, err := ix.IndexUpload(ctx, in)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	}
}

func TestIndexer_SearchAndList(t *testing.T) {
	ctx := context.Background()
	ix := newTestIndexer(t)

	inputs := []UploadInput{
		{CID: "c1", Name: "Invoice.pdf", Tags: []string{"finance"}, SpaceDID: "did:key:a"},
		{CID: "c2", Name: "cat.png", Description: "my CAT", SpaceDID: "did:key:a"},
		{CID: "c3", Name: "notes.txt", Tags: []string{"Finance"}, SpaceDID: "did:key:b"},
	}
	for _, in := range inputs {
		_, err := ix.IndexUpload(ctx, in)
		require.NoError(t, err)
	}

	hits, err := ix.Search(ctx, "  FINANCE ", "", 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "c3", hits[0].CID)

	hits, err = ix.Search(ctx, "finance", "did:key:a", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c1", hits[0].CID)

	// 空查询等同于列出空间
	hits, err = ix.Search(ctx, "", "did:key:a", 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "c2", hits[0].CID)

	// 空查询且不指定空间：列出全部空间
	hits, err = ix.Search(ctx, "", "", 0)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "c3", hits[0].CID)

	_, err = ix.List(ctx, "", 10)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	require.NoError(t, ix.Remove(ctx, "c2"))
	_, err = ix.Get(ctx, "c2")
	assert.True(t, errors.Is(err, store.ErrFileNotFound))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, clampLimit(0))
	assert.Equal(t, DefaultLimit, clampLimit(-5))
	assert.Equal(t, 10, clampLimit(10))
	assert.Equal(t, MaxLimit, clampLimit(10_000))
}
