package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/formbff/internal/domain/model"
	"github.com/ericfisherdev/formbff/internal/domain/port/driven"
)

var baseTime = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestRepo(t *testing.T) *RecordRepo {
	t.Helper()
	return NewRecordRepo(setupTestDB(t), WithClock(stepClock(baseTime, time.Second)))
}

func TestRecordRepo_Insert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec, err := repo.Insert(ctx, model.Record{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	assert.NotZero(t, rec.ID)
	assert.Equal(t, "Alice", rec.Name)
	assert.Equal(t, "alice@example.com", rec.Email)
	assert.True(t, rec.CreatedAt.Equal(baseTime))
	assert.True(t, rec.CreatedAt.Equal(rec.UpdatedAt), "created_at and updated_at should match on insert")

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.ID, got.ID)
	assert.True(t, got.CreatedAt.Equal(baseTime), "got %s", got.CreatedAt)
	assert.True(t, got.UpdatedAt.Equal(baseTime), "got %s", got.UpdatedAt)
}

func TestRecordRepo_Insert_DuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, model.Record{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = repo.Insert(ctx, model.Record{Name: "Alice Again", Email: "alice@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrDuplicateEmail)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRecordRepo_ListAll_MostRecentFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := repo.Insert(ctx, model.Record{Name: name, Email: name + "@example.com"})
		require.NoError(t, err)
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.Equal(t, "third", all[0].Name)
	assert.Equal(t, "second", all[1].Name)
	assert.Equal(t, "first", all[2].Name)
}

func TestRecordRepo_ListAll_SameInstantFallsBackToID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepo(db, WithClock(func() time.Time { return baseTime }))
	ctx := context.Background()

	a, err := repo.Insert(ctx, model.Record{Name: "a", Email: "a@example.com"})
	require.NoError(t, err)
	b, err := repo.Insert(ctx, model.Record{Name: "b", Email: "b@example.com"})
	require.NoError(t, err)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID)
	assert.Equal(t, a.ID, all[1].ID)
}

func TestRecordRepo_ListAll_Empty(t *testing.T) {
	repo := newTestRepo(t)

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestRecordRepo_GetByID_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetByID(context.Background(), 999999)
	require.NoError(t, err)
	assert.Nil(t, got, "non-existent record should return nil without error")
}

func TestRecordRepo_Save(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec, err := repo.Insert(ctx, model.Record{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	rec.Name = "Alice Liddell"
	rec.Email = "liddell@example.com"
	saved, err := repo.Save(ctx, rec)
	require.NoError(t, err)

	assert.Equal(t, rec.ID, saved.ID)
	assert.True(t, saved.UpdatedAt.After(saved.CreatedAt))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice Liddell", got.Name)
	assert.Equal(t, "liddell@example.com", got.Email)
	assert.True(t, got.CreatedAt.Equal(baseTime), "created_at must not change on update")
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestRecordRepo_Save_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Save(context.Background(), model.Record{ID: 42, Name: "ghost", Email: "ghost@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrRecordNotFound)
}

func TestRecordRepo_Save_DuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, model.Record{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	bob, err := repo.Insert(ctx, model.Record{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	bob.Email = "alice@example.com"
	_, err = repo.Save(ctx, bob)
	assert.ErrorIs(t, err, driven.ErrDuplicateEmail)
}

func TestRecordRepo_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec, err := repo.Insert(ctx, model.Record{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	removed, err := repo.Delete(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecordRepo_Delete_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	removed, err := repo.Delete(context.Background(), 999999)
	require.NoError(t, err)
	assert.False(t, removed, "deleting a missing record should report false, not an error")
}

func TestRecordRepo_IDsAreNotReused(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.Insert(ctx, model.Record{Name: "a", Email: "a@example.com"})
	require.NoError(t, err)
	_, err = repo.Delete(ctx, first.ID)
	require.NoError(t, err)

	second, err := repo.Insert(ctx, model.Record{Name: "b", Email: "b@example.com"})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestOpen_SQLiteFileAndMigrateTwice(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "formbff.db")

	db, err := Open(ctx, DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(db))
	require.NoError(t, RunMigrations(db), "re-running migrations should be a no-op")
	require.NoError(t, db.Ping(ctx))

	repo := NewRecordRepo(db)
	rec, err := repo.Insert(ctx, model.Record{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.CreatedAt.Equal(rec.CreatedAt), "want %s got %s", rec.CreatedAt, got.CreatedAt)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	db, err := Open(context.Background(), Driver("oracle"), "whatever")
	assert.Nil(t, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestParseTime(t *testing.T) {
	want := time.Date(2026, 3, 1, 9, 30, 0, 123456000, time.UTC)

	for _, s := range []string{
		"2026-03-01T09:30:00.123456Z",
		"2026-03-01 09:30:00.123456+00:00",
		"2026-03-01 09:30:00.123456 +0000 UTC",
		"2026-03-01 09:30:00.123456",
	} {
		got, err := parseTime(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), "%s parsed as %s", s, got)
	}

	_, err := parseTime("yesterday")
	assert.Error(t, err)
}
