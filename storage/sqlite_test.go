package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"authgate/core"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newRecord(username, token string) *core.UserRecord {
	now := time.Now()
	return &core.UserRecord{
		ID:        ulid.Make().String(),
		Username:  username,
		Token:     token,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSQLite_InsertAndFind(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newRecord("ada", "token-1")))

	exists, err := repo.ExistsByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.True(t, exists)

	record, err := repo.FindByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, "ada", record.Username)
	assert.Equal(t, "token-1", record.Token)
}

func TestSQLite_InsertDuplicateUsername(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newRecord("ada", "token-1")))

	err := repo.Insert(ctx, newRecord("ada", "token-2"))
	assert.ErrorIs(t, err, core.ErrAlreadyExists)
}

func TestSQLite_ExistsByUsername_Missing(t *testing.T) {
	repo := newTestSQLiteRepo(t)

	exists, err := repo.ExistsByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSQLite_UpdateTokenByUsername(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newRecord("ada", "token-1")))
	require.NoError(t, repo.UpdateTokenByUsername(ctx, "ada", "token-2"))

	record, err := repo.FindByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, "token-2", record.Token)
}

func TestSQLite_UpdateTokenByUsername_Missing(t *testing.T) {
	repo := newTestSQLiteRepo(t)

	err := repo.UpdateTokenByUsername(context.Background(), "nobody", "token")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLite_UpsertToken(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	first, err := repo.UpsertToken(ctx, "ada", "token-1")
	require.NoError(t, err)
	assert.Equal(t, "token-1", first.Token)
	assert.NotEmpty(t, first.ID)

	second, err := repo.UpsertToken(ctx, "ada", "token-2")
	require.NoError(t, err)

	// Same record, updated token
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "token-2", second.Token)

	record, err := repo.FindByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, "token-2", record.Token)
}

func TestSQLite_FindByUsername_Missing(t *testing.T) {
	repo := newTestSQLiteRepo(t)

	_, err := repo.FindByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
