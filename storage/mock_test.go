package storage

import (
	"context"
	"errors"
	"testing"

	"authgate/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock_UpsertToken(t *testing.T) {
	repo := NewMockRepository()
	ctx := context.Background()

	first, err := repo.UpsertToken(ctx, "ada", "token-1")
	require.NoError(t, err)

	second, err := repo.UpsertToken(ctx, "ada", "token-2")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "token-2", second.Token)
	assert.Equal(t, 1, repo.Len())
}

func TestMock_InsertDuplicate(t *testing.T) {
	repo := NewMockRepository()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newRecord("ada", "token-1")))

	err := repo.Insert(ctx, newRecord("ada", "token-2"))
	assert.ErrorIs(t, err, core.ErrAlreadyExists)
}

func TestMock_FailWritesWith(t *testing.T) {
	repo := NewMockRepository()
	boom := errors.New("boom")
	repo.FailWritesWith(boom)

	_, err := repo.UpsertToken(context.Background(), "ada", "token")
	assert.ErrorIs(t, err, boom)

	repo.FailWritesWith(nil)
	_, err = repo.UpsertToken(context.Background(), "ada", "token")
	assert.NoError(t, err)
}

func TestMock_ReturnsCopies(t *testing.T) {
	repo := NewMockRepository()
	ctx := context.Background()

	_, err := repo.UpsertToken(ctx, "ada", "token-1")
	require.NoError(t, err)

	record, err := repo.FindByUsername(ctx, "ada")
	require.NoError(t, err)
	record.Token = "tampered"

	fresh, err := repo.FindByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, "token-1", fresh.Token)
}
