package core

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrFailedToSaveData = errors.New("failed to save data")
)

// UserRepository is the keyed record store behind the login pipeline. The
// orchestrator relies on UpsertToken alone; drivers implement it as a single
// atomic statement so that two concurrent first logins for the same username
// cannot both insert.
type UserRepository interface {
	// ExistsByUsername reports whether a record exists for username.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// UpdateTokenByUsername replaces the stored token for username.
	// Returns ErrNotFound when no record matches.
	UpdateTokenByUsername(ctx context.Context, username, token string) error

	// Insert stores a new record. Returns ErrAlreadyExists when the username
	// is already taken.
	Insert(ctx context.Context, record *UserRecord) error

	// UpsertToken inserts a record for username or, when one exists, replaces
	// its token. Last write wins on re-login.
	UpsertToken(ctx context.Context, username, token string) (*UserRecord, error)

	// FindByUsername returns the record for username or ErrNotFound.
	FindByUsername(ctx context.Context, username string) (*UserRecord, error)

	Close() error
}
