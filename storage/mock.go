package storage

import (
	"context"
	"sync"
	"time"

	"authgate/core"

	"github.com/oklog/ulid/v2"
)

// MockRepository is an in-memory core.UserRepository for tests.
type MockRepository struct {
	mu      sync.RWMutex
	records map[string]*core.UserRecord // keyed by username

	writeErr error // when set, every write fails with this error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		records: make(map[string]*core.UserRecord),
	}
}

// FailWritesWith makes subsequent writes return err. Pass nil to heal.
func (r *MockRepository) FailWritesWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeErr = err
}

// Len reports the number of stored records.
func (r *MockRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *MockRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.records[username]
	return ok, nil
}

func (r *MockRepository) UpdateTokenByUsername(ctx context.Context, username, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.writeErr != nil {
		return r.writeErr
	}

	record, ok := r.records[username]
	if !ok {
		return core.ErrNotFound
	}

	record.Token = token
	record.UpdatedAt = time.Now()
	return nil
}

func (r *MockRepository) Insert(ctx context.Context, record *core.UserRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.writeErr != nil {
		return r.writeErr
	}

	if _, ok := r.records[record.Username]; ok {
		return core.ErrAlreadyExists
	}

	clone := *record
	r.records[record.Username] = &clone
	return nil
}

// UpsertToken performs the insert-or-update under a single lock hold, the
// in-memory analogue of the SQL drivers' single-statement upsert.
func (r *MockRepository) UpsertToken(ctx context.Context, username, token string) (*core.UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.writeErr != nil {
		return nil, r.writeErr
	}

	now := time.Now()

	record, ok := r.records[username]
	if ok {
		record.Token = token
		record.UpdatedAt = now
	} else {
		record = &core.UserRecord{
			ID:        ulid.Make().String(),
			Username:  username,
			Token:     token,
			CreatedAt: now,
			UpdatedAt: now,
		}
		r.records[username] = record
	}

	clone := *record
	return &clone, nil
}

func (r *MockRepository) FindByUsername(ctx context.Context, username string) (*core.UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[username]
	if !ok {
		return nil, core.ErrNotFound
	}

	clone := *record
	return &clone, nil
}

func (r *MockRepository) Close() error {
	return nil
}
