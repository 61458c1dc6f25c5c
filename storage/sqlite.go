package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"authgate/core"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

//go:embed schema/sqlite/schema.sql
var sqliteSchema string

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &SQLiteRepository{db: db}

	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) initSchema() error {
	_, err := r.db.Exec(sqliteSchema)
	return err
}

func (r *SQLiteRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *SQLiteRepository) UpdateTokenByUsername(ctx context.Context, username, token string) error {
	query := `UPDATE users SET token = ?, updated_at = ? WHERE username = ?`

	result, err := r.db.ExecContext(ctx, query, token, time.Now().Unix(), username)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return core.ErrNotFound
	}

	return nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, record *core.UserRecord) error {
	query := `
		INSERT INTO users (id, username, token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.Username,
		record.Token,
		record.CreatedAt.Unix(),
		record.UpdatedAt.Unix(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return core.ErrAlreadyExists
		}
		return err
	}

	return nil
}

// UpsertToken is a single statement, so two concurrent first logins for the
// same username cannot both insert: one inserts, the other updates.
func (r *SQLiteRepository) UpsertToken(ctx context.Context, username, token string) (*core.UserRecord, error) {
	query := `
		INSERT INTO users (id, username, token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			token = excluded.token,
			updated_at = excluded.updated_at
	`

	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		ulid.Make().String(),
		username,
		token,
		now.Unix(),
		now.Unix(),
	)
	if err != nil {
		return nil, err
	}

	return r.FindByUsername(ctx, username)
}

func (r *SQLiteRepository) FindByUsername(ctx context.Context, username string) (*core.UserRecord, error) {
	query := `
		SELECT id, username, token, created_at, updated_at
		FROM users
		WHERE username = ?
	`

	var record core.UserRecord
	var createdAt, updatedAt int64

	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&record.ID,
		&record.Username,
		&record.Token,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	record.CreatedAt = time.Unix(createdAt, 0)
	record.UpdatedAt = time.Unix(updatedAt, 0)

	return &record, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "unique")
}
