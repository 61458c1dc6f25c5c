package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"authgate/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

//go:embed schema/postgres/schema.sql
var postgresSchema string

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &PostgresRepository{pool: pool}

	if err := repo.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return repo, nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) initSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, postgresSchema)
	return err
}

func (r *PostgresRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *PostgresRepository) UpdateTokenByUsername(ctx context.Context, username, token string) error {
	query := `UPDATE users SET token = $1, updated_at = $2 WHERE username = $3`

	tag, err := r.pool.Exec(ctx, query, token, time.Now(), username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) Insert(ctx context.Context, record *core.UserRecord) error {
	query := `
		INSERT INTO users (id, username, token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.Username,
		record.Token,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return core.ErrAlreadyExists
		}
		return err
	}

	return nil
}

func (r *PostgresRepository) UpsertToken(ctx context.Context, username, token string) (*core.UserRecord, error) {
	query := `
		INSERT INTO users (id, username, token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username) DO UPDATE SET
			token = EXCLUDED.token,
			updated_at = EXCLUDED.updated_at
		RETURNING id, username, token, created_at, updated_at
	`

	now := time.Now()

	var record core.UserRecord
	err := r.pool.QueryRow(ctx, query,
		ulid.Make().String(),
		username,
		token,
		now,
		now,
	).Scan(
		&record.ID,
		&record.Username,
		&record.Token,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*core.UserRecord, error) {
	query := `
		SELECT id, username, token, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	var record core.UserRecord
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&record.ID,
		&record.Username,
		&record.Token,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &record, nil
}
