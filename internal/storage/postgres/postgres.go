package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	usernameConstraint  = "users_username_key"
	emailConstraint     = "users_email_key"
	taskTitleConstraint = "unique_task_per_owner"
)

// Migrate creates the schema. The unique constraints on users and on
// (owner_id, title) are the authoritative guards behind the engine's
// pre-checks, so concurrent writers cannot slip past a read-then-write
// race.
func Migrate(ctx context.Context, pgPool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    username TEXT NOT NULL,
    email TEXT NOT NULL,
    password TEXT NOT NULL,
    is_staff BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    CONSTRAINT users_username_key UNIQUE (username),
    CONSTRAINT users_email_key UNIQUE (email)
);`,
		`CREATE TABLE IF NOT EXISTS tasks (
    id BIGSERIAL PRIMARY KEY,
    owner_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    title VARCHAR(300) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status BOOLEAN NOT NULL DEFAULT FALSE,
    due_date DATE NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    CONSTRAINT unique_task_per_owner UNIQUE (owner_id, title)
);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_owner ON tasks (owner_id);`,
	}

	for _, stmt := range stmts {
		_, err := pgPool.Exec(ctx, stmt)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
