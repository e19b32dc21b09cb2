package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-portal/internal/models"
)

const overrideSchema = `CREATE TABLE IF NOT EXISTS assignment_overrides (
    assignment_id TEXT PRIMARY KEY,
    deadline      TEXT NOT NULL DEFAULT '',
    teacher_name  TEXT NOT NULL DEFAULT '',
    updated_at    TIMESTAMPTZ NOT NULL
)`

// PostgresOverrideRepository keeps overrides in the assignment_overrides table.
type PostgresOverrideRepository struct {
	db *sqlx.DB
}

// NewPostgresOverrideRepository constructs the repository.
func NewPostgresOverrideRepository(db *sqlx.DB) *PostgresOverrideRepository {
	return &PostgresOverrideRepository{db: db}
}

// EnsureSchema creates the table when missing.
func (r *PostgresOverrideRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, overrideSchema); err != nil {
		return fmt.Errorf("create assignment_overrides: %w", err)
	}
	return nil
}

func (r *PostgresOverrideRepository) Get(ctx context.Context, assignmentID string) (*models.LocalOverride, error) {
	const query = `SELECT assignment_id, deadline, teacher_name, updated_at FROM assignment_overrides WHERE assignment_id = $1`
	var o models.LocalOverride
	if err := r.db.GetContext(ctx, &o, query, assignmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get override %s: %w", assignmentID, err)
	}
	return &o, nil
}

func (r *PostgresOverrideRepository) All(ctx context.Context) (map[string]models.LocalOverride, error) {
	const query = `SELECT assignment_id, deadline, teacher_name, updated_at FROM assignment_overrides`
	var rows []models.LocalOverride
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	out := make(map[string]models.LocalOverride, len(rows))
	for _, o := range rows {
		out[o.AssignmentID] = o
	}
	return out, nil
}

func (r *PostgresOverrideRepository) Put(ctx context.Context, o models.LocalOverride) error {
	const query = `INSERT INTO assignment_overrides (assignment_id, deadline, teacher_name, updated_at)
VALUES (:assignment_id, :deadline, :teacher_name, :updated_at)
ON CONFLICT (assignment_id)
DO UPDATE SET deadline = EXCLUDED.deadline, teacher_name = EXCLUDED.teacher_name, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, o); err != nil {
		return fmt.Errorf("upsert override %s: %w", o.AssignmentID, err)
	}
	return nil
}

func (r *PostgresOverrideRepository) Delete(ctx context.Context, assignmentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignment_overrides WHERE assignment_id = $1`, assignmentID); err != nil {
		return fmt.Errorf("delete override %s: %w", assignmentID, err)
	}
	return nil
}
