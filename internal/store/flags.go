package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/flaggraph/internal/model"
)

// FindFlagByName returns the flag with the given name, or ErrNotFound.
func (t *Tx) FindFlagByName(ctx context.Context, name string) (model.Flag, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT id, name, enabled, created_at
		FROM flags
		WHERE name = ?
	`, name)

	flag, err := scanFlag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Flag{}, ErrNotFound
	}
	if err != nil {
		return model.Flag{}, fmt.Errorf("find flag %q: %w", name, err)
	}
	return flag, nil
}

// FindFlagsByNames returns the flags matching any of the given names, ordered
// by id. Names that match nothing are silently absent from the result; callers
// compare the result length against the number of distinct names requested.
func (t *Tx) FindFlagsByNames(ctx context.Context, names []string) ([]model.Flag, error) {
	if len(names) == 0 {
		return []model.Flag{}, nil
	}

	args := make([]any, len(names))
	for i, name := range names {
		args[i] = name
	}

	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, name, enabled, created_at
		FROM flags
		WHERE name IN (`+placeholders(len(names))+`)
		ORDER BY id ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("find flags by names: %w", err)
	}
	defer rows.Close()

	return collectFlags(rows)
}

// ListFlags returns every flag ordered by id.
func (t *Tx) ListFlags(ctx context.Context) ([]model.Flag, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, name, enabled, created_at
		FROM flags
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list flags: %w", err)
	}
	defer rows.Close()

	return collectFlags(rows)
}

// CreateFlag inserts a new disabled flag. Returns ErrDuplicateName if the
// name is already taken.
func (t *Tx) CreateFlag(ctx context.Context, name string, createdAt time.Time) (model.Flag, error) {
	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO flags (name, enabled, created_at)
		VALUES (?, 0, ?)
	`, name, createdAt.UnixNano())
	if err != nil {
		if isUniqueViolation(err) {
			return model.Flag{}, ErrDuplicateName
		}
		return model.Flag{}, fmt.Errorf("create flag %q: %w", name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Flag{}, fmt.Errorf("create flag %q: last insert id: %w", name, err)
	}

	return model.Flag{
		ID:        id,
		Name:      name,
		Enabled:   false,
		CreatedAt: time.Unix(0, createdAt.UnixNano()).UTC(),
	}, nil
}

// SetEnabled updates a flag's enabled state.
func (t *Tx) SetEnabled(ctx context.Context, flagID int64, enabled bool) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE flags SET enabled = ? WHERE id = ?
	`, enabled, flagID)
	if err != nil {
		return fmt.Errorf("set enabled on flag %d: %w", flagID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set enabled on flag %d: rows affected: %w", flagID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlag(row rowScanner) (model.Flag, error) {
	var flag model.Flag
	var createdAt int64
	if err := row.Scan(&flag.ID, &flag.Name, &flag.Enabled, &createdAt); err != nil {
		return model.Flag{}, err
	}
	flag.CreatedAt = time.Unix(0, createdAt).UTC()
	return flag, nil
}

func collectFlags(rows *sql.Rows) ([]model.Flag, error) {
	flags := []model.Flag{}
	for rows.Next() {
		flag, err := scanFlag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flag: %w", err)
		}
		flags = append(flags, flag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flags: %w", err)
	}
	return flags, nil
}
