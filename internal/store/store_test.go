package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flaggraph/internal/model"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		s.Close()
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	for _, table := range []string{"flags", "dependencies", "audit_log"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		assert.NoError(t, err, "table %q not found after idempotent opens", table)
	}
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	flag := mustCreateFlag(t, s, "in-memory")
	assert.Positive(t, flag.ID)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	assert.NoError(t, s.Close())
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		pragma   string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
		{"user_version", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.pragma, func(t *testing.T) {
			assert.NoError(t, s.verifyPragma(tt.pragma, tt.expected))
		})
	}
}

func TestSchema_Columns(t *testing.T) {
	s := createTestStore(t)

	tests := map[string][]string{
		"flags":        {"id", "name", "enabled", "created_at"},
		"dependencies": {"id", "source_id", "target_id"},
		"audit_log": {
			"id", "flag_id", "action", "reason", "actor", "operation_id",
			"seq", "prev_hash", "hash", "created_at",
		},
	}

	for table, expected := range tests {
		t.Run(table, func(t *testing.T) {
			columns := getTableColumns(t, s.db, table)
			for _, col := range expected {
				assert.Contains(t, columns, col)
			}
		})
	}
}

func TestUpdate_RollsBackOnError(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sentinel := errors.New("abort")

	err := s.Update(ctx, func(tx *Tx) error {
		if _, err := tx.CreateFlag(ctx, "doomed", testTime); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	err = s.View(ctx, func(tx *Tx) error {
		_, err := tx.FindFlagByName(ctx, "doomed")
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound, "rolled back flag must not exist")
}

func TestUpdate_CancelledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Update(ctx, func(tx *Tx) error { return nil })
	assert.Error(t, err)
}

func TestDataSourceName(t *testing.T) {
	tests := map[string]string{
		"flags.db":               "flags.db?_txlock=immediate",
		":memory:":               ":memory:?_txlock=immediate",
		"file:flags.db?mode=rwc": "file:flags.db?mode=rwc&_txlock=immediate",
	}
	for path, want := range tests {
		assert.Equal(t, want, dataSourceName(path), path)
	}
}

func TestOpen_SharedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	ctx := context.Background()

	first, err := Open(path)
	require.NoError(t, err)
	defer first.Close()
	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	flag := mustCreateFlag(t, first, "checkout")
	require.NoError(t, second.Update(ctx, func(tx *Tx) error {
		_, err := tx.AppendAudit(ctx, createTestAudit(t, flag, model.ActionCreated, 1, ""))
		return err
	}))

	// A stale writer reusing a seq is rejected by the schema.
	err = first.Update(ctx, func(tx *Tx) error {
		_, err := tx.AppendAudit(ctx, createTestAudit(t, flag, model.ActionEnabled, 1, ""))
		return err
	})
	assert.Error(t, err)

	require.NoError(t, first.View(ctx, func(tx *Tx) error {
		maxSeq, err := tx.MaxAuditSeq(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), maxSeq)
		return nil
	}))
}
