package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/flaggraph/internal/model"
)

// createTestStore creates a new file-backed store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// mustCreateFlag creates a flag in its own transaction.
func mustCreateFlag(t *testing.T, s *Store, name string) model.Flag {
	t.Helper()
	var flag model.Flag
	err := s.Update(context.Background(), func(tx *Tx) error {
		var err error
		flag, err = tx.CreateFlag(context.Background(), name, testTime)
		return err
	})
	if err != nil {
		t.Fatalf("CreateFlag(%q) failed: %v", name, err)
	}
	return flag
}

// mustAddEdges adds edges from source to each target in one transaction.
func mustAddEdges(t *testing.T, s *Store, source model.Flag, targets ...model.Flag) {
	t.Helper()
	ids := make([]int64, len(targets))
	for i, target := range targets {
		ids[i] = target.ID
	}
	err := s.Update(context.Background(), func(tx *Tx) error {
		_, err := tx.AddEdges(context.Background(), source.ID, ids)
		return err
	})
	if err != nil {
		t.Fatalf("AddEdges(%q) failed: %v", source.Name, err)
	}
}

// createTestAudit builds a hashed audit record for a flag.
func createTestAudit(t *testing.T, flag model.Flag, action model.Action, seq int64, prev string) model.AuditRecord {
	t.Helper()
	rec := model.AuditRecord{
		FlagID:      flag.ID,
		FlagName:    flag.Name,
		Action:      action,
		Reason:      "test",
		Actor:       "tester",
		OperationID: "op-test",
		Seq:         seq,
		PrevHash:    prev,
		CreatedAt:   testTime,
	}
	hash, err := model.AuditHash(rec)
	if err != nil {
		t.Fatalf("AuditHash failed: %v", err)
	}
	rec.Hash = hash
	return rec
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}
