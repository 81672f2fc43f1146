package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flaggraph/internal/model"
)

func TestAppendAudit_HistoryNewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	flag := mustCreateFlag(t, s, "checkout")

	first := createTestAudit(t, flag, model.ActionCreated, 1, "")
	second := createTestAudit(t, flag, model.ActionEnabled, 2, first.Hash)

	require.NoError(t, s.Update(ctx, func(tx *Tx) error {
		stored, err := tx.AppendAudit(ctx, first)
		require.NoError(t, err)
		assert.Positive(t, stored.ID)

		_, err = tx.AppendAudit(ctx, second)
		return err
	}))

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		history, err := tx.History(ctx, flag.ID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, model.ActionEnabled, history[0].Action)
		assert.Equal(t, model.ActionCreated, history[1].Action)
		assert.Equal(t, "checkout", history[0].FlagName)
		assert.True(t, history[0].CreatedAt.Equal(testTime))

		last, err := tx.LastAuditHash(ctx, flag.ID)
		require.NoError(t, err)
		assert.Equal(t, second.Hash, last)

		maxSeq, err := tx.MaxAuditSeq(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), maxSeq)

		ops, err := tx.OperationRecords(ctx, "op-test")
		require.NoError(t, err)
		require.Len(t, ops, 2)
		assert.Equal(t, int64(1), ops[0].Seq, "operation records oldest first")
		return nil
	}))
}

func TestAppendAudit_EmptyLog(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	flag := mustCreateFlag(t, s, "checkout")

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		history, err := tx.History(ctx, flag.ID)
		require.NoError(t, err)
		assert.NotNil(t, history)
		assert.Empty(t, history)

		last, err := tx.LastAuditHash(ctx, flag.ID)
		require.NoError(t, err)
		assert.Empty(t, last)

		maxSeq, err := tx.MaxAuditSeq(ctx)
		require.NoError(t, err)
		assert.Zero(t, maxSeq)
		return nil
	}))
}

func TestAppendAudit_InvalidAction(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	flag := mustCreateFlag(t, s, "checkout")

	rec := createTestAudit(t, flag, model.ActionCreated, 1, "")
	rec.Action = 0

	err := s.Update(ctx, func(tx *Tx) error {
		_, err := tx.AppendAudit(ctx, rec)
		return err
	})
	assert.Error(t, err)
}

func TestAuditLog_AppendOnly(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	flag := mustCreateFlag(t, s, "checkout")

	require.NoError(t, s.Update(ctx, func(tx *Tx) error {
		_, err := tx.AppendAudit(ctx, createTestAudit(t, flag, model.ActionCreated, 1, ""))
		return err
	}))

	_, err := s.db.Exec(`UPDATE audit_log SET actor = 'mallory'`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append-only")

	_, err = s.db.Exec(`DELETE FROM audit_log`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append-only")
}

func TestAppendAudit_SeqUnique(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	flag := mustCreateFlag(t, s, "checkout")

	err := s.Update(ctx, func(tx *Tx) error {
		if _, err := tx.AppendAudit(ctx, createTestAudit(t, flag, model.ActionCreated, 1, "")); err != nil {
			return err
		}
		_, err := tx.AppendAudit(ctx, createTestAudit(t, flag, model.ActionEnabled, 1, ""))
		return err
	})
	assert.Error(t, err)
}
