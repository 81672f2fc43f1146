package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/flaggraph/internal/model"
)

// AppendAudit inserts an audit record and returns it with its row id set.
// The record must already carry Seq, PrevHash and Hash; the store does not
// compute them.
func (t *Tx) AppendAudit(ctx context.Context, rec model.AuditRecord) (model.AuditRecord, error) {
	if !rec.Action.Valid() {
		return model.AuditRecord{}, fmt.Errorf("append audit: invalid action %d", uint8(rec.Action))
	}

	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO audit_log
		(flag_id, action, reason, actor, operation_id, seq, prev_hash, hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.FlagID,
		rec.Action.String(),
		rec.Reason,
		rec.Actor,
		rec.OperationID,
		rec.Seq,
		rec.PrevHash,
		rec.Hash,
		rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return model.AuditRecord{}, fmt.Errorf("append audit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.AuditRecord{}, fmt.Errorf("append audit: last insert id: %w", err)
	}
	rec.ID = id
	return rec, nil
}

// History returns a flag's audit records, newest first.
func (t *Tx) History(ctx context.Context, flagID int64) ([]model.AuditRecord, error) {
	return t.queryAudit(ctx, `
		SELECT a.id, a.flag_id, f.name, a.action, a.reason, a.actor, a.operation_id,
		       a.seq, a.prev_hash, a.hash, a.created_at
		FROM audit_log a
		JOIN flags f ON f.id = a.flag_id
		WHERE a.flag_id = ?
		ORDER BY a.seq DESC
	`, flagID)
}

// OperationRecords returns every audit record written by one operation,
// oldest first.
func (t *Tx) OperationRecords(ctx context.Context, operationID string) ([]model.AuditRecord, error) {
	return t.queryAudit(ctx, `
		SELECT a.id, a.flag_id, f.name, a.action, a.reason, a.actor, a.operation_id,
		       a.seq, a.prev_hash, a.hash, a.created_at
		FROM audit_log a
		JOIN flags f ON f.id = a.flag_id
		WHERE a.operation_id = ?
		ORDER BY a.seq ASC
	`, operationID)
}

// LastAuditHash returns the hash of the flag's newest audit record, or ""
// if the flag has none.
func (t *Tx) LastAuditHash(ctx context.Context, flagID int64) (string, error) {
	var hash string
	err := t.tx.QueryRowContext(ctx, `
		SELECT hash FROM audit_log
		WHERE flag_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`, flagID).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last audit hash of %d: %w", flagID, err)
	}
	return hash, nil
}

// MaxAuditSeq returns the highest seq in the audit log, or 0 when empty.
func (t *Tx) MaxAuditSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := t.tx.QueryRowContext(ctx, `SELECT MAX(seq) FROM audit_log`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("max audit seq: %w", err)
	}
	return seq.Int64, nil
}

func (t *Tx) queryAudit(ctx context.Context, query string, args ...any) ([]model.AuditRecord, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	records := []model.AuditRecord{}
	for rows.Next() {
		var rec model.AuditRecord
		var action string
		var createdAt int64
		if err := rows.Scan(
			&rec.ID, &rec.FlagID, &rec.FlagName, &action, &rec.Reason, &rec.Actor,
			&rec.OperationID, &rec.Seq, &rec.PrevHash, &rec.Hash, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		if rec.Action, err = model.ParseAction(action); err != nil {
			return nil, fmt.Errorf("scan audit record %d: %w", rec.ID, err)
		}
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit log: %w", err)
	}
	return records, nil
}
