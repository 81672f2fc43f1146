package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainAuditRecord is the hash domain for audit records.
// The version suffix leaves room for a future algorithm migration.
const DomainAuditRecord = "flaggraph/audit/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// AuditHash computes the content hash of an audit record.
//
// The hash covers every field except ID and Hash itself. PrevHash links the
// record to the previous record of the same flag, so altering any earlier
// record breaks every later hash.
func AuditHash(rec AuditRecord) (string, error) {
	obj := map[string]any{
		"flag_id":      rec.FlagID,
		"flag_name":    rec.FlagName,
		"action":       rec.Action.String(),
		"reason":       rec.Reason,
		"actor":        rec.Actor,
		"operation_id": rec.OperationID,
		"seq":          rec.Seq,
		"prev_hash":    rec.PrevHash,
		"created_at":   rec.CreatedAt.UnixNano(),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("AuditHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainAuditRecord, canonical), nil
}

// ChainError reports the first audit record whose hash linkage is broken.
type ChainError struct {
	Seq     int64
	Message string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("audit chain broken at seq %d: %s", e.Seq, e.Message)
}

// VerifyChain checks a single flag's records, oldest first.
func VerifyChain(records []AuditRecord) error {
	prev := ""
	for _, rec := range records {
		if rec.PrevHash != prev {
			return &ChainError{Seq: rec.Seq, Message: "prev_hash does not match previous record"}
		}
		want, err := AuditHash(rec)
		if err != nil {
			return err
		}
		if rec.Hash != want {
			return &ChainError{Seq: rec.Seq, Message: "hash does not match record contents"}
		}
		prev = rec.Hash
	}
	return nil
}
