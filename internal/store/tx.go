package store

import (
	"database/sql"
	"strings"
)

// Tx is a store transaction. All graph operations hang off Tx so callers
// decide the transaction boundary, not the individual operation.
type Tx struct {
	tx *sql.Tx
}

// placeholders returns "?, ?, ?" with n question marks.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
