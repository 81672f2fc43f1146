package model

import "time"

// Flag is a named boolean node in the dependency graph.
type Flag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// Edge is a dependency edge: Source cannot be enabled unless Target is enabled.
type Edge struct {
	ID       int64 `json:"id"`
	SourceID int64 `json:"source_id"`
	TargetID int64 `json:"target_id"`
}

// Status is the read-only view returned by status lookups.
type Status struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// AuditRecord is one immutable entry in a flag's history.
type AuditRecord struct {
	ID          int64     `json:"id"`
	FlagID      int64     `json:"flag_id"`
	FlagName    string    `json:"flag_name"`
	Action      Action    `json:"action"`
	Reason      string    `json:"reason"`
	Actor       string    `json:"actor"`
	OperationID string    `json:"operation_id"` // Shared by every record of one create/toggle call
	Seq         int64     `json:"seq"`          // Logical clock, strictly increasing across all flags
	PrevHash    string    `json:"prev_hash"`    // Hash of the flag's previous record, "" for the first
	Hash        string    `json:"hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// FlagView is a flag together with the names of its direct dependencies.
type FlagView struct {
	Flag
	DependsOn []string `json:"depends_on"`
}
