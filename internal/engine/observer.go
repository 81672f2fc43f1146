package engine

import "github.com/roach88/flaggraph/internal/model"

// Observer receives notifications about committed engine operations.
// Calls happen after the transaction commits. Implementations must be safe
// for concurrent use.
type Observer interface {
	// AuditRecorded is called once per committed audit record.
	AuditRecorded(action model.Action)

	// CascadeCompleted is called after every committed disable with the number
	// of dependents that were auto-disabled (possibly zero).
	CascadeCompleted(root string, disabled int)

	// OperationRejected is called when an operation fails with a FlagError.
	OperationRejected(code ErrorCode)
}

type nopObserver struct{}

func (nopObserver) AuditRecorded(model.Action)   {}
func (nopObserver) CascadeCompleted(string, int) {}
func (nopObserver) OperationRejected(ErrorCode)  {}
