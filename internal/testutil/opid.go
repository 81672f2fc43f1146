package testutil

// ConstantOperationID returns the same operation id every time.
//
// Unlike engine.FixedGenerator, which returns ids in sequence, every
// operation gets the same id. Useful when a test only cares that records
// carry some operation id.
//
// Thread-safety: ConstantOperationID is stateless and safe for concurrent use.
type ConstantOperationID struct {
	id string
}

// NewConstantOperationID creates a generator that always returns id.
func NewConstantOperationID(id string) ConstantOperationID {
	return ConstantOperationID{id: id}
}

// Generate returns the constant id.
func (g ConstantOperationID) Generate() string {
	return g.id
}
