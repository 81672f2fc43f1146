package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}

	first := gen.Generate()
	second := gen.Generate()
	assert.NotEqual(t, first, second)

	parsed, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestFixedGenerator_ReturnsInOrder(t *testing.T) {
	gen := NewFixedGenerator("op-a", "op-b")
	assert.Equal(t, "op-a", gen.Generate())
	assert.Equal(t, "op-b", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

func TestSequentialGenerator(t *testing.T) {
	gen := NewSequentialGenerator("step")
	assert.Equal(t, "step-1", gen.Generate())
	assert.Equal(t, "step-2", gen.Generate())
	assert.Equal(t, "step-3", gen.Generate())
}
