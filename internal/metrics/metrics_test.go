package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flaggraph/internal/engine"
	"github.com/roach88/flaggraph/internal/model"
)

func TestCollector_Transitions(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.AuditRecorded(model.ActionCreated)
	c.AuditRecorded(model.ActionCreated)
	c.AuditRecorded(model.ActionAutoDisabled)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.transitions.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transitions.WithLabelValues("auto-disabled")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.transitions.WithLabelValues("enabled")))
}

func TestCollector_Rejections(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.OperationRejected(engine.ErrCodeCycleDetected)
	c.OperationRejected(engine.ErrCodeCycleDetected)
	c.OperationRejected(engine.ErrCodeFlagNotFound)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.rejections.WithLabelValues("CYCLE_DETECTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rejections.WithLabelValues("FLAG_NOT_FOUND")))
}

func TestCollector_CascadeSize(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.CascadeCompleted("base", 0)
	c.CascadeCompleted("base", 3)

	expected := `
# HELP flaggraph_cascade_size Dependents auto-disabled per manual disable
# TYPE flaggraph_cascade_size histogram
flaggraph_cascade_size_bucket{le="0"} 1
flaggraph_cascade_size_bucket{le="1"} 1
flaggraph_cascade_size_bucket{le="2"} 1
flaggraph_cascade_size_bucket{le="5"} 2
flaggraph_cascade_size_bucket{le="10"} 2
flaggraph_cascade_size_bucket{le="25"} 2
flaggraph_cascade_size_bucket{le="50"} 2
flaggraph_cascade_size_bucket{le="100"} 2
flaggraph_cascade_size_bucket{le="+Inf"} 2
flaggraph_cascade_size_sum 3
flaggraph_cascade_size_count 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "flaggraph_cascade_size"))
}

func TestCollector_ObserveRequest(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.ObserveRequest("POST", "/flags", 201, 3*time.Millisecond)
	c.ObserveRequest("POST", "/flags", 409, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("POST", "/flags", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("POST", "/flags", "409")))
}

func TestNew_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) }, "second registration on the same registry collides")
	assert.NotPanics(t, func() { New(prometheus.NewRegistry()) })
}
