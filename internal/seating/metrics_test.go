package seating

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCountAllocations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	f := newFixture(t)
	f.engine = New(f.store, WithMetrics(m))
	f.table(1, 1)
	g := f.guest("A", "B")
	f.seat(g, 1)
	_, err := f.engine.Allocator.Assign(f.ctx, g.ID, 1)
	require.NoError(t, err)
	_, err = f.engine.Allocator.Assign(f.ctx, f.guest("C", "D").ID, 1)
	require.ErrorIs(t, err, ErrCapacityExceeded)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.allocations.WithLabelValues("assign", "assigned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.allocations.WithLabelValues("assign", "already_assigned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.allocations.WithLabelValues("assign", "rejected")))

	_, err = f.engine.Views.Materialize(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.occupiedSeats.WithLabelValues("1")))
}

func TestNewMetricsReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewMetrics(reg)
	b := NewMetrics(reg)
	assert.Same(t, a.retries, b.retries)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.retry()
	m.checkIn("ok")
	m.occupancy(nil)
}
