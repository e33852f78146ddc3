package seating

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iliyamo/guest-seating/internal/model"
)

// Metrics holds the engine's prometheus collectors.  A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	allocations   *prometheus.CounterVec
	retries       prometheus.Counter
	fallbacks     prometheus.Counter
	merged        prometheus.Counter
	checkIns      *prometheus.CounterVec
	verifyIssues  prometheus.Gauge
	occupiedSeats *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them on reg.  Collectors
// already registered by an earlier engine are reused.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seating_allocations_total",
			Help: "Seat allocation attempts by operation and outcome",
		}, []string{"op", "outcome"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seating_allocation_retries_total",
			Help: "Allocations retried after a uniqueness conflict",
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seating_fuzzy_fallbacks_total",
			Help: "Guest resolutions that fell back to fuzzy matching",
		}),
		merged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seating_duplicates_removed_total",
			Help: "Duplicate guest records removed",
		}),
		checkIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seating_checkins_total",
			Help: "Check-in attempts by outcome",
		}, []string{"outcome"}),
		verifyIssues: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seating_verify_issues",
			Help: "Invariant violations found by the last verification",
		}),
		occupiedSeats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "seating_occupied_seats",
			Help: "Occupied seats per table as of the last materialization",
		}, []string{"table"}),
	}
	if reg == nil {
		return m
	}
	m.allocations = register(reg, m.allocations)
	m.retries = register(reg, m.retries)
	m.fallbacks = register(reg, m.fallbacks)
	m.merged = register(reg, m.merged)
	m.checkIns = register(reg, m.checkIns)
	m.verifyIssues = register(reg, m.verifyIssues)
	m.occupiedSeats = register(reg, m.occupiedSeats)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		slog.Error("can't register seating metric", "error", err)
	}
	return c
}

func (m *Metrics) allocation(op, outcome string) {
	if m != nil {
		m.allocations.WithLabelValues(op, outcome).Inc()
	}
}

func (m *Metrics) retry() {
	if m != nil {
		m.retries.Inc()
	}
}

func (m *Metrics) fallback() {
	if m != nil {
		m.fallbacks.Inc()
	}
}

func (m *Metrics) removed(n int) {
	if m != nil {
		m.merged.Add(float64(n))
	}
}

func (m *Metrics) checkIn(outcome string) {
	if m != nil {
		m.checkIns.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) verified(issues int) {
	if m != nil {
		m.verifyIssues.Set(float64(issues))
	}
}

func (m *Metrics) occupancy(tables []model.TableStatus) {
	if m == nil {
		return
	}
	m.occupiedSeats.Reset()
	for _, t := range tables {
		m.occupiedSeats.WithLabelValues(strconv.Itoa(t.TableNumber)).Set(float64(t.OccupiedSeats))
	}
}
