// Package metrics exposes schedule generation counters to Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arnavshah/clinic-scheduler-api/pkg/scheduler"
)

// PromSink records generated schedules in Prometheus metrics.
type PromSink struct {
	runs      *prometheus.CounterVec
	slots     *prometheus.CounterVec
	approvals *prometheus.CounterVec
	duration  prometheus.Histogram
}

// NewPromSink registers schedule metrics on the provided registerer. If reg
// is nil, the default registerer is used. Collectors that are already
// registered are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_schedule_runs_total",
		Help: "Total number of generated daily schedules",
	}, []string{"finalizable"})
	slots := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_schedule_slots_total",
		Help: "Grid slots produced, by source",
	}, []string{"source"})
	approvals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_schedule_approvals_total",
		Help: "Approval requests raised, by type",
	}, []string{"type"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "clinic_schedule_duration_seconds",
		Help:    "Time spent generating one daily schedule",
		Buckets: prometheus.DefBuckets,
	})

	var err error
	if runs, err = register(reg, runs); err != nil {
		return nil, err
	}
	if slots, err = register(reg, slots); err != nil {
		return nil, err
	}
	if approvals, err = register(reg, approvals); err != nil {
		return nil, err
	}
	if err := reg.Register(duration); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		duration = are.ExistingCollector.(prometheus.Histogram)
	}
	return &PromSink{runs: runs, slots: slots, approvals: approvals, duration: duration}, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, err
	}
	return c, nil
}

// RecordRun counts one generated schedule.
func (s *PromSink) RecordRun(res scheduler.Result, took time.Duration) {
	s.runs.WithLabelValues(strconv.FormatBool(res.Finalizable())).Inc()
	for _, row := range res.Schedule {
		for _, slot := range row.Slots {
			s.slots.WithLabelValues(string(slot.Source)).Inc()
		}
	}
	for _, r := range res.PendingApprovals {
		s.approvals.WithLabelValues(string(r.Type)).Inc()
	}
	s.duration.Observe(took.Seconds())
}
