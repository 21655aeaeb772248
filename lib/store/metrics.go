package store

import (
	"errors"
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// storeMetrics holds the metrics of one Store. Every Store has its own set so
// that independent instances never share counters.
type storeMetrics struct {
	set             *metrics.Set
	initializations *metrics.Counter
	fallbacks       *metrics.Counter
}

func newStoreMetrics(s *Store) *storeMetrics {
	set := metrics.NewSet()
	m := &storeMetrics{
		set:             set,
		initializations: set.NewCounter("tinykv_initializations_total"),
		fallbacks:       set.NewCounter("tinykv_fallbacks_total"),
	}
	set.NewGauge("tinykv_fallback_active", func() float64 {
		if s.IsUsingFallback() {
			return 1
		}
		return 0
	})
	return m
}

// observe counts a call of op and, when *err is set, its error code.
// It is meant to be deferred with a pointer to the named error result.
func (m *storeMetrics) observe(op string, err *error) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`tinykv_operations_total{op=%q}`, op)).Inc()
	if err == nil || *err == nil {
		return
	}
	code := Code("UNKNOWN")
	var e *Error
	if errors.As(*err, &e) {
		code = e.Code
	}
	m.set.GetOrCreateCounter(fmt.Sprintf(`tinykv_errors_total{code=%q}`, code)).Inc()
}

// Initializations returns how many times the store selected a backend.
func (s *Store) Initializations() uint64 {
	return s.metrics.initializations.Get()
}

// WriteMetrics writes the store metrics in Prometheus text format to w.
func (s *Store) WriteMetrics(w io.Writer) {
	s.metrics.set.WritePrometheus(w)
}
