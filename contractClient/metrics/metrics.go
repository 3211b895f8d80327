// Package metrics exposes prometheus instruments for the transaction manager.
package metrics

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cerrors "github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/errors"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/txmanager"
)

const namespace = "ticketctl"

// TxManager holds the instruments fed by a txmanager.Manager.
type TxManager struct {
	Calls       *prometheus.CounterVec
	CallLatency prometheus.Histogram
	Transitions *prometheus.CounterVec
	ReceiptWait *prometheus.HistogramVec
	GasUsed     prometheus.Histogram
}

// NewTxManager creates the instruments and registers them on reg.
func NewTxManager(reg prometheus.Registerer) *TxManager {
	m := &TxManager{
		Calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "calls_total",
			Help:      "Simulated contract calls by outcome.",
		}, []string{"outcome"}),
		CallLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "call_latency_seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "transitions_total",
			Help:      "Request lifecycle transitions by state.",
		}, []string{"state"}),
		ReceiptWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "receipt_wait_seconds",
			Buckets:   []float64{1, 2, 5, 10, 15, 30, 60, 120, 300, math.Inf(0)},
		}, []string{"state"}),
		GasUsed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "gas_used",
			Buckets:   prometheus.ExponentialBuckets(21000, 2, 10),
		}),
	}
	reg.MustRegister(m.Calls, m.CallLatency, m.Transitions, m.ReceiptWait, m.GasUsed)
	return m
}

// Listener returns the manager hook that updates the instruments.
func (m *TxManager) Listener() txmanager.EventListener {
	return txmanager.SelectiveListener{
		OnCallCb: func(took time.Duration, err error) {
			m.CallLatency.Observe(took.Seconds())
			m.Calls.WithLabelValues(callOutcome(err)).Inc()
		},
		OnTransitionCb: func(t txmanager.Transition) {
			m.Transitions.WithLabelValues(t.State.String()).Inc()
			if t.GasUsed > 0 {
				m.GasUsed.Observe(float64(t.GasUsed))
			}
		},
		OnReceiptWaitCb: func(took time.Duration, state txmanager.State) {
			m.ReceiptWait.WithLabelValues(state.String()).Observe(took.Seconds())
		},
	}
}

func callOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case cerrors.Is(err, cerrors.ErrReverted):
		return "reverted"
	default:
		return "error"
	}
}
