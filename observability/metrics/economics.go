package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EconomicsMetrics aggregates the counters emitted by the native engines.
type EconomicsMetrics struct {
	operations    *prometheus.CounterVec
	feesCollected *prometheus.CounterVec
	lockedTotal   prometheus.Gauge
	payoutsQueued prometheus.Gauge
}

// NewEconomics constructs the economics collectors and registers them on the
// supplied registerer. Pass the registry the metrics endpoint serves so the
// series are actually exported; a nil registerer falls back to the prometheus
// default.
func NewEconomics(reg prometheus.Registerer) *EconomicsMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &EconomicsMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "economics_operations_total",
			Help: "Count of engine operations by module, operation and result.",
		}, []string{"module", "op", "result"}),
		feesCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "economics_fees_collected_total",
			Help: "Total platform commission collected by transaction type, in FanCoin base units.",
		}, []string{"tx_type"}),
		lockedTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "economics_locked_fancoins",
			Help: "Sum of active commitment principals currently locked.",
		}),
		payoutsQueued: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "economics_payouts_queued",
			Help: "Number of payout requests awaiting their window or approval.",
		}),
	}
	reg.MustRegister(m.operations, m.feesCollected, m.lockedTotal, m.payoutsQueued)
	return m
}

// ObserveOperation records one engine operation outcome.
func (m *EconomicsMetrics) ObserveOperation(module, op, result string) {
	if m == nil {
		return
	}
	if result == "" {
		result = "ok"
	}
	m.operations.WithLabelValues(module, op, result).Inc()
}

// ObserveFee accumulates collected commission for a transaction type.
func (m *EconomicsMetrics) ObserveFee(txType string, amount float64) {
	if m == nil || amount <= 0 {
		return
	}
	if txType == "" {
		txType = "unknown"
	}
	m.feesCollected.WithLabelValues(txType).Add(amount)
}

// AddLocked moves the locked-principal gauge by the supplied delta.
func (m *EconomicsMetrics) AddLocked(delta float64) {
	if m == nil {
		return
	}
	m.lockedTotal.Add(delta)
}

// AddPayoutsQueued moves the queued-request gauge by the supplied delta.
func (m *EconomicsMetrics) AddPayoutsQueued(delta float64) {
	if m == nil {
		return
	}
	m.payoutsQueued.Add(delta)
}
