package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"fanforge/native/commitment"
	"fanforge/native/payout"
	"fanforge/native/pitch"
)

func TestObserverTracksLifecycle(t *testing.T) {
	observer := NewObserver(prometheus.NewRegistry())
	m := observer.metrics

	lockedBefore := testutil.ToFloat64(m.lockedTotal)
	observer.Emit(commitment.WrapEvent(commitment.CreatedEvent("c-1", "alice", "1000", 30, 99)))
	if delta := testutil.ToFloat64(m.lockedTotal) - lockedBefore; delta != 1000 {
		t.Fatalf("locked gauge after create: delta %f", delta)
	}
	observer.Emit(commitment.WrapEvent(commitment.MaturedEvent("c-1", "alice", "1000", "50")))
	if delta := testutil.ToFloat64(m.lockedTotal) - lockedBefore; delta != 0 {
		t.Fatalf("locked gauge after settle: delta %f", delta)
	}

	opsBefore := testutil.ToFloat64(m.operations.WithLabelValues("commitment", "created", "ok"))
	observer.Emit(commitment.WrapEvent(commitment.CreatedEvent("c-2", "alice", "500", 7, 99)))
	if delta := testutil.ToFloat64(m.operations.WithLabelValues("commitment", "created", "ok")) - opsBefore; delta != 1 {
		t.Fatalf("operations counter: delta %f", delta)
	}

	queuedBefore := testutil.ToFloat64(m.payoutsQueued)
	observer.Emit(payout.WrapEvent(payout.RequestedEvent("p-1", "alice", "500", "scheduled", 123)))
	if delta := testutil.ToFloat64(m.payoutsQueued) - queuedBefore; delta != 1 {
		t.Fatalf("queued gauge: delta %f", delta)
	}

	feesBefore := testutil.ToFloat64(m.feesCollected.WithLabelValues("pitch_contribution"))
	observer.Emit(pitch.WrapEvent(pitch.ClosedEvent("pt-1", "succeeded", "12000", "10000", "600")))
	if delta := testutil.ToFloat64(m.feesCollected.WithLabelValues("pitch_contribution")) - feesBefore; delta != 600 {
		t.Fatalf("fees counter: delta %f", delta)
	}
	// A failed close collects nothing.
	observer.Emit(pitch.WrapEvent(pitch.ClosedEvent("pt-2", "failed", "500", "10000", "25")))
	if delta := testutil.ToFloat64(m.feesCollected.WithLabelValues("pitch_contribution")) - feesBefore; delta != 600 {
		t.Fatalf("failed close must not collect: delta %f", delta)
	}
}

// The collectors must be gatherable from the registry the metrics endpoint
// serves, not a detached default.
func TestEconomicsSeriesServedFromRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	observer := NewObserver(reg)

	observer.Emit(commitment.WrapEvent(commitment.CreatedEvent("c-1", "alice", "1000", 30, 99)))
	observer.Emit(payout.WrapEvent(payout.RequestedEvent("p-1", "alice", "500", "scheduled", 123)))
	observer.Emit(pitch.WrapEvent(pitch.ClosedEvent("pt-1", "succeeded", "12000", "10000", "600")))

	count, err := testutil.GatherAndCount(reg,
		"economics_operations_total",
		"economics_fees_collected_total",
		"economics_locked_fancoins",
		"economics_payouts_queued",
	)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	// Three operation samples plus one sample per gauge and fee series.
	if count != 6 {
		t.Fatalf("served series: got %d, want 6", count)
	}
}
