package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"fanforge/core/events"
	"fanforge/core/types"
	"fanforge/native/commitment"
	"fanforge/native/payout"
	"fanforge/native/pitch"
)

type eventCarrier interface {
	Event() *types.Event
}

// Observer folds engine events into the economics metrics. Event types follow
// the "module.operation" convention, which maps directly onto the operations
// counter; the locked and queued gauges are maintained incrementally from the
// lifecycle events that move them.
type Observer struct {
	metrics *EconomicsMetrics
}

// NewObserver constructs an observer whose collectors register on the
// supplied registerer, normally the registry served by the gateway metrics
// endpoint.
func NewObserver(reg prometheus.Registerer) *Observer {
	return &Observer{metrics: NewEconomics(reg)}
}

// Emit implements events.Emitter.
func (o *Observer) Emit(evt events.Event) {
	if o == nil || o.metrics == nil || evt == nil {
		return
	}
	eventType := evt.EventType()
	module, op, ok := strings.Cut(eventType, ".")
	if !ok {
		return
	}
	o.metrics.ObserveOperation(module, op, "ok")

	carrier, ok := evt.(eventCarrier)
	if !ok || carrier.Event() == nil {
		return
	}
	attrs := carrier.Event().Attributes
	switch eventType {
	case commitment.EventTypeCreated:
		o.metrics.AddLocked(attrFloat(attrs["principal"]))
	case commitment.EventTypeMatured:
		o.metrics.AddLocked(-attrFloat(attrs["principal"]))
	case commitment.EventTypeWithdrawnEarly:
		// Returned plus penalty reconstitutes the unlocked principal.
		o.metrics.AddLocked(-(attrFloat(attrs["returned"]) + attrFloat(attrs["penalty"])))
	case payout.EventTypeRequested:
		o.metrics.AddPayoutsQueued(1)
	case pitch.EventTypeClosed:
		if attrs["status"] == pitch.StatusSucceeded.String() {
			o.metrics.ObserveFee("pitch_contribution", attrFloat(attrs["feeAccrued"]))
		}
	}
}

func attrFloat(raw string) float64 {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}
