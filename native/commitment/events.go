package commitment

import (
	"strconv"

	"fanforge/core/events"
	"fanforge/core/types"
)

const (
	// EventTypeCreated is emitted when funds are locked into a commitment.
	EventTypeCreated = "commitment.created"
	// EventTypeMatured is emitted when a commitment settles at maturity.
	EventTypeMatured = "commitment.matured"
	// EventTypeWithdrawnEarly is emitted when a commitment exits early.
	EventTypeWithdrawnEarly = "commitment.withdrawn_early"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

// CreatedEvent returns the structured payload for a new commitment.
func CreatedEvent(id, owner, principal string, durationDays uint32, maturesAt int64) *types.Event {
	return &types.Event{
		Type: EventTypeCreated,
		Attributes: map[string]string{
			"id":           id,
			"owner":        owner,
			"principal":    principal,
			"durationDays": strconv.FormatUint(uint64(durationDays), 10),
			"maturesAt":    strconv.FormatInt(maturesAt, 10),
		},
	}
}

// MaturedEvent returns the structured payload for a maturity settlement.
func MaturedEvent(id, owner, principal, bonus string) *types.Event {
	return &types.Event{
		Type: EventTypeMatured,
		Attributes: map[string]string{
			"id":        id,
			"owner":     owner,
			"principal": principal,
			"bonus":     bonus,
		},
	}
}

// WithdrawnEarlyEvent returns the structured payload for an early exit.
func WithdrawnEarlyEvent(id, owner, returned, penalty string) *types.Event {
	return &types.Event{
		Type: EventTypeWithdrawnEarly,
		Attributes: map[string]string{
			"id":       id,
			"owner":    owner,
			"returned": returned,
			"penalty":  penalty,
		},
	}
}
