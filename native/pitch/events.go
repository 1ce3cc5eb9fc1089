package pitch

import (
	"strconv"

	"fanforge/core/events"
	"fanforge/core/types"
)

const (
	// EventTypeCreated is emitted when a campaign opens its funding window.
	EventTypeCreated = "pitch.created"
	// EventTypeContributed is emitted when a backer pledges.
	EventTypeContributed = "pitch.contributed"
	// EventTypeClosed is emitted when the funding window settles.
	EventTypeClosed = "pitch.closed"
	// EventTypeDelivered is emitted when the creator confirms delivery.
	EventTypeDelivered = "pitch.delivered"
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

// CreatedEvent returns the structured payload for a campaign opening.
func CreatedEvent(id, creator, goal string, endAt int64) *types.Event {
	return &types.Event{
		Type: EventTypeCreated,
		Attributes: map[string]string{
			"id":      id,
			"creator": creator,
			"goal":    goal,
			"endAt":   strconv.FormatInt(endAt, 10),
		},
	}
}

// ContributedEvent returns the structured payload for a pledge.
func ContributedEvent(id, backer, amount, accumulated string) *types.Event {
	return &types.Event{
		Type: EventTypeContributed,
		Attributes: map[string]string{
			"id":          id,
			"backer":      backer,
			"amount":      amount,
			"accumulated": accumulated,
		},
	}
}

// ClosedEvent returns the structured payload for a window settlement.
func ClosedEvent(id, status, accumulated, goal, feeAccrued string) *types.Event {
	return &types.Event{
		Type: EventTypeClosed,
		Attributes: map[string]string{
			"id":          id,
			"status":      status,
			"accumulated": accumulated,
			"goal":        goal,
			"feeAccrued":  feeAccrued,
		},
	}
}

// DeliveredEvent returns the structured payload for delivery confirmation.
func DeliveredEvent(id, creator string) *types.Event {
	return &types.Event{
		Type: EventTypeDelivered,
		Attributes: map[string]string{
			"id":      id,
			"creator": creator,
		},
	}
}
