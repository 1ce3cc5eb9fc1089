package payout

import (
	"strconv"

	"fanforge/core/events"
	"fanforge/core/types"
)

const (
	// EventTypeRequested is emitted when a withdrawal request is accepted.
	EventTypeRequested = "payout.requested"
	// EventTypeApproved is emitted when a pending request is approved.
	EventTypeApproved = "payout.approved"
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

// RequestedEvent returns the structured payload for an accepted request.
func RequestedEvent(id, owner, amount, status string, scheduledFor int64) *types.Event {
	return &types.Event{
		Type: EventTypeRequested,
		Attributes: map[string]string{
			"id":           id,
			"owner":        owner,
			"amount":       amount,
			"status":       status,
			"scheduledFor": strconv.FormatInt(scheduledFor, 10),
		},
	}
}

// ApprovedEvent returns the structured payload for a manual approval.
func ApprovedEvent(id, owner string, scheduledFor int64) *types.Event {
	return &types.Event{
		Type: EventTypeApproved,
		Attributes: map[string]string{
			"id":           id,
			"owner":        owner,
			"scheduledFor": strconv.FormatInt(scheduledFor, 10),
		},
	}
}
