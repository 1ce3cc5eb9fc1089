package guild

import (
	"strconv"

	"fanforge/core/events"
	"fanforge/core/types"
)

const (
	// EventTypeCreated is emitted when a guild is registered.
	EventTypeCreated = "guild.created"
	// EventTypeMemberJoined is emitted when a creator joins a guild.
	EventTypeMemberJoined = "guild.member.joined"
	// EventTypeContributed is emitted when earnings split into the treasury.
	EventTypeContributed = "guild.treasury.contributed"
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

// CreatedEvent returns the structured payload for guild registration.
func CreatedEvent(id, name string, contributionBps uint32) *types.Event {
	return &types.Event{
		Type: EventTypeCreated,
		Attributes: map[string]string{
			"id":              id,
			"name":            name,
			"contributionBps": strconv.FormatUint(uint64(contributionBps), 10),
		},
	}
}

// MemberJoinedEvent returns the structured payload for a member admission.
func MemberJoinedEvent(id, creator string, memberCount int) *types.Event {
	return &types.Event{
		Type: EventTypeMemberJoined,
		Attributes: map[string]string{
			"id":          id,
			"creator":     creator,
			"memberCount": strconv.Itoa(memberCount),
		},
	}
}

// ContributedEvent returns the structured payload for a treasury split.
func ContributedEvent(id, member, amount, treasury string) *types.Event {
	return &types.Event{
		Type: EventTypeContributed,
		Attributes: map[string]string{
			"id":       id,
			"member":   member,
			"amount":   amount,
			"treasury": treasury,
		},
	}
}
