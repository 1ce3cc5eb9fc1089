package events

// Event represents a structured state change emitted by the economics engines.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. the API layer,
// notification workers, audit indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events. It
// is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

type fanout []Emitter

func (f fanout) Emit(evt Event) {
	for _, emitter := range f {
		if emitter != nil {
			emitter.Emit(evt)
		}
	}
}

// Fanout broadcasts each event to every supplied emitter in order. Nil
// emitters are skipped so callers can pass optional subscribers directly.
func Fanout(emitters ...Emitter) Emitter {
	targets := make(fanout, 0, len(emitters))
	for _, emitter := range emitters {
		if emitter != nil {
			targets = append(targets, emitter)
		}
	}
	if len(targets) == 0 {
		return NoopEmitter{}
	}
	if len(targets) == 1 {
		return targets[0]
	}
	return targets
}
