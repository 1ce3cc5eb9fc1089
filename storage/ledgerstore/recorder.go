package ledgerstore

import (
	"log/slog"

	"fanforge/core/events"
	"fanforge/core/types"
	"fanforge/native/commitment"
	"fanforge/native/payout"
	"fanforge/native/pitch"
)

type commitmentSource interface {
	Get(id string) (*commitment.Commitment, error)
}

type payoutSource interface {
	Get(id string) (*payout.Request, error)
}

type pitchSource interface {
	Get(id string) (*pitch.Pitch, error)
}

// Recorder subscribes to engine events and archives terminal records. Archive
// failures are logged and swallowed: the reporting store must never block a
// ledger mutation that has already committed.
type Recorder struct {
	archive     *Archive
	logger      *slog.Logger
	commitments commitmentSource
	payouts     payoutSource
	pitches     pitchSource
}

// NewRecorder constructs a recorder over the supplied archive and sources.
func NewRecorder(archive *Archive, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{archive: archive, logger: logger}
}

// SetCommitmentSource wires the lookup used for commitment events.
func (r *Recorder) SetCommitmentSource(src commitmentSource) { r.commitments = src }

// SetPayoutSource wires the lookup used for payout events.
func (r *Recorder) SetPayoutSource(src payoutSource) { r.payouts = src }

// SetPitchSource wires the lookup used for pitch events.
func (r *Recorder) SetPitchSource(src pitchSource) { r.pitches = src }

type eventCarrier interface {
	Event() *types.Event
}

// Emit implements events.Emitter.
func (r *Recorder) Emit(evt events.Event) {
	if r == nil || r.archive == nil || evt == nil {
		return
	}
	carrier, ok := evt.(eventCarrier)
	if !ok || carrier.Event() == nil {
		return
	}
	id := carrier.Event().Attributes["id"]
	if id == "" {
		return
	}
	switch evt.EventType() {
	case commitment.EventTypeMatured, commitment.EventTypeWithdrawnEarly:
		if r.commitments == nil {
			return
		}
		record, err := r.commitments.Get(id)
		if err != nil {
			r.logger.Warn("archive: commitment lookup failed", "id", id, "err", err)
			return
		}
		if err := r.archive.RecordCommitment(record); err != nil {
			r.logger.Warn("archive: commitment write failed", "id", id, "err", err)
		}
	case payout.EventTypeRequested, payout.EventTypeApproved:
		if r.payouts == nil {
			return
		}
		record, err := r.payouts.Get(id)
		if err != nil {
			r.logger.Warn("archive: payout lookup failed", "id", id, "err", err)
			return
		}
		if err := r.archive.RecordPayout(record); err != nil {
			r.logger.Warn("archive: payout write failed", "id", id, "err", err)
		}
	case pitch.EventTypeClosed:
		if r.pitches == nil {
			return
		}
		record, err := r.pitches.Get(id)
		if err != nil {
			r.logger.Warn("archive: pitch lookup failed", "id", id, "err", err)
			return
		}
		if err := r.archive.RecordPitchOutcome(record); err != nil {
			r.logger.Warn("archive: pitch write failed", "id", id, "err", err)
		}
	}
}
