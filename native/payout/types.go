package payout

import (
	"math/big"
	"time"
)

// DayFormat is the calendar-day bucket key used by the rolling counters,
// rendered in the platform reference timezone.
const DayFormat = "2006-01-02"

// Status represents the payout request lifecycle. Rejected requests are
// surfaced as typed errors and never persisted; pending requests await manual
// approval before joining a payout window.
type Status uint8

const (
	StatusPending Status = iota
	StatusScheduled
	StatusRejected
)

// Valid reports whether the status value is within the supported range.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusRejected:
		return true
	default:
		return false
	}
}

// String returns the canonical label used in events and archives.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusScheduled:
		return "scheduled"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Request captures an accepted withdrawal. The requested amount is reserved
// from the owner's available balance at acceptance so a scheduled payout can
// never be double-spent.
type Request struct {
	ID           string   `json:"id"`
	Owner        string   `json:"owner"`
	Amount       *big.Int `json:"amount"`
	RequestedAt  int64    `json:"requestedAt"`
	Status       Status   `json:"status"`
	ScheduledFor int64    `json:"scheduledFor,omitempty"`
}

// Clone returns a deep copy of the request.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Amount != nil {
		clone.Amount = new(big.Int).Set(r.Amount)
	}
	return &clone
}

// WindowState carries the per-account rolling counters for one calendar day.
// Counters mutate only when a request is accepted, never on rejection, and a
// fresh bucket starts at each local-midnight boundary.
type WindowState struct {
	Account string   `json:"account"`
	Day     string   `json:"day"`
	Count   uint32   `json:"count"`
	Amount  *big.Int `json:"amount"`
}

// Clone returns a deep copy of the window state.
func (w *WindowState) Clone() *WindowState {
	if w == nil {
		return nil
	}
	clone := *w
	if w.Amount != nil {
		clone.Amount = new(big.Int).Set(w.Amount)
	}
	return &clone
}

// WithdrawDay derives the counter bucket for the provided instant.
func WithdrawDay(ts time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return ts.In(loc).Format(DayFormat)
}
