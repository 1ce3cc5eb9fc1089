package commitment

import "math/big"

// Status represents the lifecycle states of a fund commitment. Transitions are
// one-directional: active commitments settle at maturity or exit early, and
// terminal records are retained for reporting rather than deleted.
type Status uint8

const (
	StatusActive Status = iota
	StatusMatured
	StatusWithdrawnEarly
)

// Valid reports whether the status value is within the supported range.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusMatured, StatusWithdrawnEarly:
		return true
	default:
		return false
	}
}

// Terminal reports whether the commitment can no longer transition.
func (s Status) Terminal() bool {
	return s == StatusMatured || s == StatusWithdrawnEarly
}

// String returns the canonical label used in events and archives.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusMatured:
		return "matured"
	case StatusWithdrawnEarly:
		return "withdrawn_early"
	default:
		return "unknown"
	}
}

// Commitment captures a time-locked FanCoin deposit. The principal moves from
// the owner's available balance into the locked column at creation and leaves
// the locked column exactly once, in full, at settlement or early withdrawal.
type Commitment struct {
	ID           string   `json:"id"`
	Owner        string   `json:"owner"`
	Principal    *big.Int `json:"principal"`
	DurationDays uint32   `json:"durationDays"`
	CreatedAt    int64    `json:"createdAt"`
	MaturesAt    int64    `json:"maturesAt"`
	Status       Status   `json:"status"`
	ClosedAt     int64    `json:"closedAt,omitempty"`
	Bonus        *big.Int `json:"bonus,omitempty"`
	Penalty      *big.Int `json:"penalty,omitempty"`
}

// Clone returns a deep copy so callers can mutate the copy without affecting
// the stored instance.
func (c *Commitment) Clone() *Commitment {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Principal != nil {
		clone.Principal = new(big.Int).Set(c.Principal)
	}
	if c.Bonus != nil {
		clone.Bonus = new(big.Int).Set(c.Bonus)
	}
	if c.Penalty != nil {
		clone.Penalty = new(big.Int).Set(c.Penalty)
	}
	return &clone
}
