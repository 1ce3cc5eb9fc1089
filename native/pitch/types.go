package pitch

import "math/big"

// Status represents the crowdfunding campaign lifecycle. The funding→succeeded
// and funding→failed transitions happen exactly once at window close;
// succeeded campaigns move to delivered when the creator confirms delivery.
type Status uint8

const (
	StatusFunding Status = iota
	StatusSucceeded
	StatusFailed
	StatusDelivered
)

// Valid reports whether the status value is within the supported range.
func (s Status) Valid() bool {
	switch s {
	case StatusFunding, StatusSucceeded, StatusFailed, StatusDelivered:
		return true
	default:
		return false
	}
}

// String returns the canonical label used in events and archives.
func (s Status) String() string {
	switch s {
	case StatusFunding:
		return "funding"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// Contribution records a single backer pledge. Pledges are recorded gross: the
// backer sees the full amount on the campaign, and the platform fee is accrued
// against the creator's eventual payout instead.
type Contribution struct {
	Backer   string   `json:"backer"`
	Amount   *big.Int `json:"amount"`
	PledgeAt int64    `json:"pledgeAt"`
}

// Pitch is a crowdfunding campaign with a goal, deadline and reward tiers.
// Accumulated may exceed Goal — overfunding is allowed.
type Pitch struct {
	ID            string         `json:"id"`
	Creator       string         `json:"creator"`
	Title         string         `json:"title"`
	Goal          *big.Int       `json:"goal"`
	Accumulated   *big.Int       `json:"accumulated"`
	FeeAccrued    *big.Int       `json:"feeAccrued"`
	RewardTiers   uint32         `json:"rewardTiers"`
	StartAt       int64          `json:"startAt"`
	EndAt         int64          `json:"endAt"`
	Status        Status         `json:"status"`
	ClosedAt      int64          `json:"closedAt,omitempty"`
	Contributions []Contribution `json:"contributions"`
}

// Clone returns a deep copy so callers can mutate the copy without affecting
// the stored instance.
func (p *Pitch) Clone() *Pitch {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Goal != nil {
		clone.Goal = new(big.Int).Set(p.Goal)
	}
	if p.Accumulated != nil {
		clone.Accumulated = new(big.Int).Set(p.Accumulated)
	}
	if p.FeeAccrued != nil {
		clone.FeeAccrued = new(big.Int).Set(p.FeeAccrued)
	}
	clone.Contributions = make([]Contribution, len(p.Contributions))
	for i, c := range p.Contributions {
		clone.Contributions[i] = Contribution{Backer: c.Backer, PledgeAt: c.PledgeAt}
		if c.Amount != nil {
			clone.Contributions[i].Amount = new(big.Int).Set(c.Amount)
		}
	}
	return &clone
}
