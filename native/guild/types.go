package guild

import "math/big"

// Guild is a bounded group of creators sharing a treasury funded by a
// percentage of member earnings. The treasury balance only grows here;
// disbursement is an external collaborator concern.
type Guild struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Members         []string `json:"members"`
	ContributionBps uint32   `json:"contributionBps"`
	TreasuryBalance *big.Int `json:"treasuryBalance"`
	CreatedAt       int64    `json:"createdAt"`
}

// Clone returns a deep copy of the guild.
func (g *Guild) Clone() *Guild {
	if g == nil {
		return nil
	}
	clone := *g
	clone.Members = append([]string{}, g.Members...)
	if g.TreasuryBalance != nil {
		clone.TreasuryBalance = new(big.Int).Set(g.TreasuryBalance)
	}
	return &clone
}

// HasMember reports whether the creator already belongs to the guild.
func (g *Guild) HasMember(creator string) bool {
	if g == nil {
		return false
	}
	for _, member := range g.Members {
		if member == creator {
			return true
		}
	}
	return false
}

// Contribution summarises one treasury split applied to member earnings.
type Contribution struct {
	GuildID   string   `json:"guildId"`
	Member    string   `json:"member"`
	Earnings  *big.Int `json:"earnings"`
	Amount    *big.Int `json:"amount"`
	Remainder *big.Int `json:"remainder"`
	AppliedAt int64    `json:"appliedAt"`
}
