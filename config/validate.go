package config

import (
	"fmt"
	"math"
	"strings"
)

const (
	bpsDenominator  = 10_000
	weightTolerance = 1e-9
)

// Validate performs the configuration-integrity checks that must pass before a
// registry version is put into service. Failures here indicate a deployment
// defect, not a user error, and are surfaced before any request is served.
func (c *Config) Validate() error {
	if err := c.validateFees(); err != nil {
		return err
	}
	if err := c.validateCommitments(); err != nil {
		return err
	}
	if err := c.validateGuilds(); err != nil {
		return err
	}
	if err := c.validatePitches(); err != nil {
		return err
	}
	if err := c.validatePayouts(); err != nil {
		return err
	}
	return c.validateScore()
}

func (c *Config) validateFees() error {
	if len(c.Fees.RatesBps) == 0 {
		return fmt.Errorf("config: fees.RatesBps must configure at least one transaction type")
	}
	for txType, bps := range c.Fees.RatesBps {
		if strings.TrimSpace(txType) == "" {
			return fmt.Errorf("config: fees.RatesBps contains an empty transaction type")
		}
		if bps > bpsDenominator {
			return fmt.Errorf("config: fees.RatesBps[%s] %d exceeds 100%%", txType, bps)
		}
	}
	if c.Fees.EcosystemFundBps > bpsDenominator {
		return fmt.Errorf("config: fees.EcosystemFundBps %d exceeds 100%%", c.Fees.EcosystemFundBps)
	}
	return nil
}

func (c *Config) validateCommitments() error {
	if len(c.Commitments.DurationsDays) == 0 {
		return fmt.Errorf("config: commitments.DurationsDays must not be empty")
	}
	seen := make(map[uint32]struct{}, len(c.Commitments.DurationsDays))
	for _, days := range c.Commitments.DurationsDays {
		if days == 0 {
			return fmt.Errorf("config: commitments.DurationsDays must be positive")
		}
		if _, dup := seen[days]; dup {
			return fmt.Errorf("config: commitments.DurationsDays duplicates %d", days)
		}
		seen[days] = struct{}{}
	}
	if c.Commitments.CompletionBonusBps > bpsDenominator {
		return fmt.Errorf("config: commitments.CompletionBonusBps %d exceeds 100%%", c.Commitments.CompletionBonusBps)
	}
	if c.Commitments.EarlyWithdrawalPenaltyBps > bpsDenominator {
		return fmt.Errorf("config: commitments.EarlyWithdrawalPenaltyBps %d exceeds 100%%", c.Commitments.EarlyWithdrawalPenaltyBps)
	}
	minAmount, err := ParseAmount(c.Commitments.MinAmount)
	if err != nil {
		return fmt.Errorf("config: commitments.MinAmount: %w", err)
	}
	maxAmount, err := ParseAmount(c.Commitments.MaxAmount)
	if err != nil {
		return fmt.Errorf("config: commitments.MaxAmount: %w", err)
	}
	if minAmount.Sign() <= 0 {
		return fmt.Errorf("config: commitments.MinAmount must be positive")
	}
	if maxAmount.Cmp(minAmount) < 0 {
		return fmt.Errorf("config: commitments.MaxAmount below MinAmount")
	}
	return nil
}

func (c *Config) validateGuilds() error {
	if c.Guilds.MaxMembers == 0 {
		return fmt.Errorf("config: guilds.MaxMembers must be positive")
	}
	if c.Guilds.MinCreatorScore < 0 || c.Guilds.MinCreatorScore > 1 {
		return fmt.Errorf("config: guilds.MinCreatorScore %f outside [0,1]", c.Guilds.MinCreatorScore)
	}
	if c.Guilds.MaxContributionBps > bpsDenominator {
		return fmt.Errorf("config: guilds.MaxContributionBps %d exceeds 100%%", c.Guilds.MaxContributionBps)
	}
	if c.Guilds.MinContributionBps > c.Guilds.MaxContributionBps {
		return fmt.Errorf("config: guilds.MinContributionBps above MaxContributionBps")
	}
	return nil
}

func (c *Config) validatePitches() error {
	minGoal, err := ParseAmount(c.Pitches.MinGoal)
	if err != nil {
		return fmt.Errorf("config: pitches.MinGoal: %w", err)
	}
	maxGoal, err := ParseAmount(c.Pitches.MaxGoal)
	if err != nil {
		return fmt.Errorf("config: pitches.MaxGoal: %w", err)
	}
	if minGoal.Sign() <= 0 {
		return fmt.Errorf("config: pitches.MinGoal must be positive")
	}
	if maxGoal.Cmp(minGoal) < 0 {
		return fmt.Errorf("config: pitches.MaxGoal below MinGoal")
	}
	if c.Pitches.MinDurationDays == 0 {
		return fmt.Errorf("config: pitches.MinDurationDays must be positive")
	}
	if c.Pitches.MaxDurationDays < c.Pitches.MinDurationDays {
		return fmt.Errorf("config: pitches.MaxDurationDays below MinDurationDays")
	}
	if c.Pitches.PlatformFeeBps > bpsDenominator {
		return fmt.Errorf("config: pitches.PlatformFeeBps %d exceeds 100%%", c.Pitches.PlatformFeeBps)
	}
	if c.Pitches.MaxRewardTiers == 0 {
		return fmt.Errorf("config: pitches.MaxRewardTiers must be positive")
	}
	return nil
}

func (c *Config) validatePayouts() error {
	if _, err := ParseAmount(c.Payouts.MinPayout); err != nil {
		return fmt.Errorf("config: payouts.MinPayout: %w", err)
	}
	if _, err := ParseAmount(c.Payouts.MaxDailyAmount); err != nil {
		return fmt.Errorf("config: payouts.MaxDailyAmount: %w", err)
	}
	if _, err := ParseAmount(c.Payouts.ManualApprovalThreshold); err != nil {
		return fmt.Errorf("config: payouts.ManualApprovalThreshold: %w", err)
	}
	if c.Payouts.MaxDailyWithdrawals == 0 {
		return fmt.Errorf("config: payouts.MaxDailyWithdrawals must be positive")
	}
	if len(c.Payouts.PayoutDays) == 0 {
		return fmt.Errorf("config: payouts.PayoutDays must not be empty")
	}
	seen := make(map[int]struct{}, len(c.Payouts.PayoutDays))
	for _, day := range c.Payouts.PayoutDays {
		if day < 1 || day > 31 {
			return fmt.Errorf("config: payouts.PayoutDays entry %d outside [1,31]", day)
		}
		if _, dup := seen[day]; dup {
			return fmt.Errorf("config: payouts.PayoutDays duplicates %d", day)
		}
		seen[day] = struct{}{}
	}
	if _, err := c.PayoutLocation(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScore() error {
	weights := []float64{
		c.Score.Engagement,
		c.Score.Consistency,
		c.Score.Retention,
		c.Score.Monetization,
		c.Score.Responsiveness,
		c.Score.Quality,
	}
	sum := 0.0
	for _, w := range weights {
		if w < 0 || w > 1 {
			return fmt.Errorf("config: score weight %f outside [0,1]", w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("config: score weights sum to %f, want 1.0", sum)
	}
	return nil
}
