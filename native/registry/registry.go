package registry

import (
	"fmt"
	"math/big"
	"sort"
	"sync/atomic"
	"time"

	"fanforge/config"
	"fanforge/native/score"
)

// Params is the immutable runtime view of one configuration version. Engines
// hold a *Params for the duration of a single operation so every check within
// that operation sees the same version.
type Params struct {
	Version     uint64
	Fees        FeeParams
	Commitments CommitmentParams
	Guilds      GuildParams
	Pitches     PitchParams
	Payouts     PayoutParams
	Weights     score.Weights
	Tiers       map[string]float64
}

// FeeParams carries the commission table in basis points.
type FeeParams struct {
	RatesBps         map[string]uint32
	EcosystemFundBps uint32
}

// CommitmentParams bounds the fund-commitment ledger. Durations is a
// membership set: only the exact configured values are accepted.
type CommitmentParams struct {
	Durations                 map[uint32]struct{}
	CompletionBonusBps        uint32
	EarlyWithdrawalPenaltyBps uint32
	MinAmount                 *big.Int
	MaxAmount                 *big.Int
}

// GuildParams bounds guild membership and treasury splits.
type GuildParams struct {
	MaxMembers         uint32
	MinCreatorScore    float64
	MinContributionBps uint32
	MaxContributionBps uint32
}

// PitchParams bounds crowdfunding campaign creation.
type PitchParams struct {
	MinGoal         *big.Int
	MaxGoal         *big.Int
	MinDurationDays uint32
	MaxDurationDays uint32
	PlatformFeeBps  uint32
	MaxRewardTiers  uint32
}

// PayoutParams governs the withdrawal scheduler.
type PayoutParams struct {
	MinPayout               *big.Int
	CooldownHours           uint32
	MaxDailyWithdrawals     uint32
	MaxDailyAmount          *big.Int
	ManualApprovalThreshold *big.Int
	PayoutDays              []int
	Location                *time.Location
}

// FromConfig validates the supplied configuration and builds the runtime
// parameter set with the given version number.
func FromConfig(cfg *config.Config, version uint64) (*Params, error) {
	if cfg == nil {
		return nil, fmt.Errorf("registry: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	params := &Params{
		Version: version,
		Fees: FeeParams{
			RatesBps:         make(map[string]uint32, len(cfg.Fees.RatesBps)),
			EcosystemFundBps: cfg.Fees.EcosystemFundBps,
		},
		Guilds: GuildParams{
			MaxMembers:         cfg.Guilds.MaxMembers,
			MinCreatorScore:    cfg.Guilds.MinCreatorScore,
			MinContributionBps: cfg.Guilds.MinContributionBps,
			MaxContributionBps: cfg.Guilds.MaxContributionBps,
		},
		Weights: score.Weights{
			Engagement:     cfg.Score.Engagement,
			Consistency:    cfg.Score.Consistency,
			Retention:      cfg.Score.Retention,
			Monetization:   cfg.Score.Monetization,
			Responsiveness: cfg.Score.Responsiveness,
			Quality:        cfg.Score.Quality,
		},
		Tiers: make(map[string]float64, len(cfg.Tiers.Multipliers)),
	}
	for txType, bps := range cfg.Fees.RatesBps {
		params.Fees.RatesBps[txType] = bps
	}
	for tier, multiplier := range cfg.Tiers.Multipliers {
		params.Tiers[tier] = multiplier
	}
	if err := params.Weights.Validate(); err != nil {
		return nil, err
	}

	minAmount, err := config.ParseAmount(cfg.Commitments.MinAmount)
	if err != nil {
		return nil, err
	}
	maxAmount, err := config.ParseAmount(cfg.Commitments.MaxAmount)
	if err != nil {
		return nil, err
	}
	durations := make(map[uint32]struct{}, len(cfg.Commitments.DurationsDays))
	for _, days := range cfg.Commitments.DurationsDays {
		durations[days] = struct{}{}
	}
	params.Commitments = CommitmentParams{
		Durations:                 durations,
		CompletionBonusBps:        cfg.Commitments.CompletionBonusBps,
		EarlyWithdrawalPenaltyBps: cfg.Commitments.EarlyWithdrawalPenaltyBps,
		MinAmount:                 minAmount,
		MaxAmount:                 maxAmount,
	}

	minGoal, err := config.ParseAmount(cfg.Pitches.MinGoal)
	if err != nil {
		return nil, err
	}
	maxGoal, err := config.ParseAmount(cfg.Pitches.MaxGoal)
	if err != nil {
		return nil, err
	}
	params.Pitches = PitchParams{
		MinGoal:         minGoal,
		MaxGoal:         maxGoal,
		MinDurationDays: cfg.Pitches.MinDurationDays,
		MaxDurationDays: cfg.Pitches.MaxDurationDays,
		PlatformFeeBps:  cfg.Pitches.PlatformFeeBps,
		MaxRewardTiers:  cfg.Pitches.MaxRewardTiers,
	}

	minPayout, err := config.ParseAmount(cfg.Payouts.MinPayout)
	if err != nil {
		return nil, err
	}
	maxDailyAmount, err := config.ParseAmount(cfg.Payouts.MaxDailyAmount)
	if err != nil {
		return nil, err
	}
	threshold, err := config.ParseAmount(cfg.Payouts.ManualApprovalThreshold)
	if err != nil {
		return nil, err
	}
	location, err := cfg.PayoutLocation()
	if err != nil {
		return nil, err
	}
	days := append([]int{}, cfg.Payouts.PayoutDays...)
	sort.Ints(days)
	params.Payouts = PayoutParams{
		MinPayout:               minPayout,
		CooldownHours:           cfg.Payouts.CooldownHours,
		MaxDailyWithdrawals:     cfg.Payouts.MaxDailyWithdrawals,
		MaxDailyAmount:          maxDailyAmount,
		ManualApprovalThreshold: threshold,
		PayoutDays:              days,
		Location:                location,
	}
	return params, nil
}

// Store publishes the live parameter version. Readers obtain an immutable
// snapshot via Current; operators replace the whole registry atomically via
// Swap, so no reader ever observes a half-updated parameter set.
type Store struct {
	current atomic.Pointer[Params]
}

// NewStore constructs a store seeded with the provided parameters.
func NewStore(params *Params) *Store {
	store := &Store{}
	if params != nil {
		store.current.Store(params)
	}
	return store
}

// Current returns the live parameter version.
func (s *Store) Current() *Params {
	if s == nil {
		return nil
	}
	return s.current.Load()
}

// Swap atomically replaces the live parameters and returns the previous
// version.
func (s *Store) Swap(params *Params) *Params {
	if s == nil || params == nil {
		return nil
	}
	return s.current.Swap(params)
}
