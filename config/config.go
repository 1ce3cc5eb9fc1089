package config

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config mirrors the on-disk TOML representation of the platform economics
// parameters. Amount fields are textual base-unit integers so operators can
// express FanCoin quantities without floating point drift.
type Config struct {
	Fees        FeesConfig       `toml:"fees"`
	Commitments CommitmentConfig `toml:"commitments"`
	Guilds      GuildConfig      `toml:"guilds"`
	Pitches     PitchConfig      `toml:"pitches"`
	Payouts     PayoutConfig     `toml:"payouts"`
	Score       ScoreConfig      `toml:"score"`
	Tiers       TierConfig       `toml:"tiers"`
}

// FeesConfig captures the platform commission table expressed in basis points.
type FeesConfig struct {
	RatesBps         map[string]uint32 `toml:"RatesBps"`
	EcosystemFundBps uint32            `toml:"EcosystemFundBps"`
}

// CommitmentConfig governs the fund-commitment ledger.
type CommitmentConfig struct {
	DurationsDays             []uint32 `toml:"DurationsDays"`
	CompletionBonusBps        uint32   `toml:"CompletionBonusBps"`
	EarlyWithdrawalPenaltyBps uint32   `toml:"EarlyWithdrawalPenaltyBps"`
	MinAmount                 string   `toml:"MinAmount"`
	MaxAmount                 string   `toml:"MaxAmount"`
}

// GuildConfig bounds guild membership and treasury contributions.
type GuildConfig struct {
	MaxMembers         uint32  `toml:"MaxMembers"`
	MinCreatorScore    float64 `toml:"MinCreatorScore"`
	MinContributionBps uint32  `toml:"MinContributionBps"`
	MaxContributionBps uint32  `toml:"MaxContributionBps"`
}

// PitchConfig bounds crowdfunding campaign creation.
type PitchConfig struct {
	MinGoal         string `toml:"MinGoal"`
	MaxGoal         string `toml:"MaxGoal"`
	MinDurationDays uint32 `toml:"MinDurationDays"`
	MaxDurationDays uint32 `toml:"MaxDurationDays"`
	PlatformFeeBps  uint32 `toml:"PlatformFeeBps"`
	MaxRewardTiers  uint32 `toml:"MaxRewardTiers"`
}

// PayoutConfig governs the withdrawal scheduler.
type PayoutConfig struct {
	MinPayout               string `toml:"MinPayout"`
	CooldownHours           uint32 `toml:"CooldownHours"`
	MaxDailyWithdrawals     uint32 `toml:"MaxDailyWithdrawals"`
	MaxDailyAmount          string `toml:"MaxDailyAmount"`
	ManualApprovalThreshold string `toml:"ManualApprovalThreshold"`
	PayoutDays              []int  `toml:"PayoutDays"`
	Timezone                string `toml:"Timezone"`
}

// ScoreConfig holds the creator score weights. The six weights must sum to 1.0.
type ScoreConfig struct {
	Engagement     float64 `toml:"Engagement"`
	Consistency    float64 `toml:"Consistency"`
	Retention      float64 `toml:"Retention"`
	Monetization   float64 `toml:"Monetization"`
	Responsiveness float64 `toml:"Responsiveness"`
	Quality        float64 `toml:"Quality"`
}

// TierConfig exposes the fan-tier spending-power multipliers. The core never
// mutates these; they are carried for the display layer.
type TierConfig struct {
	Multipliers map[string]float64 `toml:"Multipliers"`
}

// Load reads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in parameter set used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if len(c.Fees.RatesBps) == 0 {
		c.Fees.RatesBps = map[string]uint32{
			"tip":                1500,
			"subscription":       1500,
			"ppv":                1500,
			"pitch_contribution": 500,
		}
	}
	if c.Fees.EcosystemFundBps == 0 {
		c.Fees.EcosystemFundBps = 100
	}
	if len(c.Commitments.DurationsDays) == 0 {
		c.Commitments.DurationsDays = []uint32{7, 30, 90, 180}
	}
	if c.Commitments.CompletionBonusBps == 0 {
		c.Commitments.CompletionBonusBps = 500
	}
	if c.Commitments.EarlyWithdrawalPenaltyBps == 0 {
		c.Commitments.EarlyWithdrawalPenaltyBps = 1000
	}
	if strings.TrimSpace(c.Commitments.MinAmount) == "" {
		c.Commitments.MinAmount = "100"
	}
	if strings.TrimSpace(c.Commitments.MaxAmount) == "" {
		c.Commitments.MaxAmount = "1000000"
	}
	if c.Guilds.MaxMembers == 0 {
		c.Guilds.MaxMembers = 20
	}
	if c.Guilds.MinCreatorScore == 0 {
		c.Guilds.MinCreatorScore = 0.3
	}
	if c.Guilds.MinContributionBps == 0 {
		c.Guilds.MinContributionBps = 100
	}
	if c.Guilds.MaxContributionBps == 0 {
		c.Guilds.MaxContributionBps = 2000
	}
	if strings.TrimSpace(c.Pitches.MinGoal) == "" {
		c.Pitches.MinGoal = "1000"
	}
	if strings.TrimSpace(c.Pitches.MaxGoal) == "" {
		c.Pitches.MaxGoal = "10000000"
	}
	if c.Pitches.MinDurationDays == 0 {
		c.Pitches.MinDurationDays = 7
	}
	if c.Pitches.MaxDurationDays == 0 {
		c.Pitches.MaxDurationDays = 90
	}
	if c.Pitches.PlatformFeeBps == 0 {
		c.Pitches.PlatformFeeBps = 500
	}
	if c.Pitches.MaxRewardTiers == 0 {
		c.Pitches.MaxRewardTiers = 10
	}
	if strings.TrimSpace(c.Payouts.MinPayout) == "" {
		c.Payouts.MinPayout = "50"
	}
	if c.Payouts.CooldownHours == 0 {
		c.Payouts.CooldownHours = 24
	}
	if c.Payouts.MaxDailyWithdrawals == 0 {
		c.Payouts.MaxDailyWithdrawals = 3
	}
	if strings.TrimSpace(c.Payouts.MaxDailyAmount) == "" {
		c.Payouts.MaxDailyAmount = "100000"
	}
	if strings.TrimSpace(c.Payouts.ManualApprovalThreshold) == "" {
		c.Payouts.ManualApprovalThreshold = "50000"
	}
	if len(c.Payouts.PayoutDays) == 0 {
		c.Payouts.PayoutDays = []int{1, 15}
	}
	if strings.TrimSpace(c.Payouts.Timezone) == "" {
		c.Payouts.Timezone = "UTC"
	}
	zero := ScoreConfig{}
	if c.Score == zero {
		c.Score = ScoreConfig{
			Engagement:     0.25,
			Consistency:    0.15,
			Retention:      0.20,
			Monetization:   0.20,
			Responsiveness: 0.10,
			Quality:        0.10,
		}
	}
	if len(c.Tiers.Multipliers) == 0 {
		c.Tiers.Multipliers = map[string]float64{
			"bronze":  1.0,
			"silver":  1.1,
			"gold":    1.25,
			"diamond": 1.5,
		}
	}
}

func createDefault(path string) (*Config, error) {
	cfg := Default()
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("config: create default %s: %w", path, err)
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return nil, fmt.Errorf("config: encode default %s: %w", path, err)
	}
	return cfg, nil
}

// ParseAmount interprets a textual base-unit amount into a big integer.
func ParseAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("config: invalid integer amount %q", raw)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("config: amount must be non-negative")
	}
	return value, nil
}
