package config

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Fees.RatesBps["tip"] != 1500 {
		t.Fatalf("unexpected default tip rate: %d", cfg.Fees.RatesBps["tip"])
	}
	if cfg.Payouts.Timezone != "UTC" {
		t.Fatalf("unexpected default timezone: %s", cfg.Payouts.Timezone)
	}
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fanforge.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Guilds.MaxMembers != 20 {
		t.Fatalf("unexpected default: %d", cfg.Guilds.MaxMembers)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default file not written: %v", err)
	}
	// Reload exercises the decode path against what was written.
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if again.Commitments.MinAmount != cfg.Commitments.MinAmount {
		t.Fatal("round-tripped config diverged")
	}
}

func TestLoadFillsOmittedSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fanforge.toml")
	partial := "[fees]\nEcosystemFundBps = 200\n"
	if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Fees.EcosystemFundBps != 200 {
		t.Fatalf("explicit value overwritten: %d", cfg.Fees.EcosystemFundBps)
	}
	if cfg.Payouts.MaxDailyWithdrawals != 3 {
		t.Fatalf("omitted section not defaulted: %d", cfg.Payouts.MaxDailyWithdrawals)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(cfg *Config)
		want   string
	}{
		{"rate over 100%", func(cfg *Config) { cfg.Fees.RatesBps["tip"] = 10_001 }, "exceeds 100%"},
		{"duplicate duration", func(cfg *Config) { cfg.Commitments.DurationsDays = []uint32{30, 30} }, "duplicates"},
		{"max below min amount", func(cfg *Config) { cfg.Commitments.MaxAmount = "10" }, "below MinAmount"},
		{"payout day out of range", func(cfg *Config) { cfg.Payouts.PayoutDays = []int{0} }, "outside [1,31]"},
		{"duplicate payout day", func(cfg *Config) { cfg.Payouts.PayoutDays = []int{15, 15} }, "duplicates"},
		{"weights off balance", func(cfg *Config) { cfg.Score.Quality = 0.5 }, "sum"},
		{"negative weight", func(cfg *Config) { cfg.Score.Engagement = -0.1 }, "outside [0,1]"},
		{"bad timezone", func(cfg *Config) { cfg.Payouts.Timezone = "Mars/Olympus" }, "Timezone"},
		{"contribution bounds inverted", func(cfg *Config) {
			cfg.Guilds.MinContributionBps = 3_000
			cfg.Guilds.MaxContributionBps = 2_000
		}, "above MaxContributionBps"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation failure")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	value, err := ParseAmount(" 12345 ")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if value.Cmp(big.NewInt(12_345)) != 0 {
		t.Fatalf("unexpected value: %s", value)
	}
	if empty, err := ParseAmount(""); err != nil || empty.Sign() != 0 {
		t.Fatalf("empty amount should parse as zero: %v %v", empty, err)
	}
	if _, err := ParseAmount("12.5"); err == nil {
		t.Fatal("fractional amount must be rejected")
	}
	if _, err := ParseAmount("-5"); err == nil {
		t.Fatal("negative amount must be rejected")
	}
}

func TestLoadPayoutSchedule(t *testing.T) {
	if _, err := time.LoadLocation("America/New_York"); err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	body := "days: [28, 7, 14]\ntimezone: America/New_York\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	cfg := Default()
	if err := cfg.LoadPayoutSchedule(path); err != nil {
		t.Fatalf("load schedule failed: %v", err)
	}
	want := []int{7, 14, 28}
	if len(cfg.Payouts.PayoutDays) != len(want) {
		t.Fatalf("unexpected days: %v", cfg.Payouts.PayoutDays)
	}
	for i, day := range want {
		if cfg.Payouts.PayoutDays[i] != day {
			t.Fatalf("days not sorted: %v", cfg.Payouts.PayoutDays)
		}
	}
	if cfg.Payouts.Timezone != "America/New_York" {
		t.Fatalf("timezone not applied: %s", cfg.Payouts.Timezone)
	}
}

func TestLoadPayoutScheduleRejectsBadDays(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"empty":     "days: []\n",
		"oversized": "days: [32]\n",
		"duplicate": "days: [7, 7]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write fixture: %v", err)
			}
			cfg := Default()
			if err := cfg.LoadPayoutSchedule(path); err == nil {
				t.Fatal("expected schedule rejection")
			}
		})
	}
}
