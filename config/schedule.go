package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// PayoutLocation resolves the platform reference timezone used for the
// scheduler's calendar-day boundaries.
func (c *Config) PayoutLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Payouts.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: payouts.Timezone %q: %w", c.Payouts.Timezone, err)
	}
	return loc, nil
}

// scheduleFile mirrors the YAML representation of an operator payout-schedule
// override.
type scheduleFile struct {
	Days     []int  `yaml:"days"`
	Timezone string `yaml:"timezone"`
}

// LoadPayoutSchedule reads a payout-day override from the provided YAML file
// and applies it to the configuration. Operators use this to shift release
// days without redeploying the full parameter set.
func (c *Config) LoadPayoutSchedule(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open payout schedule: %w", err)
	}
	defer file.Close()
	var entry scheduleFile
	if err := yaml.NewDecoder(file).Decode(&entry); err != nil {
		return fmt.Errorf("config: decode payout schedule: %w", err)
	}
	if len(entry.Days) == 0 {
		return fmt.Errorf("config: payout schedule must list at least one day")
	}
	seen := make(map[int]struct{}, len(entry.Days))
	days := make([]int, 0, len(entry.Days))
	for _, day := range entry.Days {
		if day < 1 || day > 31 {
			return fmt.Errorf("config: payout schedule day %d outside [1,31]", day)
		}
		if _, dup := seen[day]; dup {
			return fmt.Errorf("config: payout schedule duplicates day %d", day)
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Ints(days)
	c.Payouts.PayoutDays = days
	if entry.Timezone != "" {
		c.Payouts.Timezone = entry.Timezone
		if _, err := c.PayoutLocation(); err != nil {
			return err
		}
	}
	return nil
}
