package registry

import (
	"math/big"
	"testing"

	"fanforge/config"
)

func TestFromConfigDefaults(t *testing.T) {
	params, err := FromConfig(config.Default(), 7)
	if err != nil {
		t.Fatalf("from config failed: %v", err)
	}
	if params.Version != 7 {
		t.Fatalf("unexpected version: %d", params.Version)
	}
	if params.Fees.RatesBps["tip"] != 1500 {
		t.Fatalf("unexpected tip rate: %d", params.Fees.RatesBps["tip"])
	}
	if _, ok := params.Commitments.Durations[30]; !ok {
		t.Fatal("duration 30 missing from membership set")
	}
	if _, ok := params.Commitments.Durations[45]; ok {
		t.Fatal("duration 45 must not be admitted")
	}
	if params.Commitments.MinAmount.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("unexpected min amount: %s", params.Commitments.MinAmount)
	}
	if params.Payouts.Location == nil {
		t.Fatal("payout location not resolved")
	}
	if len(params.Payouts.PayoutDays) != 2 || params.Payouts.PayoutDays[0] != 1 {
		t.Fatalf("payout days not sorted: %v", params.Payouts.PayoutDays)
	}
	if params.Tiers["gold"] != 1.25 {
		t.Fatalf("tier multipliers not carried: %v", params.Tiers)
	}
}

func TestFromConfigRejectsInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.Score.Quality = 0.9
	if _, err := FromConfig(cfg, 1); err == nil {
		t.Fatal("unbalanced weights must be rejected")
	}
	if _, err := FromConfig(nil, 1); err == nil {
		t.Fatal("nil config must be rejected")
	}
}

func TestStoreSwap(t *testing.T) {
	first, err := FromConfig(config.Default(), 1)
	if err != nil {
		t.Fatalf("build params: %v", err)
	}
	store := NewStore(first)
	if store.Current().Version != 1 {
		t.Fatalf("unexpected live version: %d", store.Current().Version)
	}

	second, err := FromConfig(config.Default(), 2)
	if err != nil {
		t.Fatalf("build params: %v", err)
	}
	previous := store.Swap(second)
	if previous == nil || previous.Version != 1 {
		t.Fatalf("swap did not return the prior version: %+v", previous)
	}
	if store.Current().Version != 2 {
		t.Fatalf("swap not visible: %d", store.Current().Version)
	}

	// A snapshot taken before the swap keeps serving the old version.
	snapshot := previous
	if snapshot.Fees.RatesBps["tip"] != 1500 {
		t.Fatalf("snapshot mutated: %d", snapshot.Fees.RatesBps["tip"])
	}
}
