package types

import "math/big"

// Account tracks the FanCoin position for a single platform account. Available
// funds can be spent or withdrawn; Locked mirrors the sum of active commitment
// principals; Bonus records how much of the available balance was credited as
// commitment completion bonus, kept for reporting.
type Account struct {
	ID        string   `json:"id"`
	Available *big.Int `json:"available"`
	Locked    *big.Int `json:"locked"`
	Bonus     *big.Int `json:"bonus"`
}

// Clone returns a deep copy of the account so callers can mutate the copy
// without affecting the stored instance.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	if a.Available != nil {
		clone.Available = new(big.Int).Set(a.Available)
	}
	if a.Locked != nil {
		clone.Locked = new(big.Int).Set(a.Locked)
	}
	if a.Bonus != nil {
		clone.Bonus = new(big.Int).Set(a.Bonus)
	}
	return &clone
}

// EnsureAccount normalises nil accounts and nil balance fields so engines can
// operate without per-field guards.
func EnsureAccount(acc *Account) *Account {
	if acc == nil {
		return &Account{Available: big.NewInt(0), Locked: big.NewInt(0), Bonus: big.NewInt(0)}
	}
	if acc.Available == nil {
		acc.Available = big.NewInt(0)
	}
	if acc.Locked == nil {
		acc.Locked = big.NewInt(0)
	}
	if acc.Bonus == nil {
		acc.Bonus = big.NewInt(0)
	}
	return acc
}
