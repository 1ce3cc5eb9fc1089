package commitment

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"fanforge/config"
	"fanforge/core/types"
	"fanforge/native/registry"
)

type mockState struct {
	commitments map[string]*Commitment
	accounts    map[string]*types.Account
}

func newMockState() *mockState {
	return &mockState{
		commitments: make(map[string]*Commitment),
		accounts:    make(map[string]*types.Account),
	}
}

func (m *mockState) CommitmentGet(id string) (*Commitment, bool, error) {
	record, ok := m.commitments[id]
	if !ok {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

func (m *mockState) CommitmentPut(record *Commitment) error {
	if record == nil {
		return errors.New("nil commitment")
	}
	m.commitments[record.ID] = record.Clone()
	return nil
}

func (m *mockState) GetAccount(id string) (*types.Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return &types.Account{ID: id}, nil
	}
	return account.Clone(), nil
}

func (m *mockState) PutAccount(id string, account *types.Account) error {
	if account == nil {
		return errors.New("nil account")
	}
	m.accounts[id] = account.Clone()
	return nil
}

func (m *mockState) credit(id string, amount int64) {
	account := types.EnsureAccount(m.accounts[id])
	account.ID = id
	account.Available = new(big.Int).Add(account.Available, big.NewInt(amount))
	m.accounts[id] = account
}

func (m *mockState) totalBalance() *big.Int {
	total := big.NewInt(0)
	for _, account := range m.accounts {
		total = total.Add(total, account.Available)
		total = total.Add(total, account.Locked)
	}
	return total
}

func newTestEngine(t *testing.T, state *mockState, now int64) *Engine {
	t.Helper()
	params, err := registry.FromConfig(config.Default(), 1)
	if err != nil {
		t.Fatalf("build registry params: %v", err)
	}
	engine := NewEngine()
	engine.SetState(state)
	engine.SetRegistry(registry.NewStore(params))
	engine.SetNowFunc(func() int64 { return now })
	seq := 0
	engine.SetIDFunc(func() string {
		seq++
		return fmt.Sprintf("commitment-%d", seq)
	})
	return engine
}

func TestCreateLocksPrincipal(t *testing.T) {
	state := newMockState()
	state.credit("alice", 5_000)
	engine := newTestEngine(t, state, 1_000)

	record, err := engine.Create("alice", big.NewInt(1_000), 30)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if record.Status != StatusActive {
		t.Fatalf("unexpected status: %v", record.Status)
	}
	if record.MaturesAt != 1_000+30*86_400 {
		t.Fatalf("unexpected maturity: %d", record.MaturesAt)
	}
	account := state.accounts["alice"]
	if account.Available.Cmp(big.NewInt(4_000)) != 0 {
		t.Fatalf("available not debited: %s", account.Available)
	}
	if account.Locked.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("locked not credited: %s", account.Locked)
	}
}

func TestCreateValidation(t *testing.T) {
	state := newMockState()
	state.credit("alice", 10_000_000)
	engine := newTestEngine(t, state, 1_000)

	cases := []struct {
		name     string
		amount   *big.Int
		duration uint32
		wantErr  error
	}{
		{"below minimum", big.NewInt(50), 30, ErrInvalidCommitmentAmount},
		{"above maximum", big.NewInt(2_000_000), 30, ErrInvalidCommitmentAmount},
		{"zero", big.NewInt(0), 30, ErrInvalidCommitmentAmount},
		{"nil", nil, 30, ErrInvalidCommitmentAmount},
		{"duration not enumerated", big.NewInt(1_000), 45, ErrInvalidCommitmentDuration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := engine.Create("alice", tc.amount, tc.duration); !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateInsufficientFunds(t *testing.T) {
	state := newMockState()
	state.credit("alice", 500)
	engine := newTestEngine(t, state, 1_000)
	if _, err := engine.Create("alice", big.NewInt(1_000), 30); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	if state.accounts["alice"].Available.Cmp(big.NewInt(500)) != 0 {
		t.Fatal("rejected create must not mutate balances")
	}
}

func TestSettleMaturityGolden(t *testing.T) {
	state := newMockState()
	state.credit("alice", 1_000)
	engine := newTestEngine(t, state, 1_000)

	record, err := engine.Create("alice", big.NewInt(1_000), 30)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	engine.SetNowFunc(func() int64 { return record.MaturesAt })
	settled, err := engine.SettleMaturity(record.ID)
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if settled.Status != StatusMatured {
		t.Fatalf("unexpected status: %v", settled.Status)
	}
	if settled.Bonus.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("unexpected bonus: %s", settled.Bonus)
	}
	account := state.accounts["alice"]
	if account.Available.Cmp(big.NewInt(1_050)) != 0 {
		t.Fatalf("available after settlement: %s", account.Available)
	}
	if account.Locked.Sign() != 0 {
		t.Fatalf("locked not released: %s", account.Locked)
	}
	if account.Bonus.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("bonus column: %s", account.Bonus)
	}
}

func TestSettleMaturityBeforeMaturity(t *testing.T) {
	state := newMockState()
	state.credit("alice", 1_000)
	engine := newTestEngine(t, state, 1_000)

	record, err := engine.Create("alice", big.NewInt(1_000), 30)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	engine.SetNowFunc(func() int64 { return record.MaturesAt - 1 })
	if _, err := engine.SettleMaturity(record.ID); !errors.Is(err, ErrNotYetMatured) {
		t.Fatalf("want ErrNotYetMatured, got %v", err)
	}
	if state.accounts["alice"].Locked.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatal("premature settlement must not release funds")
	}
}

func TestSettleMaturityIdempotence(t *testing.T) {
	state := newMockState()
	state.credit("alice", 1_000)
	engine := newTestEngine(t, state, 1_000)

	record, err := engine.Create("alice", big.NewInt(1_000), 7)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	engine.SetNowFunc(func() int64 { return record.MaturesAt })
	if _, err := engine.SettleMaturity(record.ID); err != nil {
		t.Fatalf("first settle failed: %v", err)
	}
	before := state.totalBalance()
	if _, err := engine.SettleMaturity(record.ID); !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("want ErrAlreadySettled, got %v", err)
	}
	if state.totalBalance().Cmp(before) != 0 {
		t.Fatal("repeated settlement must not credit twice")
	}
}

func TestWithdrawEarlyGolden(t *testing.T) {
	state := newMockState()
	state.credit("alice", 1_000)
	engine := newTestEngine(t, state, 1_000)
	engine.SetEcosystemFund("platform:ecosystem-fund")

	record, err := engine.Create("alice", big.NewInt(1_000), 90)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	before := state.totalBalance()

	engine.SetNowFunc(func() int64 { return record.MaturesAt - 100 })
	closed, err := engine.WithdrawEarly(record.ID)
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if closed.Status != StatusWithdrawnEarly {
		t.Fatalf("unexpected status: %v", closed.Status)
	}
	if closed.Penalty.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("unexpected penalty: %s", closed.Penalty)
	}
	account := state.accounts["alice"]
	if account.Available.Cmp(big.NewInt(900)) != 0 {
		t.Fatalf("available after early exit: %s", account.Available)
	}
	if account.Locked.Sign() != 0 {
		t.Fatalf("locked not released: %s", account.Locked)
	}
	fund := state.accounts["platform:ecosystem-fund"]
	if fund == nil || fund.Available.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("penalty not routed to ecosystem fund: %+v", fund)
	}
	if state.totalBalance().Cmp(before) != 0 {
		t.Fatal("early withdrawal must conserve total balance")
	}
}

func TestWithdrawEarlyTerminalStates(t *testing.T) {
	state := newMockState()
	state.credit("alice", 2_000)
	engine := newTestEngine(t, state, 1_000)

	record, err := engine.Create("alice", big.NewInt(1_000), 7)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Past maturity the only exit is settlement.
	engine.SetNowFunc(func() int64 { return record.MaturesAt })
	if _, err := engine.WithdrawEarly(record.ID); !errors.Is(err, ErrNotActive) {
		t.Fatalf("want ErrNotActive past maturity, got %v", err)
	}

	second, err := engine.Create("alice", big.NewInt(1_000), 7)
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	engine.SetNowFunc(func() int64 { return second.MaturesAt - 10 })
	if _, err := engine.WithdrawEarly(second.ID); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	before := state.totalBalance()
	if _, err := engine.WithdrawEarly(second.ID); !errors.Is(err, ErrNotActive) {
		t.Fatalf("want ErrNotActive on retry, got %v", err)
	}
	if state.totalBalance().Cmp(before) != 0 {
		t.Fatal("retried withdrawal must not double-credit")
	}
}

func TestGetUnknownCommitment(t *testing.T) {
	engine := newTestEngine(t, newMockState(), 1_000)
	if _, err := engine.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
