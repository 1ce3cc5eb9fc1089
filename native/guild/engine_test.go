package guild

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
	guilds   map[string]*Guild
	accounts map[string]*types.Account
}

func newMockState() *mockState {
	return &mockState{
		guilds:   make(map[string]*Guild),
		accounts: make(map[string]*types.Account),
	}
}

func (m *mockState) GuildGet(id string) (*Guild, bool, error) {
	record, ok := m.guilds[id]
	if !ok {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

func (m *mockState) GuildPut(record *Guild) error {
	if record == nil {
		return errors.New("nil guild")
	}
	m.guilds[record.ID] = record.Clone()
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

func newTestEngine(t *testing.T, state *mockState, mutate func(cfg *config.Config)) *Engine {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	params, err := registry.FromConfig(cfg, 1)
	if err != nil {
		t.Fatalf("build registry params: %v", err)
	}
	engine := NewEngine()
	engine.SetState(state)
	engine.SetRegistry(registry.NewStore(params))
	engine.SetNowFunc(func() int64 { return 1_000 })
	seq := 0
	engine.SetIDFunc(func() string {
		seq++
		return fmt.Sprintf("guild-%d", seq)
	})
	return engine
}

func TestCreateValidatesContributionBounds(t *testing.T) {
	engine := newTestEngine(t, newMockState(), nil)
	if _, err := engine.Create("indie collective", 50); !errors.Is(err, ErrGuildMisconfigured) {
		t.Fatalf("want ErrGuildMisconfigured below bound, got %v", err)
	}
	if _, err := engine.Create("indie collective", 2_500); !errors.Is(err, ErrGuildMisconfigured) {
		t.Fatalf("want ErrGuildMisconfigured above bound, got %v", err)
	}
	record, err := engine.Create("indie collective", 1_000)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if record.TreasuryBalance.Sign() != 0 || len(record.Members) != 0 {
		t.Fatalf("new guild must start empty: %+v", record)
	}
}

func TestAddMemberCapacity(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(t, state, func(cfg *config.Config) {
		cfg.Guilds.MaxMembers = 3
	})
	record, err := engine.Create("trio", 500)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := engine.AddMember(record.ID, fmt.Sprintf("creator-%d", i), 0.9); err != nil {
			t.Fatalf("admit member %d: %v", i, err)
		}
	}
	if _, err := engine.AddMember(record.ID, "creator-overflow", 0.9); !errors.Is(err, ErrGuildFull) {
		t.Fatalf("want ErrGuildFull, got %v", err)
	}
}

func TestAddMemberScoreGate(t *testing.T) {
	engine := newTestEngine(t, newMockState(), nil)
	record, err := engine.Create("selective", 500)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := engine.AddMember(record.ID, "rookie", 0.29); !errors.Is(err, ErrScoreTooLow) {
		t.Fatalf("want ErrScoreTooLow, got %v", err)
	}
	if _, err := engine.AddMember(record.ID, "veteran", 0.3); err != nil {
		t.Fatalf("score at threshold must be admitted: %v", err)
	}
	if _, err := engine.AddMember(record.ID, "veteran", 0.9); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("want ErrAlreadyMember, got %v", err)
	}
}

func TestContributeSplitsEarnings(t *testing.T) {
	state := newMockState()
	state.credit("member", 10_000)
	engine := newTestEngine(t, state, nil)
	record, err := engine.Create("splitters", 1_000)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := engine.AddMember(record.ID, "member", 0.5); err != nil {
		t.Fatalf("add member: %v", err)
	}

	contribution, err := engine.Contribute(record.ID, "member", big.NewInt(1_000))
	if err != nil {
		t.Fatalf("contribute failed: %v", err)
	}
	if contribution.Amount.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("unexpected split: %s", contribution.Amount)
	}
	if contribution.Remainder.Cmp(big.NewInt(900)) != 0 {
		t.Fatalf("unexpected remainder: %s", contribution.Remainder)
	}
	if state.accounts["member"].Available.Cmp(big.NewInt(9_900)) != 0 {
		t.Fatalf("member balance after split: %s", state.accounts["member"].Available)
	}
	if state.guilds[record.ID].TreasuryBalance.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("treasury after split: %s", state.guilds[record.ID].TreasuryBalance)
	}

	// The treasury only grows; a second contribution stacks on the first.
	if _, err := engine.Contribute(record.ID, "member", big.NewInt(500)); err != nil {
		t.Fatalf("second contribute failed: %v", err)
	}
	if state.guilds[record.ID].TreasuryBalance.Cmp(big.NewInt(150)) != 0 {
		t.Fatalf("treasury after second split: %s", state.guilds[record.ID].TreasuryBalance)
	}
}

func TestContributeIntegrityCheck(t *testing.T) {
	state := newMockState()
	state.credit("member", 10_000)
	engine := newTestEngine(t, state, nil)
	record, err := engine.Create("drifted", 1_000)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// Simulate a stored percent that escaped the configured bounds.
	stored := state.guilds[record.ID]
	stored.ContributionBps = 9_000
	state.guilds[record.ID] = stored

	if _, err := engine.Contribute(record.ID, "member", big.NewInt(1_000)); !errors.Is(err, ErrGuildMisconfigured) {
		t.Fatalf("want ErrGuildMisconfigured, got %v", err)
	}
	if state.accounts["member"].Available.Cmp(big.NewInt(10_000)) != 0 {
		t.Fatal("integrity failure must not move funds")
	}
}

func TestContributeValidation(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(t, state, nil)
	record, err := engine.Create("strict", 1_000)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := engine.Contribute(record.ID, "member", big.NewInt(0)); !errors.Is(err, ErrInvalidContribution) {
		t.Fatalf("want ErrInvalidContribution, got %v", err)
	}
	if _, err := engine.Contribute("missing", "member", big.NewInt(100)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := engine.Contribute(record.ID, "pauper", big.NewInt(1_000)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
}
