package commitment

import (
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fanforge/core/events"
	"fanforge/core/types"
	"fanforge/native/fees"
	"fanforge/native/registry"
)

var (
	// ErrInvalidCommitmentAmount indicates the principal lies outside the
	// configured [min,max] band.
	ErrInvalidCommitmentAmount = errors.New("commitment engine: amount outside configured bounds")
	// ErrInvalidCommitmentDuration indicates the duration is not one of the
	// enumerated allowed values.
	ErrInvalidCommitmentDuration = errors.New("commitment engine: duration not in allowed set")
	// ErrInsufficientFunds indicates the owner's available balance cannot
	// cover the principal.
	ErrInsufficientFunds = errors.New("commitment engine: insufficient available balance")
	// ErrNotFound indicates the referenced commitment does not exist.
	ErrNotFound = errors.New("commitment engine: commitment not found")
	// ErrNotYetMatured indicates a settlement attempt before MaturesAt.
	ErrNotYetMatured = errors.New("commitment engine: commitment not yet matured")
	// ErrAlreadySettled indicates a repeated settlement of a matured record.
	ErrAlreadySettled = errors.New("commitment engine: commitment already settled")
	// ErrNotActive indicates the commitment left the active state and can no
	// longer be withdrawn early.
	ErrNotActive = errors.New("commitment engine: commitment not active")

	errNilState     = errors.New("commitment engine: state not configured")
	errNilRegistry  = errors.New("commitment engine: registry not configured")
	errLockedLedger = errors.New("commitment engine: locked balance below principal")
)

type engineState interface {
	CommitmentGet(id string) (*Commitment, bool, error)
	CommitmentPut(*Commitment) error
	GetAccount(id string) (*types.Account, error)
	PutAccount(id string, account *types.Account) error
}

// Engine wires the fund-commitment business logic with persistence and event
// emission. Every operation is a bounded synchronous computation; the shared
// locker turns each one into an atomic unit of work over the ledger.
type Engine struct {
	state         engineState
	registry      *registry.Store
	emitter       events.Emitter
	locker        sync.Locker
	nowFn         func() int64
	idFn          func() string
	ecosystemFund string
}

// NewEngine constructs a commitment engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn: func() int64 {
			return time.Now().Unix()
		},
		idFn: func() string { return uuid.NewString() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetRegistry configures the parameter registry consulted per operation.
func (e *Engine) SetRegistry(store *registry.Store) { e.registry = store }

// SetLocker configures the mutex held across each mutating operation. Engines
// sharing one ledger must share the locker so concurrent read-modify-write
// sequences over the same accounts serialise.
func (e *Engine) SetLocker(locker sync.Locker) { e.locker = locker }

// SetEcosystemFund configures the account credited with early-withdrawal
// penalties. When unset, penalties stay unallocated for the storage
// collaborator to route.
func (e *Engine) SetEcosystemFund(account string) {
	e.ecosystemFund = strings.TrimSpace(account)
}

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetIDFunc overrides identifier generation for deterministic testing.
func (e *Engine) SetIDFunc(id func() string) {
	if id == nil {
		e.idFn = func() string { return uuid.NewString() }
		return
	}
	e.idFn = id
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func (e *Engine) lock() func() {
	if e.locker == nil {
		return func() {}
	}
	e.locker.Lock()
	return e.locker.Unlock
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) params() (registry.CommitmentParams, error) {
	if e == nil || e.registry == nil {
		return registry.CommitmentParams{}, errNilRegistry
	}
	current := e.registry.Current()
	if current == nil {
		return registry.CommitmentParams{}, errNilRegistry
	}
	return current.Commitments, nil
}

// Create locks the principal for the requested duration. The owner's available
// balance is debited and the locked column credited by exactly the principal.
func (e *Engine) Create(owner string, amount *big.Int, durationDays uint32) (*Commitment, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	defer e.lock()()
	params, err := e.params()
	if err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidCommitmentAmount
	}
	if amount.Cmp(params.MinAmount) < 0 || amount.Cmp(params.MaxAmount) > 0 {
		return nil, ErrInvalidCommitmentAmount
	}
	if _, ok := params.Durations[durationDays]; !ok {
		return nil, ErrInvalidCommitmentDuration
	}
	account, err := e.state.GetAccount(owner)
	if err != nil {
		return nil, err
	}
	account = types.EnsureAccount(account)
	if account.Available.Cmp(amount) < 0 {
		return nil, ErrInsufficientFunds
	}
	account.Available = new(big.Int).Sub(account.Available, amount)
	account.Locked = new(big.Int).Add(account.Locked, amount)
	if err := e.state.PutAccount(owner, account); err != nil {
		return nil, err
	}
	now := e.now()
	record := &Commitment{
		ID:           e.idFn(),
		Owner:        owner,
		Principal:    new(big.Int).Set(amount),
		DurationDays: durationDays,
		CreatedAt:    now,
		MaturesAt:    now + int64(durationDays)*86_400,
		Status:       StatusActive,
	}
	if err := e.state.CommitmentPut(record); err != nil {
		return nil, err
	}
	e.emit(CreatedEvent(record.ID, record.Owner, record.Principal.String(), record.DurationDays, record.MaturesAt))
	return record.Clone(), nil
}

// SettleMaturity releases a matured commitment back to the owner's available
// balance along with the completion bonus. The bonus is tracked in the
// account's bonus column for reporting; the locked column decreases by exactly
// the original principal. Settling an already-matured record fails with
// ErrAlreadySettled and performs no balance change.
func (e *Engine) SettleMaturity(id string) (*Commitment, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	defer e.lock()()
	params, err := e.params()
	if err != nil {
		return nil, err
	}
	record, ok, err := e.state.CommitmentGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || record == nil {
		return nil, ErrNotFound
	}
	switch record.Status {
	case StatusMatured:
		return nil, ErrAlreadySettled
	case StatusWithdrawnEarly:
		return nil, ErrNotActive
	}
	now := e.now()
	if now < record.MaturesAt {
		return nil, ErrNotYetMatured
	}
	bonus := bpsShare(record.Principal, params.CompletionBonusBps)
	account, err := e.state.GetAccount(record.Owner)
	if err != nil {
		return nil, err
	}
	account = types.EnsureAccount(account)
	if account.Locked.Cmp(record.Principal) < 0 {
		return nil, errLockedLedger
	}
	account.Locked = new(big.Int).Sub(account.Locked, record.Principal)
	account.Available = new(big.Int).Add(account.Available, new(big.Int).Add(record.Principal, bonus))
	account.Bonus = new(big.Int).Add(account.Bonus, bonus)
	if err := e.state.PutAccount(record.Owner, account); err != nil {
		return nil, err
	}
	record.Status = StatusMatured
	record.ClosedAt = now
	record.Bonus = bonus
	if err := e.state.CommitmentPut(record); err != nil {
		return nil, err
	}
	e.emit(MaturedEvent(record.ID, record.Owner, record.Principal.String(), bonus.String()))
	return record.Clone(), nil
}

// WithdrawEarly exits an active commitment before maturity. The owner receives
// the principal minus the penalty; the penalty routes to the configured
// ecosystem fund. Terminal records fail with ErrNotActive, so a retried
// withdrawal never double-credits.
func (e *Engine) WithdrawEarly(id string) (*Commitment, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	defer e.lock()()
	params, err := e.params()
	if err != nil {
		return nil, err
	}
	record, ok, err := e.state.CommitmentGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || record == nil {
		return nil, ErrNotFound
	}
	if record.Status != StatusActive {
		return nil, ErrNotActive
	}
	now := e.now()
	if now >= record.MaturesAt {
		// Past maturity the commitment must settle; the penalty path is closed.
		return nil, ErrNotActive
	}
	penalty := bpsShare(record.Principal, params.EarlyWithdrawalPenaltyBps)
	returned := new(big.Int).Sub(record.Principal, penalty)
	account, err := e.state.GetAccount(record.Owner)
	if err != nil {
		return nil, err
	}
	account = types.EnsureAccount(account)
	if account.Locked.Cmp(record.Principal) < 0 {
		return nil, errLockedLedger
	}
	account.Locked = new(big.Int).Sub(account.Locked, record.Principal)
	account.Available = new(big.Int).Add(account.Available, returned)
	if err := e.state.PutAccount(record.Owner, account); err != nil {
		return nil, err
	}
	if e.ecosystemFund != "" && penalty.Sign() > 0 {
		fund, err := e.state.GetAccount(e.ecosystemFund)
		if err != nil {
			return nil, err
		}
		fund = types.EnsureAccount(fund)
		fund.Available = new(big.Int).Add(fund.Available, penalty)
		if err := e.state.PutAccount(e.ecosystemFund, fund); err != nil {
			return nil, err
		}
	}
	record.Status = StatusWithdrawnEarly
	record.ClosedAt = now
	record.Penalty = penalty
	if err := e.state.CommitmentPut(record); err != nil {
		return nil, err
	}
	e.emit(WithdrawnEarlyEvent(record.ID, record.Owner, returned.String(), penalty.String()))
	return record.Clone(), nil
}

// Get returns the commitment record without mutating state.
func (e *Engine) Get(id string) (*Commitment, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, ok, err := e.state.CommitmentGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || record == nil {
		return nil, ErrNotFound
	}
	return record.Clone(), nil
}

func bpsShare(amount *big.Int, bps uint32) *big.Int {
	if amount == nil || bps == 0 {
		return big.NewInt(0)
	}
	share := new(big.Int).Mul(amount, big.NewInt(int64(bps)))
	return share.Div(share, big.NewInt(fees.BpsDenominator))
}
