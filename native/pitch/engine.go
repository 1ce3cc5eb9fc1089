package pitch

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
	// ErrInvalidGoal indicates the goal lies outside the configured bounds.
	ErrInvalidGoal = errors.New("pitch engine: goal outside configured bounds")
	// ErrInvalidDuration indicates the funding window length is out of bounds.
	ErrInvalidDuration = errors.New("pitch engine: duration outside configured bounds")
	// ErrTooManyRewardTiers indicates the tier count exceeds the maximum.
	ErrTooManyRewardTiers = errors.New("pitch engine: reward tier count exceeds maximum")
	// ErrPitchNotFunding indicates the campaign is closed or outside its window.
	ErrPitchNotFunding = errors.New("pitch engine: pitch not accepting contributions")
	// ErrInvalidAmount indicates a non-positive pledge.
	ErrInvalidAmount = errors.New("pitch engine: amount must be positive")
	// ErrWindowStillOpen indicates a close attempt before the window end.
	ErrWindowStillOpen = errors.New("pitch engine: funding window still open")
	// ErrNotSucceeded indicates delivery confirmation on a non-succeeded pitch.
	ErrNotSucceeded = errors.New("pitch engine: pitch has not succeeded")
	// ErrNotFound indicates the referenced pitch does not exist.
	ErrNotFound = errors.New("pitch engine: pitch not found")
	// ErrInsufficientFunds indicates the backer cannot cover the pledge.
	ErrInsufficientFunds = errors.New("pitch engine: insufficient backer balance")

	errNilState    = errors.New("pitch engine: state not configured")
	errNilRegistry = errors.New("pitch engine: registry not configured")
)

type engineState interface {
	PitchGet(id string) (*Pitch, bool, error)
	PitchPut(*Pitch) error
	GetAccount(id string) (*types.Account, error)
	PutAccount(id string, account *types.Account) error
}

// Engine wires crowdfunding business logic with persistence and event
// emission.
type Engine struct {
	state            engineState
	registry         *registry.Store
	emitter          events.Emitter
	locker           sync.Locker
	nowFn            func() int64
	idFn             func() string
	platformTreasury string
}

// NewEngine constructs a pitch engine with default dependencies.
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

// SetPlatformTreasury configures the account credited with campaign fees when
// a pitch succeeds.
func (e *Engine) SetPlatformTreasury(account string) {
	e.platformTreasury = strings.TrimSpace(account)
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

func (e *Engine) params() (registry.PitchParams, error) {
	if e == nil || e.registry == nil {
		return registry.PitchParams{}, errNilRegistry
	}
	current := e.registry.Current()
	if current == nil {
		return registry.PitchParams{}, errNilRegistry
	}
	return current.Pitches, nil
}

// Create validates the campaign bounds and opens the funding window.
func (e *Engine) Create(creator, title string, goal *big.Int, durationDays uint32, rewardTiers uint32) (*Pitch, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	defer e.lock()()
	params, err := e.params()
	if err != nil {
		return nil, err
	}
	if goal == nil || goal.Sign() <= 0 || goal.Cmp(params.MinGoal) < 0 || goal.Cmp(params.MaxGoal) > 0 {
		return nil, ErrInvalidGoal
	}
	if durationDays < params.MinDurationDays || durationDays > params.MaxDurationDays {
		return nil, ErrInvalidDuration
	}
	if rewardTiers > params.MaxRewardTiers {
		return nil, ErrTooManyRewardTiers
	}
	now := e.now()
	record := &Pitch{
		ID:            e.idFn(),
		Creator:       creator,
		Title:         strings.TrimSpace(title),
		Goal:          new(big.Int).Set(goal),
		Accumulated:   big.NewInt(0),
		FeeAccrued:    big.NewInt(0),
		RewardTiers:   rewardTiers,
		StartAt:       now,
		EndAt:         now + int64(durationDays)*86_400,
		Status:        StatusFunding,
		Contributions: []Contribution{},
	}
	if err := e.state.PitchPut(record); err != nil {
		return nil, err
	}
	e.emit(CreatedEvent(record.ID, record.Creator, record.Goal.String(), record.EndAt))
	return record.Clone(), nil
}

// Contribute records a backer pledge. The campaign is credited with the gross
// amount — backers see their full pledge on the tally — while the platform fee
// accrues against the creator's eventual payout. This is the one place the fee
// direction reverses relative to tips and subscriptions, which deduct the fee
// from the gross before the creator is credited.
func (e *Engine) Contribute(pitchID, backer string, amount *big.Int) (*Pitch, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	defer e.lock()()
	params, err := e.params()
	if err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	record, ok, err := e.state.PitchGet(pitchID)
	if err != nil {
		return nil, err
	}
	if !ok || record == nil {
		return nil, ErrNotFound
	}
	now := e.now()
	if record.Status != StatusFunding || now < record.StartAt || now >= record.EndAt {
		return nil, ErrPitchNotFunding
	}
	account, err := e.state.GetAccount(backer)
	if err != nil {
		return nil, err
	}
	account = types.EnsureAccount(account)
	if account.Available.Cmp(amount) < 0 {
		return nil, ErrInsufficientFunds
	}
	account.Available = new(big.Int).Sub(account.Available, amount)
	if err := e.state.PutAccount(backer, account); err != nil {
		return nil, err
	}
	fee := new(big.Int).Mul(amount, big.NewInt(int64(params.PlatformFeeBps)))
	fee = fee.Div(fee, big.NewInt(fees.BpsDenominator))
	record.Accumulated = new(big.Int).Add(record.Accumulated, amount)
	record.FeeAccrued = new(big.Int).Add(record.FeeAccrued, fee)
	record.Contributions = append(record.Contributions, Contribution{
		Backer:   backer,
		Amount:   new(big.Int).Set(amount),
		PledgeAt: now,
	})
	if err := e.state.PitchPut(record); err != nil {
		return nil, err
	}
	e.emit(ContributedEvent(record.ID, backer, amount.String(), record.Accumulated.String()))
	return record.Clone(), nil
}

// CloseWindow settles the campaign exactly once after the window ends. A
// succeeded pitch credits the creator with the accumulated pledges minus the
// accrued fee, routing the fee to the platform treasury; a failed pitch
// refunds every recorded pledge. Calling again once the status has left
// funding returns the record unchanged.
func (e *Engine) CloseWindow(pitchID string) (*Pitch, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	defer e.lock()()
	record, ok, err := e.state.PitchGet(pitchID)
	if err != nil {
		return nil, err
	}
	if !ok || record == nil {
		return nil, ErrNotFound
	}
	if record.Status != StatusFunding {
		return record.Clone(), nil
	}
	now := e.now()
	if now < record.EndAt {
		return nil, ErrWindowStillOpen
	}
	if record.Accumulated.Cmp(record.Goal) >= 0 {
		if err := e.settleSuccess(record); err != nil {
			return nil, err
		}
		record.Status = StatusSucceeded
	} else {
		if err := e.refundBackers(record); err != nil {
			return nil, err
		}
		record.Status = StatusFailed
	}
	record.ClosedAt = now
	if err := e.state.PitchPut(record); err != nil {
		return nil, err
	}
	e.emit(ClosedEvent(record.ID, record.Status.String(), record.Accumulated.String(), record.Goal.String(), record.FeeAccrued.String()))
	return record.Clone(), nil
}

func (e *Engine) settleSuccess(record *Pitch) error {
	payout := new(big.Int).Sub(record.Accumulated, record.FeeAccrued)
	creator, err := e.state.GetAccount(record.Creator)
	if err != nil {
		return err
	}
	creator = types.EnsureAccount(creator)
	creator.Available = new(big.Int).Add(creator.Available, payout)
	if err := e.state.PutAccount(record.Creator, creator); err != nil {
		return err
	}
	if e.platformTreasury != "" && record.FeeAccrued.Sign() > 0 {
		treasury, err := e.state.GetAccount(e.platformTreasury)
		if err != nil {
			return err
		}
		treasury = types.EnsureAccount(treasury)
		treasury.Available = new(big.Int).Add(treasury.Available, record.FeeAccrued)
		if err := e.state.PutAccount(e.platformTreasury, treasury); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) refundBackers(record *Pitch) error {
	for _, pledge := range record.Contributions {
		backer, err := e.state.GetAccount(pledge.Backer)
		if err != nil {
			return err
		}
		backer = types.EnsureAccount(backer)
		backer.Available = new(big.Int).Add(backer.Available, pledge.Amount)
		if err := e.state.PutAccount(pledge.Backer, backer); err != nil {
			return err
		}
	}
	return nil
}

// ConfirmDelivery moves a succeeded campaign to delivered.
func (e *Engine) ConfirmDelivery(pitchID string) (*Pitch, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	defer e.lock()()
	record, ok, err := e.state.PitchGet(pitchID)
	if err != nil {
		return nil, err
	}
	if !ok || record == nil {
		return nil, ErrNotFound
	}
	if record.Status != StatusSucceeded {
		return nil, ErrNotSucceeded
	}
	record.Status = StatusDelivered
	if err := e.state.PitchPut(record); err != nil {
		return nil, err
	}
	e.emit(DeliveredEvent(record.ID, record.Creator))
	return record.Clone(), nil
}

// Get returns the pitch record without mutating state.
func (e *Engine) Get(id string) (*Pitch, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, ok, err := e.state.PitchGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || record == nil {
		return nil, ErrNotFound
	}
	return record.Clone(), nil
}
