package payout

import (
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"fanforge/core/events"
	"fanforge/core/types"
	"fanforge/native/registry"
)

var (
	// ErrInvalidAmount indicates a nil or non-positive withdrawal amount.
	ErrInvalidAmount = errors.New("payout engine: amount must be positive")
	// ErrBelowMinimumPayout indicates the amount is under the payout floor.
	ErrBelowMinimumPayout = errors.New("payout engine: amount below minimum payout")
	// ErrCooldownActive indicates the cooldown window has not elapsed.
	ErrCooldownActive = errors.New("payout engine: withdrawal cooldown active")
	// ErrDailyCountExceeded indicates today's request count is exhausted.
	ErrDailyCountExceeded = errors.New("payout engine: daily withdrawal count exceeded")
	// ErrDailyAmountExceeded indicates today's amount allowance is exhausted.
	ErrDailyAmountExceeded = errors.New("payout engine: daily withdrawal amount exceeded")
	// ErrInsufficientFunds indicates the available balance cannot cover the
	// reservation.
	ErrInsufficientFunds = errors.New("payout engine: insufficient available balance")
	// ErrNotFound indicates the referenced request does not exist.
	ErrNotFound = errors.New("payout engine: request not found")
	// ErrNotPending indicates an approval on a non-pending request.
	ErrNotPending = errors.New("payout engine: request not pending approval")

	errNilState    = errors.New("payout engine: state not configured")
	errNilRegistry = errors.New("payout engine: registry not configured")
)

type engineState interface {
	PayoutRequestGet(id string) (*Request, bool, error)
	PayoutRequestPut(*Request) error
	PayoutWindowGet(account, day string) (*WindowState, bool, error)
	PayoutWindowPut(*WindowState) error
	LastWithdrawalGet(account string) (int64, bool, error)
	LastWithdrawalPut(account string, ts int64) error
	GetAccount(id string) (*types.Account, error)
	PutAccount(id string, account *types.Account) error
}

// Engine gatekeeps withdrawal requests against the configured cooldown, daily
// caps and minimum payout, and assigns accepted requests to the next payout
// window. All time comparisons run against the engine clock in the platform
// reference timezone, never an implicit wall clock inside the checks.
type Engine struct {
	state    engineState
	registry *registry.Store
	emitter  events.Emitter
	locker   sync.Locker
	nowFn    func() time.Time
	idFn     func() string
}

// NewEngine constructs a payout engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   time.Now,
		idFn:    func() string { return uuid.NewString() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetRegistry configures the parameter registry consulted per operation.
func (e *Engine) SetRegistry(store *registry.Store) { e.registry = store }

// SetLocker configures the mutex held across each mutating operation. Engines
// sharing one ledger must share the locker so concurrent read-modify-write
// sequences over the same accounts and counters serialise.
func (e *Engine) SetLocker(locker sync.Locker) { e.locker = locker }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() time.Time) {
	if now == nil {
		e.nowFn = time.Now
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

func (e *Engine) now() time.Time {
	if e == nil || e.nowFn == nil {
		return time.Now()
	}
	return e.nowFn()
}

func (e *Engine) params() (registry.PayoutParams, error) {
	if e == nil || e.registry == nil {
		return registry.PayoutParams{}, errNilRegistry
	}
	current := e.registry.Current()
	if current == nil {
		return registry.PayoutParams{}, errNilRegistry
	}
	return current.Payouts, nil
}

// RequestWithdrawal runs the gate checks in order (minimum payout, cooldown,
// daily count, daily amount), reserves the funds, and either schedules the
// request for the next payout day or parks it pending manual approval when the
// amount reaches the configured threshold. Counters update only on acceptance.
func (e *Engine) RequestWithdrawal(account string, amount *big.Int) (*Request, error) {
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
	if amount.Cmp(params.MinPayout) < 0 {
		return nil, ErrBelowMinimumPayout
	}
	now := e.now()
	if params.CooldownHours > 0 {
		last, ok, err := e.state.LastWithdrawalGet(account)
		if err != nil {
			return nil, err
		}
		if ok {
			cooldown := time.Duration(params.CooldownHours) * time.Hour
			if now.Sub(time.Unix(last, 0)) < cooldown {
				return nil, ErrCooldownActive
			}
		}
	}
	day := WithdrawDay(now, params.Location)
	window, ok, err := e.state.PayoutWindowGet(account, day)
	if err != nil {
		return nil, err
	}
	if !ok || window == nil {
		window = &WindowState{Account: account, Day: day, Amount: big.NewInt(0)}
	}
	if window.Amount == nil {
		window.Amount = big.NewInt(0)
	}
	if window.Count >= params.MaxDailyWithdrawals {
		return nil, ErrDailyCountExceeded
	}
	projected := new(big.Int).Add(window.Amount, amount)
	if params.MaxDailyAmount.Sign() > 0 && projected.Cmp(params.MaxDailyAmount) > 0 {
		return nil, ErrDailyAmountExceeded
	}
	holder, err := e.state.GetAccount(account)
	if err != nil {
		return nil, err
	}
	holder = types.EnsureAccount(holder)
	if holder.Available.Cmp(amount) < 0 {
		return nil, ErrInsufficientFunds
	}
	holder.Available = new(big.Int).Sub(holder.Available, amount)
	if err := e.state.PutAccount(account, holder); err != nil {
		return nil, err
	}
	request := &Request{
		ID:          e.idFn(),
		Owner:       account,
		Amount:      new(big.Int).Set(amount),
		RequestedAt: now.Unix(),
	}
	if params.ManualApprovalThreshold.Sign() > 0 && amount.Cmp(params.ManualApprovalThreshold) >= 0 {
		request.Status = StatusPending
	} else {
		request.Status = StatusScheduled
		request.ScheduledFor = NextPayoutDay(now, params.PayoutDays, params.Location).Unix()
	}
	if err := e.state.PayoutRequestPut(request); err != nil {
		return nil, err
	}
	window.Count++
	window.Amount = projected
	if err := e.state.PayoutWindowPut(window); err != nil {
		return nil, err
	}
	if err := e.state.LastWithdrawalPut(account, now.Unix()); err != nil {
		return nil, err
	}
	e.emit(RequestedEvent(request.ID, request.Owner, request.Amount.String(), request.Status.String(), request.ScheduledFor))
	return request.Clone(), nil
}

// Approve moves a pending request into the next payout window. This is the
// manual-approval collaborator surface for requests over the threshold.
func (e *Engine) Approve(requestID string) (*Request, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	defer e.lock()()
	params, err := e.params()
	if err != nil {
		return nil, err
	}
	request, ok, err := e.state.PayoutRequestGet(requestID)
	if err != nil {
		return nil, err
	}
	if !ok || request == nil {
		return nil, ErrNotFound
	}
	if request.Status != StatusPending {
		return nil, ErrNotPending
	}
	request.Status = StatusScheduled
	request.ScheduledFor = NextPayoutDay(e.now(), params.PayoutDays, params.Location).Unix()
	if err := e.state.PayoutRequestPut(request); err != nil {
		return nil, err
	}
	e.emit(ApprovedEvent(request.ID, request.Owner, request.ScheduledFor))
	return request.Clone(), nil
}

// Get returns the payout request without mutating state.
func (e *Engine) Get(id string) (*Request, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	request, ok, err := e.state.PayoutRequestGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || request == nil {
		return nil, ErrNotFound
	}
	return request.Clone(), nil
}

// NextPayoutDay picks the soonest configured calendar day at or after the
// supplied instant, wrapping to later months when none remain. Days a month
// does not contain (e.g. the 31st in February) are skipped rather than
// clamped. The result is local midnight in the reference timezone.
func NextPayoutDay(now time.Time, days []int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	year, month, today := local.Date()
	for offset := 0; offset < 12; offset++ {
		candidateMonth := time.Date(year, month, 1, 0, 0, 0, 0, loc).AddDate(0, offset, 0)
		for _, day := range days {
			candidate := time.Date(candidateMonth.Year(), candidateMonth.Month(), day, 0, 0, 0, 0, loc)
			if candidate.Day() != day {
				continue
			}
			if offset == 0 && day < today {
				continue
			}
			return candidate
		}
	}
	// Unreachable with validated config: every [1,28] day exists each month.
	return local
}
