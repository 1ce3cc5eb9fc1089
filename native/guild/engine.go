package guild

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
	// ErrGuildFull indicates the guild already holds the maximum member count.
	ErrGuildFull = errors.New("guild engine: guild at member capacity")
	// ErrScoreTooLow indicates the joining creator's score is below the bar.
	ErrScoreTooLow = errors.New("guild engine: creator score below minimum")
	// ErrGuildMisconfigured indicates the stored contribution percent escaped
	// its configured bounds. This is a configuration-integrity violation, not
	// a user error, and callers should log it at error severity.
	ErrGuildMisconfigured = errors.New("guild engine: contribution percent outside configured bounds")
	// ErrInvalidContribution indicates a non-positive earnings amount.
	ErrInvalidContribution = errors.New("guild engine: earnings must be positive")
	// ErrNotFound indicates the referenced guild does not exist.
	ErrNotFound = errors.New("guild engine: guild not found")
	// ErrAlreadyMember indicates the creator already belongs to the guild.
	ErrAlreadyMember = errors.New("guild engine: creator already a member")
	// ErrInsufficientFunds indicates the member cannot cover the split.
	ErrInsufficientFunds = errors.New("guild engine: insufficient member balance")

	errNilState    = errors.New("guild engine: state not configured")
	errNilRegistry = errors.New("guild engine: registry not configured")
)

type engineState interface {
	GuildGet(id string) (*Guild, bool, error)
	GuildPut(*Guild) error
	GetAccount(id string) (*types.Account, error)
	PutAccount(id string, account *types.Account) error
}

// Engine wires guild treasury business logic with persistence and event
// emission. A contribution touches both the member account and the guild row;
// the shared locker applies the pair as one atomic unit.
type Engine struct {
	state    engineState
	registry *registry.Store
	emitter  events.Emitter
	locker   sync.Locker
	nowFn    func() int64
	idFn     func() string
}

// NewEngine constructs a guild engine with default dependencies.
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

func (e *Engine) params() (registry.GuildParams, error) {
	if e == nil || e.registry == nil {
		return registry.GuildParams{}, errNilRegistry
	}
	current := e.registry.Current()
	if current == nil {
		return registry.GuildParams{}, errNilRegistry
	}
	return current.Guilds, nil
}

// Create registers a new guild. The contribution percent is validated against
// the configured bounds here, at configuration time, so contribution calls can
// treat an out-of-bound stored value as an integrity violation.
func (e *Engine) Create(name string, contributionBps uint32) (*Guild, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	defer e.lock()()
	params, err := e.params()
	if err != nil {
		return nil, err
	}
	if contributionBps < params.MinContributionBps || contributionBps > params.MaxContributionBps {
		return nil, ErrGuildMisconfigured
	}
	record := &Guild{
		ID:              e.idFn(),
		Name:            strings.TrimSpace(name),
		Members:         []string{},
		ContributionBps: contributionBps,
		TreasuryBalance: big.NewInt(0),
		CreatedAt:       e.now(),
	}
	if err := e.state.GuildPut(record); err != nil {
		return nil, err
	}
	e.emit(CreatedEvent(record.ID, record.Name, record.ContributionBps))
	return record.Clone(), nil
}

// Configure updates the guild's contribution percent, enforcing the configured
// bounds at write time.
func (e *Engine) Configure(guildID string, contributionBps uint32) (*Guild, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	defer e.lock()()
	params, err := e.params()
	if err != nil {
		return nil, err
	}
	if contributionBps < params.MinContributionBps || contributionBps > params.MaxContributionBps {
		return nil, ErrGuildMisconfigured
	}
	record, ok, err := e.state.GuildGet(guildID)
	if err != nil {
		return nil, err
	}
	if !ok || record == nil {
		return nil, ErrNotFound
	}
	record.ContributionBps = contributionBps
	if err := e.state.GuildPut(record); err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// AddMember admits a creator when the guild has room and the creator's score
// clears the configured minimum.
func (e *Engine) AddMember(guildID, creator string, creatorScore float64) (*Guild, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	defer e.lock()()
	params, err := e.params()
	if err != nil {
		return nil, err
	}
	record, ok, err := e.state.GuildGet(guildID)
	if err != nil {
		return nil, err
	}
	if !ok || record == nil {
		return nil, ErrNotFound
	}
	if record.HasMember(creator) {
		return nil, ErrAlreadyMember
	}
	if uint32(len(record.Members)) >= params.MaxMembers {
		return nil, ErrGuildFull
	}
	if creatorScore < params.MinCreatorScore {
		return nil, ErrScoreTooLow
	}
	record.Members = append(record.Members, creator)
	if err := e.state.GuildPut(record); err != nil {
		return nil, err
	}
	e.emit(MemberJoinedEvent(record.ID, creator, len(record.Members)))
	return record.Clone(), nil
}

// Contribute splits member earnings into the guild treasury. The split is
// debited from the member's available balance before payout eligibility is
// computed; the remainder stays with the member.
func (e *Engine) Contribute(guildID, member string, earnings *big.Int) (*Contribution, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	defer e.lock()()
	params, err := e.params()
	if err != nil {
		return nil, err
	}
	if earnings == nil || earnings.Sign() <= 0 {
		return nil, ErrInvalidContribution
	}
	record, ok, err := e.state.GuildGet(guildID)
	if err != nil {
		return nil, err
	}
	if !ok || record == nil {
		return nil, ErrNotFound
	}
	if record.ContributionBps < params.MinContributionBps || record.ContributionBps > params.MaxContributionBps {
		return nil, ErrGuildMisconfigured
	}
	amount := new(big.Int).Mul(earnings, big.NewInt(int64(record.ContributionBps)))
	amount = amount.Div(amount, big.NewInt(fees.BpsDenominator))
	account, err := e.state.GetAccount(member)
	if err != nil {
		return nil, err
	}
	account = types.EnsureAccount(account)
	if account.Available.Cmp(amount) < 0 {
		return nil, ErrInsufficientFunds
	}
	account.Available = new(big.Int).Sub(account.Available, amount)
	if err := e.state.PutAccount(member, account); err != nil {
		return nil, err
	}
	record.TreasuryBalance = new(big.Int).Add(record.TreasuryBalance, amount)
	if err := e.state.GuildPut(record); err != nil {
		return nil, err
	}
	contribution := &Contribution{
		GuildID:   record.ID,
		Member:    member,
		Earnings:  new(big.Int).Set(earnings),
		Amount:    amount,
		Remainder: new(big.Int).Sub(earnings, amount),
		AppliedAt: e.now(),
	}
	e.emit(ContributedEvent(record.ID, member, amount.String(), record.TreasuryBalance.String()))
	return contribution, nil
}

// Get returns the guild record without mutating state.
func (e *Engine) Get(id string) (*Guild, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, ok, err := e.state.GuildGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || record == nil {
		return nil, ErrNotFound
	}
	return record.Clone(), nil
}
