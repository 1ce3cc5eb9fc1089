package memory

import (
	"math/big"
	"sync"

	"fanforge/core/types"
	"fanforge/native/commitment"
	"fanforge/native/guild"
	"fanforge/native/payout"
	"fanforge/native/pitch"
)

// Store is the in-memory reference ledger. It satisfies every native engine
// state interface. The record mutex keeps individual Get/Put calls safe;
// whole-operation atomicity comes from Locker, which engines must hold across
// each read-modify-write sequence. Values cross the boundary as deep clones
// so callers never alias stored state.
type Store struct {
	mu              sync.Mutex
	ops             sync.Mutex
	accounts        map[string]*types.Account
	commitments     map[string]*commitment.Commitment
	guilds          map[string]*guild.Guild
	pitches         map[string]*pitch.Pitch
	payoutRequests  map[string]*payout.Request
	payoutWindows   map[string]*payout.WindowState
	lastWithdrawals map[string]int64
}

// NewStore constructs an empty ledger.
func NewStore() *Store {
	return &Store{
		accounts:        make(map[string]*types.Account),
		commitments:     make(map[string]*commitment.Commitment),
		guilds:          make(map[string]*guild.Guild),
		pitches:         make(map[string]*pitch.Pitch),
		payoutRequests:  make(map[string]*payout.Request),
		payoutWindows:   make(map[string]*payout.WindowState),
		lastWithdrawals: make(map[string]int64),
	}
}

// Locker returns the operation-level mutex. Every engine sharing this store
// must hold it for the duration of a mutating operation so that concurrent
// read-modify-write sequences over the same accounts serialise.
func (s *Store) Locker() sync.Locker {
	return &s.ops
}

// GetAccount returns a clone of the stored account, or nil when absent.
func (s *Store) GetAccount(id string) (*types.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.accounts[id]; ok {
		return acc.Clone(), nil
	}
	return nil, nil
}

// PutAccount stores a clone of the supplied account.
func (s *Store) PutAccount(id string, account *types.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account == nil {
		delete(s.accounts, id)
		return nil
	}
	clone := account.Clone()
	clone.ID = id
	s.accounts[id] = clone
	return nil
}

// Credit adds funds to an account's available balance, creating the account
// when needed. Intended for deposits arriving from the payment rails; it
// holds the operation lock so a deposit never races an in-flight engine
// write-back of the same account.
func (s *Store) Credit(id string, amount *big.Int) error {
	s.ops.Lock()
	defer s.ops.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := types.EnsureAccount(s.accounts[id])
	acc.ID = id
	acc.Available = new(big.Int).Add(acc.Available, amount)
	s.accounts[id] = acc
	return nil
}

// CommitmentGet returns a clone of the stored commitment.
func (s *Store) CommitmentGet(id string) (*commitment.Commitment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.commitments[id]
	if !ok {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

// CommitmentPut stores a clone of the supplied commitment.
func (s *Store) CommitmentPut(record *commitment.Commitment) error {
	if record == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitments[record.ID] = record.Clone()
	return nil
}

// GuildGet returns a clone of the stored guild.
func (s *Store) GuildGet(id string) (*guild.Guild, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.guilds[id]
	if !ok {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

// GuildPut stores a clone of the supplied guild.
func (s *Store) GuildPut(record *guild.Guild) error {
	if record == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guilds[record.ID] = record.Clone()
	return nil
}

// PitchGet returns a clone of the stored pitch.
func (s *Store) PitchGet(id string) (*pitch.Pitch, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.pitches[id]
	if !ok {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

// PitchPut stores a clone of the supplied pitch.
func (s *Store) PitchPut(record *pitch.Pitch) error {
	if record == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pitches[record.ID] = record.Clone()
	return nil
}

// PayoutRequestGet returns a clone of the stored payout request.
func (s *Store) PayoutRequestGet(id string) (*payout.Request, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.payoutRequests[id]
	if !ok {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

// PayoutRequestPut stores a clone of the supplied payout request.
func (s *Store) PayoutRequestPut(record *payout.Request) error {
	if record == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payoutRequests[record.ID] = record.Clone()
	return nil
}

func windowKey(account, day string) string {
	return account + "|" + day
}

// PayoutWindowGet returns a clone of the rolling counters for the account/day.
func (s *Store) PayoutWindowGet(account, day string) (*payout.WindowState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.payoutWindows[windowKey(account, day)]
	if !ok {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

// PayoutWindowPut stores a clone of the rolling counters.
func (s *Store) PayoutWindowPut(record *payout.WindowState) error {
	if record == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payoutWindows[windowKey(record.Account, record.Day)] = record.Clone()
	return nil
}

// LastWithdrawalGet returns the last accepted withdrawal timestamp.
func (s *Store) LastWithdrawalGet(account string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.lastWithdrawals[account]
	return ts, ok, nil
}

// LastWithdrawalPut records the last accepted withdrawal timestamp.
func (s *Store) LastWithdrawalPut(account string, ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastWithdrawals[account] = ts
	return nil
}
