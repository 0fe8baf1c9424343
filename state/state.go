// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/remora-chain/remora/kv"
	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/stackedmap"
)

const (
	// AccountBucketName is the bucket holding account records.
	AccountBucketName = "a"
	// StorageBucketName is the bucket holding per-account storage.
	StorageBucketName = "s"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the cause of the state access failure.
func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr remora.Address
	key  remora.Bytes32
}

// State manages the world state.
//
// All mutations are journaled in memory and only hit the underlying
// store on Commit. NewCheckpoint/RevertTo give save-restore semantics
// for failed operations.
type State struct {
	db       kv.GetPutter
	accounts kv.GetPutter
	storage  kv.GetPutter
	cache    map[remora.Address]*Account // accounts loaded from the store
	sm       *stackedmap.StackedMap      // keeps revisions of state
}

// New create state object.
func New(db kv.GetPutter) *State {
	state := State{
		db:       db,
		accounts: kv.Bucket(AccountBucketName).NewStore(db),
		storage:  kv.Bucket(StorageBucketName).NewStore(db),
		cache:    make(map[remora.Address]*Account),
	}

	state.sm = stackedmap.New(func(key any) (any, bool, error) {
		return state.cacheGetter(key)
	})
	return &state
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key any) (value any, exist bool, err error) {
	switch k := key.(type) {
	case remora.Address: // get account
		acc, err := s.getCachedAccount(k)
		if err != nil {
			return nil, false, err
		}
		return acc, true, nil
	case storageKey: // get storage
		data, err := s.storage.Get(makeStorageKey(k))
		if err != nil {
			if s.storage.IsNotFound(err) {
				return rlp.RawValue(nil), true, nil
			}
			return nil, false, err
		}
		return rlp.RawValue(data), true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

func (s *State) getCachedAccount(addr remora.Address) (*Account, error) {
	if acc, ok := s.cache[addr]; ok {
		metricAccountLoads().AddWithLabel(1, map[string]string{"outcome": "hit"})
		return acc, nil
	}
	acc, err := loadAccount(s.accounts, addr)
	if err != nil {
		return nil, err
	}
	metricAccountLoads().AddWithLabel(1, map[string]string{"outcome": "miss"})
	s.cache[addr] = acc
	return acc, nil
}

func makeStorageKey(k storageKey) []byte {
	skey := make([]byte, 0, len(k.addr)+len(k.key))
	return append(append(skey, k.addr[:]...), k.key[:]...)
}

// getAccount gets account by address. the returned account should not be modified.
func (s *State) getAccount(addr remora.Address) (*Account, error) {
	v, _, err := s.sm.Get(addr)
	if err != nil {
		return nil, err
	}
	return v.(*Account), nil
}

// getAccountCopy get a copy of account by address.
func (s *State) getAccountCopy(addr remora.Address) (Account, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return Account{}, err
	}
	return *acc, nil
}

func (s *State) updateAccount(addr remora.Address, acc *Account) {
	s.sm.Put(addr, acc)
}

// GetBalance returns free balance for the given address.
func (s *State) GetBalance(addr remora.Address) (*big.Int, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, &Error{err}
	}
	return acc.Balance, nil
}

// SetBalance set free balance for the given address.
func (s *State) SetBalance(addr remora.Address, balance *big.Int) error {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	cpy.Balance = balance
	s.updateAccount(addr, &cpy)
	return nil
}

// GetReserved returns reserved balance for the given address.
func (s *State) GetReserved(addr remora.Address) (*big.Int, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, &Error{err}
	}
	return acc.Reserved, nil
}

// SetReserved set reserved balance for the given address.
func (s *State) SetReserved(addr remora.Address, reserved *big.Int) error {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	cpy.Reserved = reserved
	s.updateAccount(addr, &cpy)
	return nil
}

// Exists returns whether an account exists at the given address.
// See Account.IsEmpty()
func (s *State) Exists(addr remora.Address) (bool, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return false, &Error{err}
	}
	return !acc.IsEmpty(), nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr remora.Address, key remora.Bytes32) (remora.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return remora.Bytes32{}, &Error{err}
	}
	if len(raw) == 0 {
		return remora.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return remora.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return remora.Blake2b(raw), nil
	}
	return remora.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr remora.Address, key, value remora.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr remora.Address, key remora.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr remora.Address, key remora.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr remora.Address, key remora.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr remora.Address, key remora.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return &Error{err}
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Commit writes all journaled changes into the underlying store
// atomically, then resets the journal and checkpoint stack.
func (s *State) Commit() error {
	changes := make(map[remora.Address]Account)
	storages := make(map[storageKey]rlp.RawValue)

	// traverse journal to build changes, last writes win
	s.sm.Journal(func(k, v any) bool {
		switch key := k.(type) {
		case remora.Address:
			changes[key] = *(v.(*Account))
		case storageKey:
			storages[key] = v.(rlp.RawValue)
		}
		return true
	})

	batch := s.db.NewBatch()
	accounts := kv.Bucket(AccountBucketName).NewPutter(batch)
	for addr, acc := range changes {
		if err := saveAccount(accounts, addr, &acc); err != nil {
			return &Error{err}
		}
	}
	storage := kv.Bucket(StorageBucketName).NewPutter(batch)
	for key, raw := range storages {
		skey := makeStorageKey(key)
		if len(raw) == 0 {
			if err := storage.Delete(skey); err != nil {
				return &Error{err}
			}
		} else if err := storage.Put(skey, raw); err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}

	s.cache = make(map[remora.Address]*Account)
	s.sm = stackedmap.New(func(key any) (any, bool, error) {
		return s.cacheGetter(key)
	})
	return nil
}
