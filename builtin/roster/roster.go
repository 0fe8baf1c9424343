// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package roster implements the collator membership store: the
// governance-managed invulnerable list, the bonded candidate list and
// the assembled per-session authority record.
//
// Candidates form a doubly linked list in insertion order, one storage
// slot per entry plus head/tail pointers and a count. Walks are bounded
// by the caller-supplied limit.
package roster

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

var (
	headKey          = remora.Blake2b([]byte("head"))
	tailKey          = remora.Blake2b([]byte("tail"))
	countKey         = remora.Blake2b([]byte("count"))
	invulnerablesKey = remora.Blake2b([]byte("invulnerables"))
	authoritiesKey   = remora.Blake2b([]byte("authorities"))
)

// Roster binder of the `Roster` module.
type Roster struct {
	addr  remora.Address
	state *state.State
}

// New create a new instance.
func New(addr remora.Address, state *state.State) *Roster {
	return &Roster{addr, state}
}

func (r *Roster) getEntry(target remora.Address) (*entry, error) {
	var ent entry
	if err := r.state.DecodeStorage(r.addr, remora.BytesToBytes32(target[:]), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &ent)
	}); err != nil {
		return nil, err
	}
	return &ent, nil
}

func (r *Roster) setEntry(target remora.Address, ent *entry) error {
	return r.state.EncodeStorage(r.addr, remora.BytesToBytes32(target[:]), func() ([]byte, error) {
		if ent.IsEmpty() {
			return nil, nil
		}
		return rlp.EncodeToBytes(ent)
	})
}

func (r *Roster) getAddressPtr(key remora.Bytes32) (addr *remora.Address, err error) {
	err = r.state.DecodeStorage(r.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &addr)
	})
	return
}

func (r *Roster) setAddressPtr(key remora.Bytes32, addr *remora.Address) error {
	return r.state.EncodeStorage(r.addr, key, func() ([]byte, error) {
		if addr == nil {
			return nil, nil
		}
		return rlp.EncodeToBytes(addr)
	})
}

// Count returns the number of listed candidates.
func (r *Roster) Count() (uint64, error) {
	var count uint64
	if err := r.state.DecodeStorage(r.addr, countKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &count)
	}); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Roster) setCount(count uint64) error {
	return r.state.EncodeStorage(r.addr, countKey, func() ([]byte, error) {
		if count == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(count)
	})
}

// Get returns the candidate registered for the given address.
func (r *Roster) Get(target remora.Address) (*Candidate, bool, error) {
	ent, err := r.getEntry(target)
	if err != nil {
		return nil, false, err
	}
	if !ent.Listed {
		return nil, false, nil
	}
	return &Candidate{Addr: target, Deposit: ent.Deposit}, true, nil
}

// Add appends a new candidate with the given deposit to the tail of the
// list. It returns false if the address is already listed.
func (r *Roster) Add(target remora.Address, deposit *big.Int) (bool, error) {
	ent, err := r.getEntry(target)
	if err != nil {
		return false, err
	}
	if ent.Listed {
		return false, nil
	}

	ent.Listed = true
	ent.Deposit = deposit

	tailPtr, err := r.getAddressPtr(tailKey)
	if err != nil {
		return false, err
	}
	ent.Prev = tailPtr

	if err := r.setAddressPtr(tailKey, &target); err != nil {
		return false, err
	}
	if tailPtr == nil {
		if err := r.setAddressPtr(headKey, &target); err != nil {
			return false, err
		}
	} else {
		tailEntry, err := r.getEntry(*tailPtr)
		if err != nil {
			return false, err
		}
		tailEntry.Next = &target
		if err := r.setEntry(*tailPtr, tailEntry); err != nil {
			return false, err
		}
	}

	if err := r.setEntry(target, ent); err != nil {
		return false, err
	}
	count, err := r.Count()
	if err != nil {
		return false, err
	}
	return true, r.setCount(count + 1)
}

// Remove unlinks and deletes the candidate for the given address. It
// returns the stored deposit, or false if the address is not listed.
func (r *Roster) Remove(target remora.Address) (*big.Int, bool, error) {
	ent, err := r.getEntry(target)
	if err != nil {
		return nil, false, err
	}
	if !ent.Listed {
		return nil, false, nil
	}

	if ent.Prev == nil {
		if err := r.setAddressPtr(headKey, ent.Next); err != nil {
			return nil, false, err
		}
	} else {
		prevEntry, err := r.getEntry(*ent.Prev)
		if err != nil {
			return nil, false, err
		}
		prevEntry.Next = ent.Next
		if err := r.setEntry(*ent.Prev, prevEntry); err != nil {
			return nil, false, err
		}
	}

	if ent.Next == nil {
		if err := r.setAddressPtr(tailKey, ent.Prev); err != nil {
			return nil, false, err
		}
	} else {
		nextEntry, err := r.getEntry(*ent.Next)
		if err != nil {
			return nil, false, err
		}
		nextEntry.Prev = ent.Prev
		if err := r.setEntry(*ent.Next, nextEntry); err != nil {
			return nil, false, err
		}
	}

	deposit := ent.Deposit
	if err := r.setEntry(target, &entry{}); err != nil {
		return nil, false, err
	}
	count, err := r.Count()
	if err != nil {
		return nil, false, err
	}
	return deposit, true, r.setCount(count - 1)
}

// Candidates lists candidates in registration order, up to limit.
func (r *Roster) Candidates(limit uint64) ([]*Candidate, error) {
	ptr, err := r.getAddressPtr(headKey)
	if err != nil {
		return nil, err
	}
	candidates := make([]*Candidate, 0, limit)
	for ptr != nil && uint64(len(candidates)) < limit {
		ent, err := r.getEntry(*ptr)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, &Candidate{Addr: *ptr, Deposit: ent.Deposit})
		ptr = ent.Next
	}
	return candidates, nil
}

// Invulnerables returns the governance-managed invulnerable list.
func (r *Roster) Invulnerables() ([]remora.Address, error) {
	var list []remora.Address
	if err := r.state.DecodeStorage(r.addr, invulnerablesKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &list)
	}); err != nil {
		return nil, err
	}
	return list, nil
}

// SetInvulnerables replaces the invulnerable list.
func (r *Roster) SetInvulnerables(list []remora.Address) error {
	return r.state.EncodeStorage(r.addr, invulnerablesKey, func() ([]byte, error) {
		if len(list) == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(list)
	})
}

// IsInvulnerable returns whether the given address is invulnerable.
func (r *Roster) IsInvulnerable(target remora.Address) (bool, error) {
	list, err := r.Invulnerables()
	if err != nil {
		return false, err
	}
	for _, addr := range list {
		if addr == target {
			return true, nil
		}
	}
	return false, nil
}

// Authorities returns the current session authority record.
func (r *Roster) Authorities() (*AuthorityRecord, error) {
	var record AuthorityRecord
	if err := r.state.DecodeStorage(r.addr, authoritiesKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &record)
	}); err != nil {
		return nil, err
	}
	return &record, nil
}

// RawAuthorities returns the RLP-encoded authority record, or nil when
// none has been stored. The raw bytes make a cheap cache key.
func (r *Roster) RawAuthorities() ([]byte, error) {
	return r.state.GetRawStorage(r.addr, authoritiesKey)
}

// DecodeAuthorities decodes raw bytes read by RawAuthorities. Empty
// input yields an empty record.
func DecodeAuthorities(raw []byte) (*AuthorityRecord, error) {
	var record AuthorityRecord
	if len(raw) == 0 {
		return &record, nil
	}
	if err := rlp.DecodeBytes(raw, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// SetAuthorities stores the assembled session authority record.
func (r *Roster) SetAuthorities(record *AuthorityRecord) error {
	return r.state.EncodeStorage(r.addr, authoritiesKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(record)
	})
}
