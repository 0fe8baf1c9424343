// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stats implements the per-session block production tracker.
//
// For every tracked account it keeps a block counter, plus an index of
// tracked accounts so counters can be walked and cleared without store
// iteration. The index is replaced with the incoming authority set at
// every session rotation.
package stats

import (
	"math"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

// ClearPageSize bounds how many counters a reset deletes per page.
// Reset still walks every page in one call; the fixed page size is the
// unit a weight accountant can meter, and the seam for spreading the
// clear across blocks if the tracked set ever outgrows one.
const ClearPageSize = 64

var indexKey = remora.Blake2b([]byte("index"))

func counterKey(addr remora.Address) remora.Bytes32 {
	return remora.BytesToBytes32(append([]byte("c"), addr.Bytes()...))
}

// Tally pairs a tracked account with its block count.
type Tally struct {
	Addr   remora.Address
	Blocks uint32
}

// Stats binder of the `Stats` module.
type Stats struct {
	addr  remora.Address
	state *state.State
}

// New create a new instance.
func New(addr remora.Address, state *state.State) *Stats {
	return &Stats{addr, state}
}

func (s *Stats) index() ([]remora.Address, error) {
	var list []remora.Address
	if err := s.state.DecodeStorage(s.addr, indexKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &list)
	}); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Stats) setIndex(list []remora.Address) error {
	return s.state.EncodeStorage(s.addr, indexKey, func() ([]byte, error) {
		if len(list) == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(list)
	})
}

// Count returns the block count of the given account. Untracked
// accounts read as zero.
func (s *Stats) Count(addr remora.Address) (uint32, error) {
	var count uint32
	if err := s.state.DecodeStorage(s.addr, counterKey(addr), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &count)
	}); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Stats) setCount(addr remora.Address, count uint32) error {
	return s.state.EncodeStorage(s.addr, counterKey(addr), func() ([]byte, error) {
		if count == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(count)
	})
}

// NoteBlock credits one produced block to the author. The counter
// saturates instead of wrapping; an account not yet tracked joins the
// index.
func (s *Stats) NoteBlock(author remora.Address) error {
	count, err := s.Count(author)
	if err != nil {
		return err
	}
	if count == math.MaxUint32 {
		return nil
	}
	if count == 0 {
		tracked, err := s.index()
		if err != nil {
			return err
		}
		known := false
		for _, addr := range tracked {
			if addr == author {
				known = true
				break
			}
		}
		if !known {
			if err := s.setIndex(append(tracked, author)); err != nil {
				return err
			}
		}
	}
	return s.setCount(author, count+1)
}

// Tallies returns the (account, count) pairs of all tracked accounts,
// in tracking order.
func (s *Stats) Tallies() ([]Tally, error) {
	tracked, err := s.index()
	if err != nil {
		return nil, err
	}
	tallies := make([]Tally, 0, len(tracked))
	for _, addr := range tracked {
		count, err := s.Count(addr)
		if err != nil {
			return nil, err
		}
		tallies = append(tallies, Tally{Addr: addr, Blocks: count})
	}
	return tallies, nil
}

// Reset clears all existing counters page by page, then seeds a zero
// count for every account of the incoming authority set. All pages run
// within this call; see ClearPageSize. Callers must pass the incoming
// set, not the outgoing one.
func (s *Stats) Reset(incoming []remora.Address) error {
	tracked, err := s.index()
	if err != nil {
		return err
	}
	for len(tracked) > 0 {
		page := tracked
		if len(page) > ClearPageSize {
			page = page[:ClearPageSize]
		}
		for _, addr := range page {
			if err := s.setCount(addr, 0); err != nil {
				return err
			}
		}
		tracked = tracked[len(page):]
	}
	// a fresh index slot per account reads as zero, which is the seed
	return s.setIndex(incoming)
}
