// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package roster

import (
	"math/big"

	"github.com/remora-chain/remora/remora"
)

// entry is the stored form of a candidate, linked into the insertion
// ordered candidate list.
type entry struct {
	Listed  bool
	Deposit *big.Int
	Prev    *remora.Address `rlp:"nil"`
	Next    *remora.Address `rlp:"nil"`
}

// IsEmpty returns whether the entry can be treated as empty.
func (e *entry) IsEmpty() bool {
	return !e.Listed &&
		(e.Deposit == nil || e.Deposit.Sign() == 0) &&
		e.Prev == nil &&
		e.Next == nil
}

// Candidate is a bonded collator competing for a seat.
//
// Deposit is the candidacy bond reserved at registration time. It never
// changes afterwards, even if the bond parameter does.
type Candidate struct {
	Addr    remora.Address
	Deposit *big.Int
}

// AuthorityRecord is the assembled per-session authority set.
//
// Invulnerables come first, then surviving candidates in registration
// order. Session consumers rely on that order.
type AuthorityRecord struct {
	Index       uint64
	Authorities []remora.Address
}
