// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remora

import (
	"math/big"
)

// Constants of the collator-selection protocol.
const (
	BlockInterval uint64 = 12 // time interval between two consecutive blocks, in seconds.

	// MaxInvulnerables caps the governance-managed invulnerable list.
	MaxInvulnerables uint64 = 32

	// MaxCandidates is the hard upper bound of the candidate list. It bounds
	// every iteration over candidates so that session assembly stays within a
	// fixed per-block budget. The governance-set desired-candidates param can
	// never exceed it.
	MaxCandidates uint64 = 200

	// MaxAuthorities bounds the assembled per-session authority set.
	MaxAuthorities = MaxInvulnerables + MaxCandidates
)

// Keys of governance params.
var (
	KeyCandidacyBond     = Blake2b([]byte("candidacy-bond"))
	KeyDesiredCandidates = Blake2b([]byte("desired-candidates"))
	KeyEvictionBaseline  = Blake2b([]byte("eviction-baseline"))
	KeyEvictionTolerance = Blake2b([]byte("eviction-tolerance"))
)

// Initial values of governance params.
var (
	// InitialCandidacyBond is the stake reserved when an account registers as
	// a collator candidate: 1000 REM.
	InitialCandidacyBond = new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18))

	// InitialDesiredCandidates is the soft cap of the candidate list,
	// enforced at registration time only.
	InitialDesiredCandidates = big.NewInt(50)

	// InitialEvictionBaseline is the percentile rank whose block count sets
	// the per-session performance bar. 0% disables eviction.
	InitialEvictionBaseline = FromPercent(80)

	// InitialEvictionTolerance is the tolerated shortfall below the baseline
	// before a candidate is evicted. 100% disables eviction.
	InitialEvictionTolerance = FromPercent(10)

	// InitialExistentialDeposit is the minimum balance an account must retain
	// to stay alive: 0.01 REM.
	InitialExistentialDeposit = big.NewInt(1e16)
)
