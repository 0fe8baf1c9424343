// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package collator

import (
	"math/big"

	"github.com/remora-chain/remora/remora"
)

// Event is emitted by a successful collator operation. Events are
// collected on the module and drained by the host; an operation that
// fails leaves no events behind.
type Event interface {
	// Name returns the stable identifier of the event kind.
	Name() string
}

// CandidateAdded fires when an account bonds as a candidate.
type CandidateAdded struct {
	Addr    remora.Address
	Deposit *big.Int
}

// CandidateRemoved fires when a candidate leaves or is removed by
// governance. Deposit is the bond refunded.
type CandidateRemoved struct {
	Addr    remora.Address
	Deposit *big.Int
}

// CandidateEvicted fires when the session rotation evicts an
// underperforming candidate.
type CandidateEvicted struct {
	Addr    remora.Address
	Deposit *big.Int
	Blocks  uint32
}

// SessionAssembled fires once per session rotation.
type SessionAssembled struct {
	Index       uint64
	Authorities uint64
	Evicted     uint64
}

// RewardPaid fires when a block author receives its reward share.
type RewardPaid struct {
	Author remora.Address
	Amount *big.Int
}

// InvulnerablesSet fires when governance replaces the invulnerable list.
type InvulnerablesSet struct {
	List []remora.Address
}

// DesiredCandidatesSet fires when governance adjusts the candidate cap.
type DesiredCandidatesSet struct {
	Max uint64
}

// CandidacyBondSet fires when governance adjusts the candidacy bond.
type CandidacyBondSet struct {
	Amount *big.Int
}

// EvictionBaselineSet fires when governance adjusts the baseline
// percentile.
type EvictionBaselineSet struct {
	Baseline remora.Percent
}

// EvictionToleranceSet fires when governance adjusts the eviction
// tolerance.
type EvictionToleranceSet struct {
	Tolerance remora.Percent
}

func (CandidateAdded) Name() string       { return "candidate-added" }
func (CandidateRemoved) Name() string     { return "candidate-removed" }
func (CandidateEvicted) Name() string     { return "candidate-evicted" }
func (SessionAssembled) Name() string     { return "session-assembled" }
func (RewardPaid) Name() string           { return "reward-paid" }
func (InvulnerablesSet) Name() string     { return "invulnerables-set" }
func (DesiredCandidatesSet) Name() string { return "desired-candidates-set" }
func (CandidacyBondSet) Name() string     { return "candidacy-bond-set" }
func (EvictionBaselineSet) Name() string  { return "eviction-baseline-set" }
func (EvictionToleranceSet) Name() string { return "eviction-tolerance-set" }
