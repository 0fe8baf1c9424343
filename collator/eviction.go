// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package collator

import (
	"sort"

	"github.com/remora-chain/remora/builtin/stats"
)

// evictUnderperformers removes candidates whose session block count
// falls too far below the baseline percentile and returns them in
// eviction order.
//
// The bar is taken over every tracked account, invulnerables included,
// but only candidates are removed. A baseline of 0% or a tolerance of
// 100% disables eviction. Accounts tied with the baseline holder
// always survive.
func (m *Module) evictUnderperformers() ([]*Evicted, error) {
	baseline, err := m.EvictionBaseline()
	if err != nil {
		return nil, err
	}
	tolerance, err := m.EvictionTolerance()
	if err != nil {
		return nil, err
	}
	if baseline.IsZero() || tolerance.IsFull() {
		return nil, nil
	}

	tallies, err := m.stats.Tallies()
	if err != nil {
		return nil, err
	}
	n := uint64(len(tallies))
	if n == 0 {
		return nil, nil
	}

	// Ties keep tracking order, which makes the cut deterministic.
	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].Blocks < tallies[j].Blocks
	})

	rank := baseline.MulCeilUint64(n)
	var index uint64
	if rank > 0 {
		index = rank - 1
	}
	bar := uint64(tallies[index].Blocks)
	threshold := tolerance.Complement().MulCeilUint64(bar)

	var evicted []*Evicted
	for _, tally := range tallies[:index] {
		if uint64(tally.Blocks) >= threshold {
			continue
		}
		ev, err := m.evictOne(tally)
		if err != nil {
			return nil, err
		}
		if ev != nil {
			evicted = append(evicted, ev)
		}
	}
	return evicted, nil
}

// evictOne force-removes a single underperforming candidate. Tracked
// accounts that are not candidates (invulnerables, stragglers from a
// mid-session removal) are left alone.
func (m *Module) evictOne(tally stats.Tally) (*Evicted, error) {
	candidate, ok, err := m.roster.Get(tally.Addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if _, _, err := m.roster.Remove(tally.Addr); err != nil {
		return nil, err
	}
	actual, err := m.ledger.Unreserve(tally.Addr, candidate.Deposit)
	if err != nil {
		return nil, err
	}
	if actual.Cmp(candidate.Deposit) < 0 {
		logger.Debug("bond unreserve shortfall", "addr", tally.Addr, "want", candidate.Deposit, "got", actual)
	}

	m.emit(CandidateEvicted{Addr: tally.Addr, Deposit: candidate.Deposit, Blocks: tally.Blocks})
	metricRemovals().AddWithLabel(1, map[string]string{"reason": "evicted"})
	logger.Debug("candidate evicted", "addr", tally.Addr, "blocks", tally.Blocks, "deposit", candidate.Deposit)
	return &Evicted{Addr: tally.Addr, Blocks: tally.Blocks}, nil
}
