// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package collator

import (
	"fmt"

	"github.com/remora-chain/remora/builtin/roster"
	"github.com/remora-chain/remora/remora"
)

// a handful of records covers pending-state forks of the same session
const schedCacheSize = 16

// CanAuthor reports whether addr is scheduled for slot under the
// round-robin order of the active session record. With an empty record
// nobody can author.
func (m *Module) CanAuthor(addr remora.Address, slot uint64) (bool, error) {
	scheduled, ok, err := m.SlotAuthor(slot)
	if err != nil {
		return false, err
	}
	return ok && scheduled == addr, nil
}

// SlotAuthor returns the authority whose turn it is at slot. ok is
// false when the active record is empty.
func (m *Module) SlotAuthor(slot uint64) (remora.Address, bool, error) {
	record, err := m.sessionRecord()
	if err != nil {
		return remora.Address{}, false, err
	}
	n := uint64(len(record.Authorities))
	if n == 0 {
		return remora.Address{}, false, nil
	}
	return record.Authorities[slot%n], true, nil
}

// sessionRecord loads the active authority record through a small LRU
// keyed by the raw storage bytes, so per-slot checks skip the decode.
func (m *Module) sessionRecord() (*roster.AuthorityRecord, error) {
	raw, err := m.roster.RawAuthorities()
	if err != nil {
		return nil, err
	}
	hit := true
	record, err := m.sched.GetOrLoad(string(raw), func(interface{}) (interface{}, error) {
		hit = false
		return roster.DecodeAuthorities(raw)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		m.schedStats.Hit()
	} else {
		m.schedStats.Miss()
	}
	return record.(*roster.AuthorityRecord), nil
}

// logSchedStats logs schedule cache stats when the hit rate moved since
// the last log.
func (m *Module) logSchedStats() {
	should, hit, miss := m.schedStats.Stats()
	if !should {
		return
	}
	lookups := hit + miss
	var str string
	if lookups > 0 {
		str = fmt.Sprintf("%.3f", float64(hit)/float64(lookups))
	} else {
		str = "n/a"
	}
	logger.Debug("schedule cache stats",
		"lookups", lookups,
		"hitrate", str,
	)
	metricSchedCache().SetWithLabel(hit, map[string]string{"event": "hit"})
	metricSchedCache().SetWithLabel(miss, map[string]string{"event": "miss"})
}
