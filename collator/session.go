// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package collator

import (
	"time"

	"github.com/remora-chain/remora/builtin/roster"
	"github.com/remora-chain/remora/remora"
)

// Evicted identifies a candidate removed by the eviction pass together
// with the block count that condemned it.
type Evicted struct {
	Addr   remora.Address
	Blocks uint32
}

// Session is the outcome of one rotation.
type Session struct {
	Index       uint64
	Authorities []remora.Address
	Evicted     []*Evicted
}

// Authorities returns the session authority record assembled by the
// latest rotation. Before the first rotation the record is empty with
// index 0.
func (m *Module) Authorities() (*roster.AuthorityRecord, error) {
	return m.roster.Authorities()
}

// StartSession is called by the host when a session begins. The module
// keeps no per-session state outside the tracker, so this is a no-op
// kept for the session-hook interface.
func (m *Module) StartSession(index uint64) {}

// EndSession is called by the host when a session ends. No-op, see
// StartSession.
func (m *Module) EndSession(index uint64) {}

// NewSession rotates the authority set. It evicts underperformers,
// assembles the next set as invulnerables followed by surviving
// candidates in registration order, persists the record, activates
// queued session keys and resets the tracker for the incoming set.
//
// The whole rotation is atomic. An empty next set is stored as-is;
// authoring stalls until governance repopulates the roster.
func (m *Module) NewSession() (session *Session, err error) {
	started := time.Now()
	err = m.runAtomic(func() error {
		evicted, err := m.evictUnderperformers()
		if err != nil {
			return err
		}

		invulnerables, err := m.roster.Invulnerables()
		if err != nil {
			return err
		}
		candidates, err := m.roster.Candidates(remora.MaxCandidates)
		if err != nil {
			return err
		}
		next := make([]remora.Address, 0, len(invulnerables)+len(candidates))
		next = append(next, invulnerables...)
		for _, candidate := range candidates {
			next = append(next, candidate.Addr)
		}

		prev, err := m.roster.Authorities()
		if err != nil {
			return err
		}
		record := &roster.AuthorityRecord{
			Index:       prev.Index + 1,
			Authorities: next,
		}
		if err := m.roster.SetAuthorities(record); err != nil {
			return err
		}
		if err := m.keys.ActivateQueued(); err != nil {
			return err
		}
		if err := m.stats.Reset(next); err != nil {
			return err
		}

		m.emit(SessionAssembled{
			Index:       record.Index,
			Authorities: uint64(len(next)),
			Evicted:     uint64(len(evicted)),
		})
		session = &Session{
			Index:       record.Index,
			Authorities: next,
			Evicted:     evicted,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metricAuthorityCount().Set(int64(len(session.Authorities)))
	metricSessionDuration().Observe(time.Since(started).Milliseconds())
	m.logSchedStats()
	if len(session.Authorities) == 0 {
		logger.Warn("session assembled with empty authority set", "index", session.Index)
	} else {
		logger.Info("session assembled",
			"index", session.Index,
			"authorities", len(session.Authorities),
			"evicted", len(session.Evicted))
	}
	return session, nil
}
