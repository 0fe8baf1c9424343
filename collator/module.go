// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package collator implements collator selection: candidate bonding,
// per-session performance tracking, percentile-based eviction, session
// set assembly and block author rewards.
//
// Every public operation is transactional. A failed call reverts all of
// its state writes and emits no events.
package collator

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/remora-chain/remora/builtin"
	"github.com/remora-chain/remora/builtin/keys"
	"github.com/remora-chain/remora/builtin/ledger"
	"github.com/remora-chain/remora/builtin/params"
	"github.com/remora-chain/remora/builtin/roster"
	"github.com/remora-chain/remora/builtin/stats"
	"github.com/remora-chain/remora/cache"
	"github.com/remora-chain/remora/log"
	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

var logger = log.WithContext("pkg", "collator")

// Module binds the collator-selection operations to a state instance.
//
// Execution is single threaded; a Module must not be shared between
// goroutines.
type Module struct {
	state  *state.State
	params *params.Params
	ledger *ledger.Ledger
	roster *roster.Roster
	stats  *stats.Stats
	keys   *keys.Keys

	govern     remora.Address
	sched      *cache.LRU
	schedStats cache.Stats
	events     []Event
}

// New creates a module bound to the given state. govern is the only
// origin accepted for governance operations.
func New(st *state.State, govern remora.Address) *Module {
	sched, _ := cache.NewLRU(schedCacheSize)
	return &Module{
		state:  st,
		params: builtin.Params.WithState(st),
		ledger: builtin.Ledger.WithState(st),
		roster: builtin.Roster.WithState(st),
		stats:  builtin.Stats.WithState(st),
		keys:   builtin.Keys.WithState(st),
		govern: govern,
		sched:  sched,
	}
}

func (m *Module) emit(ev Event) {
	m.events = append(m.events, ev)
}

// DrainEvents returns the events emitted since the last drain, oldest
// first, and clears the sink.
func (m *Module) DrainEvents() []Event {
	events := m.events
	m.events = nil
	return events
}

// runAtomic runs fn under a state checkpoint. On failure all state
// writes and staged events of the call are rolled back.
func (m *Module) runAtomic(fn func() error) error {
	rev := m.state.NewCheckpoint()
	staged := len(m.events)
	if err := fn(); err != nil {
		m.state.RevertTo(rev)
		m.events = m.events[:staged]
		return err
	}
	return nil
}

// CandidacyBond returns the bond reserved by future registrations.
func (m *Module) CandidacyBond() (*big.Int, error) {
	return m.params.Get(remora.KeyCandidacyBond)
}

// DesiredCandidates returns the candidate cap enforced at registration.
func (m *Module) DesiredCandidates() (uint64, error) {
	v, err := m.params.Get(remora.KeyDesiredCandidates)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, errors.New("malformed desired-candidates param")
	}
	return v.Uint64(), nil
}

// EvictionBaseline returns the percentile rank whose block count sets
// the per-session performance bar.
func (m *Module) EvictionBaseline() (remora.Percent, error) {
	v, err := m.params.Get(remora.KeyEvictionBaseline)
	if err != nil {
		return 0, err
	}
	return remora.PercentFromBig(v)
}

// EvictionTolerance returns the tolerated shortfall below the baseline.
func (m *Module) EvictionTolerance() (remora.Percent, error) {
	v, err := m.params.Get(remora.KeyEvictionTolerance)
	if err != nil {
		return 0, err
	}
	return remora.PercentFromBig(v)
}

// Candidates lists the registered candidates in registration order.
func (m *Module) Candidates() ([]*roster.Candidate, error) {
	return m.roster.Candidates(remora.MaxCandidates)
}

// Invulnerables returns the governance-managed invulnerable list.
func (m *Module) Invulnerables() ([]remora.Address, error) {
	return m.roster.Invulnerables()
}

// RegisterAsCandidate bonds origin as a collator candidate and returns
// the resulting candidate count.
func (m *Module) RegisterAsCandidate(origin remora.Address) (count uint64, err error) {
	err = m.runAtomic(func() error {
		count, err = m.register(origin, "self")
		return err
	})
	return
}

// RegisterCollator registers who as a candidate on behalf of
// governance. The bond is reserved from who's balance.
func (m *Module) RegisterCollator(origin, who remora.Address) (count uint64, err error) {
	if origin != m.govern {
		return 0, ErrUnauthorized
	}
	err = m.runAtomic(func() error {
		count, err = m.register(who, "governance")
		return err
	})
	return
}

func (m *Module) register(who remora.Address, originKind string) (uint64, error) {
	invulnerable, err := m.roster.IsInvulnerable(who)
	if err != nil {
		return 0, err
	}
	if invulnerable {
		return 0, ErrAlreadyInvulnerable
	}

	count, err := m.roster.Count()
	if err != nil {
		return 0, err
	}
	desired, err := m.DesiredCandidates()
	if err != nil {
		return 0, err
	}
	if count >= desired {
		return 0, ErrTooManyCandidates
	}

	id, ok, err := m.keys.Convert(who)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNoAssociatedValidatorID
	}
	registered, err := m.keys.IsRegistered(id)
	if err != nil {
		return 0, err
	}
	if !registered {
		return 0, ErrValidatorNotRegistered
	}

	if _, ok, err := m.roster.Get(who); err != nil {
		return 0, err
	} else if ok {
		return 0, ErrAlreadyCandidate
	}

	bond, err := m.CandidacyBond()
	if err != nil {
		return 0, err
	}
	if err := m.ledger.Reserve(who, bond); err != nil {
		return 0, errors.Wrap(err, "reserve candidacy bond")
	}
	if _, err := m.roster.Add(who, bond); err != nil {
		return 0, err
	}

	m.emit(CandidateAdded{Addr: who, Deposit: bond})
	metricRegistrations().AddWithLabel(1, map[string]string{"origin": originKind})
	metricCandidateCount().Set(int64(count + 1))
	logger.Debug("candidate registered", "addr", who, "deposit", bond, "count", count+1)
	return count + 1, nil
}

// LeaveIntent unbonds origin, refunding the deposit recorded at its
// registration, and returns the resulting candidate count.
func (m *Module) LeaveIntent(origin remora.Address) (count uint64, err error) {
	err = m.runAtomic(func() error {
		count, err = m.removeCandidate(origin, "leave")
		return err
	})
	return
}

// RemoveCollator removes who by governance decision. Invulnerables
// cannot be removed through this path.
func (m *Module) RemoveCollator(origin, who remora.Address) (count uint64, err error) {
	if origin != m.govern {
		return 0, ErrUnauthorized
	}
	err = m.runAtomic(func() error {
		invulnerable, err := m.roster.IsInvulnerable(who)
		if err != nil {
			return err
		}
		if invulnerable {
			return ErrNotAllowRemoveInvulnerable
		}
		count, err = m.removeCandidate(who, "governance")
		return err
	})
	return
}

// removeCandidate deletes the roster entry and unreserves exactly the
// stored deposit.
func (m *Module) removeCandidate(who remora.Address, reason string) (uint64, error) {
	deposit, ok, err := m.roster.Remove(who)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNotCandidate
	}
	actual, err := m.ledger.Unreserve(who, deposit)
	if err != nil {
		return 0, err
	}
	if actual.Cmp(deposit) < 0 {
		logger.Debug("bond unreserve shortfall", "addr", who, "want", deposit, "got", actual)
	}
	count, err := m.roster.Count()
	if err != nil {
		return 0, err
	}

	m.emit(CandidateRemoved{Addr: who, Deposit: deposit})
	metricRemovals().AddWithLabel(1, map[string]string{"reason": reason})
	metricCandidateCount().Set(int64(count))
	logger.Debug("candidate removed", "addr", who, "deposit", deposit, "reason", reason)
	return count, nil
}

// SetInvulnerables replaces the invulnerable list. The list is capped,
// duplicate free and must not contain bonded candidates.
func (m *Module) SetInvulnerables(origin remora.Address, list []remora.Address) error {
	if origin != m.govern {
		return ErrUnauthorized
	}
	return m.runAtomic(func() error {
		if uint64(len(list)) > remora.MaxInvulnerables {
			return errors.New("too many invulnerables")
		}
		seen := make(map[remora.Address]bool, len(list))
		for _, addr := range list {
			if seen[addr] {
				return errors.Errorf("duplicate invulnerable %v", addr)
			}
			seen[addr] = true
			if _, ok, err := m.roster.Get(addr); err != nil {
				return err
			} else if ok {
				return errors.Errorf("invulnerable %v is a bonded candidate", addr)
			}
		}
		if err := m.roster.SetInvulnerables(list); err != nil {
			return err
		}
		m.emit(InvulnerablesSet{List: list})
		logger.Info("invulnerables set", "count", len(list))
		return nil
	})
}

// SetDesiredCandidates adjusts the registration-time candidate cap.
// Lowering it below the current count does not remove anyone.
func (m *Module) SetDesiredCandidates(origin remora.Address, max uint64) error {
	if origin != m.govern {
		return ErrUnauthorized
	}
	return m.runAtomic(func() error {
		if max > remora.MaxCandidates {
			return errors.Errorf("desired candidates exceed hard cap %d", remora.MaxCandidates)
		}
		if err := m.params.Set(remora.KeyDesiredCandidates, new(big.Int).SetUint64(max)); err != nil {
			return err
		}
		m.emit(DesiredCandidatesSet{Max: max})
		logger.Info("desired candidates set", "max", max)
		return nil
	})
}

// SetCandidacyBond adjusts the bond reserved by future registrations.
// Deposits of existing candidates are not touched.
func (m *Module) SetCandidacyBond(origin remora.Address, amount *big.Int) error {
	if origin != m.govern {
		return ErrUnauthorized
	}
	return m.runAtomic(func() error {
		if amount.Sign() < 0 {
			return errors.New("negative candidacy bond")
		}
		if err := m.params.Set(remora.KeyCandidacyBond, amount); err != nil {
			return err
		}
		m.emit(CandidacyBondSet{Amount: amount})
		logger.Info("candidacy bond set", "amount", amount)
		return nil
	})
}

// SetEvictionBaseline adjusts the baseline percentile. 0% disables
// eviction.
func (m *Module) SetEvictionBaseline(origin remora.Address, baseline remora.Percent) error {
	if origin != m.govern {
		return ErrUnauthorized
	}
	return m.runAtomic(func() error {
		if baseline > remora.FullPercent {
			return errors.New("eviction baseline out of range")
		}
		if err := m.params.Set(remora.KeyEvictionBaseline, baseline.ToBig()); err != nil {
			return err
		}
		m.emit(EvictionBaselineSet{Baseline: baseline})
		logger.Info("eviction baseline set", "baseline", baseline)
		return nil
	})
}

// SetEvictionTolerance adjusts the tolerated shortfall. 100% disables
// eviction.
func (m *Module) SetEvictionTolerance(origin remora.Address, tolerance remora.Percent) error {
	if origin != m.govern {
		return ErrUnauthorized
	}
	return m.runAtomic(func() error {
		if tolerance > remora.FullPercent {
			return errors.New("eviction tolerance out of range")
		}
		if err := m.params.Set(remora.KeyEvictionTolerance, tolerance.ToBig()); err != nil {
			return err
		}
		m.emit(EvictionToleranceSet{Tolerance: tolerance})
		logger.Info("eviction tolerance set", "tolerance", tolerance)
		return nil
	})
}

// SetSessionKeys associates origin with its authoring key. The key
// becomes registered at the next session rotation.
func (m *Module) SetSessionKeys(origin remora.Address, id keys.ValidatorID) error {
	return m.runAtomic(func() error {
		return m.keys.SetKeys(origin, id)
	})
}

// ClearSessionKeys drops origin's authoring key association.
func (m *Module) ClearSessionKeys(origin remora.Address) error {
	return m.runAtomic(func() error {
		return m.keys.ClearKeys(origin)
	})
}
