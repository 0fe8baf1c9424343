// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package sim replays authoring sessions against a built genesis state:
// operators of varying reliability join, author, get rewarded and get
// evicted, while every module event lands in the archive.
package sim

import (
	"context"
	"math/big"
	mathrand "math/rand"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/remora-chain/remora/builtin"
	"github.com/remora-chain/remora/builtin/ledger"
	"github.com/remora-chain/remora/co"
	"github.com/remora-chain/remora/collator"
	"github.com/remora-chain/remora/eventdb"
	"github.com/remora-chain/remora/genesis"
	"github.com/remora-chain/remora/log"
	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

var logger = log.WithContext("pkg", "sim")

// Snapshot is the published view of the selection state, refreshed at
// every session boundary. Safe to read from other goroutines.
type Snapshot struct {
	Network           string
	SessionIndex      uint64
	Authorities       int
	Candidates        int
	Invulnerables     int
	DesiredCandidates uint64
	CandidacyBond     *big.Int
	EvictionBaseline  remora.Percent
	EvictionTolerance remora.Percent
}

// Summary totals one finished run.
type Summary struct {
	Sessions   uint64
	Blocks     uint64
	Authored   uint64
	Missed     uint64
	Stalled    uint64
	Registered uint64
	Left       uint64
	Evicted    uint64
	Rewards    *big.Int
}

// Simulator drives the collator module block by block.
type Simulator struct {
	scen    *Scenario
	gene    *genesis.Genesis
	state   *state.State
	module  *collator.Module
	ledger  *ledger.Ledger
	archive *eventdb.EventDB

	ops       []*operator
	opsByAddr map[remora.Address]*operator
	rnd       *mathrand.Rand
	sum       *Summary

	snapshot      atomic.Value // *Snapshot
	archiveFailed atomic.Bool
}

type archiveEntry struct {
	context eventdb.BlockContext
	events  []collator.Event
}

// New prepares a simulator over a state already holding the genesis.
// govern is the origin wired into the module for governance calls.
func New(st *state.State, gene *genesis.Genesis, govern remora.Address, archive *eventdb.EventDB, scen *Scenario) (*Simulator, error) {
	ops, err := newOperators(scen)
	if err != nil {
		return nil, errors.Wrap(err, "derive operators")
	}
	byAddr := make(map[remora.Address]*operator, len(ops))
	for _, op := range ops {
		byAddr[op.addr] = op
	}

	s := &Simulator{
		scen:      scen,
		gene:      gene,
		state:     st,
		module:    collator.New(st, govern),
		ledger:    builtin.Ledger.WithState(st),
		archive:   archive,
		ops:       ops,
		opsByAddr: byAddr,
		rnd:       mathrand.New(mathrand.NewSource(scen.Seed)), //#nosec G404
		sum:       &Summary{Rewards: new(big.Int)},
	}
	if err := s.fundOperators(); err != nil {
		return nil, errors.Wrap(err, "fund operators")
	}
	if err := s.publishSnapshot(); err != nil {
		return nil, errors.Wrap(err, "read selection state")
	}
	return s, nil
}

// Snapshot returns the latest published selection state.
func (s *Simulator) Snapshot() *Snapshot {
	return s.snapshot.Load().(*Snapshot)
}

// fundOperators drips every operator twice the bond plus the minimum
// balance, the way a faucet would.
func (s *Simulator) fundOperators() error {
	bond, err := s.module.CandidacyBond()
	if err != nil {
		return err
	}
	minBalance, err := s.ledger.MinimumBalance()
	if err != nil {
		return err
	}
	funding := new(big.Int).Lsh(bond, 1)
	funding.Add(funding, minBalance)
	for _, op := range s.ops {
		if err := s.ledger.Add(op.addr, funding); err != nil {
			return err
		}
	}
	return s.state.Commit()
}

// Run replays the scenario until done or the context is canceled. A
// canceled run still returns the partial summary.
func (s *Simulator) Run(ctx context.Context) (*Summary, error) {
	total := int64(s.scen.Sessions) * int64(s.scen.BlocksPerSession)
	bar := pb.New64(total).SetMaxWidth(90).Start()
	defer func() { bar.NotPrint = true }()

	var (
		goes       co.Goes
		wake       co.Signal
		lock       sync.Mutex
		queue      []*archiveEntry
		archiveErr error
		done       = make(chan struct{})
	)
	goes.Go(func() {
		archiveErr = s.archiveLoop(&wake, &lock, &queue, done)
	})
	flush := func() {
		close(done)
		goes.Wait()
	}

	var (
		number uint32
		launch = s.gene.Timestamp()
	)
loop:
	for sess := 0; sess < s.scen.Sessions; sess++ {
		for b := 0; b < s.scen.BlocksPerSession; b++ {
			number++
			blockTime := launch + uint64(number)*remora.BlockInterval
			blockCtx := eventdb.BlockContext{
				Number:  number,
				Time:    blockTime,
				Session: s.Snapshot().SessionIndex,
			}

			if b == 0 {
				if err := s.churn(sess); err != nil {
					flush()
					return nil, errors.Wrap(err, "churn")
				}
			}

			if err := s.authorBlock(blockTime / remora.BlockInterval); err != nil {
				flush()
				return nil, err
			}
			s.sum.Blocks++

			if b == s.scen.BlocksPerSession-1 {
				if err := s.rotate(); err != nil {
					flush()
					return nil, err
				}
			}

			if events := s.module.DrainEvents(); len(events) > 0 {
				lock.Lock()
				queue = append(queue, &archiveEntry{blockCtx, events})
				lock.Unlock()
				wake.Signal()
			}
			bar.Add64(1)

			select {
			case <-ctx.Done():
				logger.Info("simulation interrupted", "block", number)
				break loop
			default:
			}
		}
		if s.archiveFailed.Load() {
			break
		}
	}
	bar.Finish()

	flush()
	if archiveErr != nil {
		return nil, errors.Wrap(archiveErr, "archive events")
	}
	return s.sum, nil
}

// authorBlock rolls the scheduled author's reliability and pays the
// reward when the block is produced.
func (s *Simulator) authorBlock(slot uint64) error {
	author, ok, err := s.module.SlotAuthor(slot)
	if err != nil {
		return err
	}
	if !ok {
		s.sum.Stalled++
		return nil
	}
	if op := s.opsByAddr[author]; op != nil && s.rnd.Float64() >= op.reliability {
		s.sum.Missed++
		return nil
	}

	// fees accrue to the pot before the author takes its cut
	if err := s.ledger.Add(builtin.Pot, s.scen.blockFee()); err != nil {
		return err
	}
	paid, err := s.module.NoteAuthor(author)
	if err != nil {
		return err
	}
	s.sum.Authored++
	s.sum.Rewards.Add(s.sum.Rewards, paid)
	return nil
}

// churn decides per operator whether to submit keys, bond or leave this
// session. Keys submitted at session n activate with the rotation that
// closes it, so bonding waits for a later session.
func (s *Simulator) churn(sess int) error {
	for _, op := range s.ops {
		switch {
		case op.candidate:
			if s.rnd.Float64() < s.scen.LeaveRate {
				if _, err := s.module.LeaveIntent(op.addr); err != nil {
					return err
				}
				op.candidate = false
				s.sum.Left++
			}
		case op.keysQueuedAt >= 0 && op.keysQueuedAt < sess:
			if s.rnd.Float64() < s.scen.JoinRate {
				if _, err := s.module.RegisterAsCandidate(op.addr); err != nil {
					if errors.Is(err, collator.ErrTooManyCandidates) {
						logger.Debug("registration deferred", "addr", op.addr, "err", err)
						continue
					}
					return err
				}
				op.candidate = true
				s.sum.Registered++
			}
		case op.keysQueuedAt < 0:
			if s.rnd.Float64() < s.scen.JoinRate {
				if err := s.module.SetSessionKeys(op.addr, op.validatorID); err != nil {
					return err
				}
				op.keysQueuedAt = sess
			}
		}
	}
	return nil
}

// rotate closes the session, commits the state and publishes a fresh
// snapshot.
func (s *Simulator) rotate() error {
	session, err := s.module.NewSession()
	if err != nil {
		return errors.Wrap(err, "rotate session")
	}
	for _, ev := range session.Evicted {
		if op := s.opsByAddr[ev.Addr]; op != nil {
			op.candidate = false
		}
	}
	s.sum.Sessions++
	s.sum.Evicted += uint64(len(session.Evicted))

	if err := s.state.Commit(); err != nil {
		return errors.Wrap(err, "commit session")
	}
	return s.publishSnapshot()
}

func (s *Simulator) publishSnapshot() error {
	record, err := s.module.Authorities()
	if err != nil {
		return err
	}
	candidates, err := s.module.Candidates()
	if err != nil {
		return err
	}
	invulnerables, err := s.module.Invulnerables()
	if err != nil {
		return err
	}
	desired, err := s.module.DesiredCandidates()
	if err != nil {
		return err
	}
	bond, err := s.module.CandidacyBond()
	if err != nil {
		return err
	}
	baseline, err := s.module.EvictionBaseline()
	if err != nil {
		return err
	}
	tolerance, err := s.module.EvictionTolerance()
	if err != nil {
		return err
	}
	s.snapshot.Store(&Snapshot{
		Network:           s.gene.Name(),
		SessionIndex:      record.Index,
		Authorities:       len(record.Authorities),
		Candidates:        len(candidates),
		Invulnerables:     len(invulnerables),
		DesiredCandidates: desired,
		CandidacyBond:     bond,
		EvictionBaseline:  baseline,
		EvictionTolerance: tolerance,
	})
	return nil
}

// archiveLoop drains queued entries into the archive until done is
// closed and the queue is empty.
func (s *Simulator) archiveLoop(wake *co.Signal, lock *sync.Mutex, queue *[]*archiveEntry, done <-chan struct{}) error {
	drain := func() []*archiveEntry {
		lock.Lock()
		entries := *queue
		*queue = nil
		lock.Unlock()
		return entries
	}
	for {
		entries := drain()
		if len(entries) == 0 {
			select {
			case <-wake.NewWaiter().C():
				continue
			case <-done:
				if entries = drain(); len(entries) == 0 {
					return nil
				}
			}
		}
		for _, entry := range entries {
			if err := s.archive.Prepare(entry.context).Insert(entry.events).Commit(); err != nil {
				s.archiveFailed.Store(true)
				return err
			}
		}
	}
}
