// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"math/big"

	"github.com/remora-chain/remora/collator"
	"github.com/remora-chain/remora/remora"
)

// BlockContext locates archived rows in chain history.
type BlockContext struct {
	Number  uint32
	Time    uint64
	Session uint64
}

// Selection represents an archived selection event.
type Selection struct {
	BlockNumber uint32
	BlockTime   uint64
	Session     uint64
	Index       uint32
	Name        string
	Addr        *remora.Address
	Amount      *big.Int
	Count       uint64
}

// newSelection flattens a lifecycle event into an archive row.
func newSelection(ctx BlockContext, index uint32, ev collator.Event) *Selection {
	row := &Selection{
		BlockNumber: ctx.Number,
		BlockTime:   ctx.Time,
		Session:     ctx.Session,
		Index:       index,
		Name:        ev.Name(),
	}
	switch ev := ev.(type) {
	case collator.CandidateAdded:
		row.Addr = &ev.Addr
		row.Amount = ev.Deposit
	case collator.CandidateRemoved:
		row.Addr = &ev.Addr
		row.Amount = ev.Deposit
	case collator.CandidateEvicted:
		row.Addr = &ev.Addr
		row.Amount = ev.Deposit
		row.Count = uint64(ev.Blocks)
	case collator.SessionAssembled:
		row.Session = ev.Index
		row.Count = ev.Authorities
	case collator.InvulnerablesSet:
		row.Count = uint64(len(ev.List))
	case collator.DesiredCandidatesSet:
		row.Count = ev.Max
	case collator.CandidacyBondSet:
		row.Amount = ev.Amount
	case collator.EvictionBaselineSet:
		row.Count = uint64(ev.Baseline)
	case collator.EvictionToleranceSet:
		row.Count = uint64(ev.Tolerance)
	}
	return row
}

// Reward represents an archived author payout.
type Reward struct {
	BlockNumber uint32
	BlockTime   uint64
	Session     uint64
	Author      remora.Address
	Amount      *big.Int
}

func newReward(ctx BlockContext, ev collator.RewardPaid) *Reward {
	return &Reward{
		BlockNumber: ctx.Number,
		BlockTime:   ctx.Time,
		Session:     ctx.Session,
		Author:      ev.Author,
		Amount:      ev.Amount,
	}
}

// RangeType the unit of a filter range.
type RangeType string

// Range units.
const (
	Block   RangeType = "Block"
	Time    RangeType = "Time"
	Session RangeType = "Session"
)

// OrderType result ordering.
type OrderType string

// Orderings.
const (
	ASC  OrderType = "ASC"
	DESC OrderType = "DESC"
)

// Range constrains results to a window of blocks, time or sessions.
type Range struct {
	Unit RangeType `json:"unit"`
	From uint64    `json:"from"`
	To   uint64    `json:"to"`
}

// Options paging options.
type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// SelectionFilter filter of selection rows.
type SelectionFilter struct {
	Range   *Range          `json:"range"`
	Names   []string        `json:"names"`
	Addr    *remora.Address `json:"addr"`
	Order   OrderType       `json:"order"`
	Options *Options        `json:"options"`
}

// RewardFilter filter of reward rows.
type RewardFilter struct {
	Range   *Range          `json:"range"`
	Author  *remora.Address `json:"author"`
	Order   OrderType       `json:"order"`
	Options *Options        `json:"options"`
}
