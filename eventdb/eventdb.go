// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb archives selection events and author rewards in
// sqlite, queryable by block, time, session or subject account.
package eventdb

import (
	"context"
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/remora-chain/remora/collator"
	"github.com/remora-chain/remora/remora"
)

// EventDB the archive.
type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open the archive at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(selectionTableSchema + rewardTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create an archive in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close close the archive.
func (db *EventDB) Close() {
	db.db.Close()
}

// Path returns the archive file path.
func (db *EventDB) Path() string {
	return db.path
}

// Prepare opens a write batch for the block being sealed. Events
// inserted into the batch are archived atomically on Commit.
func (db *EventDB) Prepare(ctx BlockContext) *BlockBatch {
	return &BlockBatch{
		db:  db.db,
		ctx: ctx,
	}
}

// FilterSelections queries archived selection events.
func (db *EventDB) FilterSelections(ctx context.Context, filter *SelectionFilter) ([]*Selection, error) {
	if filter == nil {
		return db.querySelections(ctx, "SELECT * FROM selection")
	}
	var args []interface{}
	stmt := "SELECT * FROM selection WHERE 1"
	stmt, args = appendRange(stmt, args, filter.Range)
	if len(filter.Names) > 0 {
		stmt += " AND ( 1=0"
		for _, name := range filter.Names {
			args = append(args, name)
			stmt += " OR name = ?"
		}
		stmt += " )"
	}
	if filter.Addr != nil {
		args = append(args, filter.Addr.Bytes())
		stmt += " AND addr = ? "
	}

	if filter.Order == DESC {
		stmt += " ORDER BY blockNumber DESC,eventIndex DESC "
	} else {
		stmt += " ORDER BY blockNumber ASC,eventIndex ASC "
	}

	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.querySelections(ctx, stmt, args...)
}

// FilterRewards queries archived author payouts.
func (db *EventDB) FilterRewards(ctx context.Context, filter *RewardFilter) ([]*Reward, error) {
	if filter == nil {
		return db.queryRewards(ctx, "SELECT * FROM reward")
	}
	var args []interface{}
	stmt := "SELECT * FROM reward WHERE 1"
	stmt, args = appendRange(stmt, args, filter.Range)
	if filter.Author != nil {
		args = append(args, filter.Author.Bytes())
		stmt += " AND author = ? "
	}

	if filter.Order == DESC {
		stmt += " ORDER BY blockNumber DESC "
	} else {
		stmt += " ORDER BY blockNumber ASC "
	}

	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryRewards(ctx, stmt, args...)
}

// Truncate drops all rows at or above the given block number. Used to
// unwind the archive past an abandoned chain segment.
func (db *EventDB) Truncate(fromBlock uint32) error {
	if _, err := db.db.Exec("DELETE FROM selection WHERE blockNumber >= ?;", fromBlock); err != nil {
		return err
	}
	_, err := db.db.Exec("DELETE FROM reward WHERE blockNumber >= ?;", fromBlock)
	return err
}

func appendRange(stmt string, args []interface{}, r *Range) (string, []interface{}) {
	if r == nil {
		return stmt, args
	}
	condition := "blockNumber"
	switch r.Unit {
	case Time:
		condition = "blockTime"
	case Session:
		condition = "sessionIndex"
	}
	args = append(args, r.From)
	stmt += " AND " + condition + " >= ? "
	if r.To >= r.From {
		args = append(args, r.To)
		stmt += " AND " + condition + " <= ? "
	}
	return stmt, args
}

func (db *EventDB) querySelections(ctx context.Context, stmt string, args ...interface{}) ([]*Selection, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var selections []*Selection
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			blockNumber uint32
			blockTime   uint64
			session     uint64
			index       uint32
			name        string
			addr        []byte
			amount      []byte
			count       uint64
		)
		if err := rows.Scan(
			&blockNumber,
			&blockTime,
			&session,
			&index,
			&name,
			&addr,
			&amount,
			&count,
		); err != nil {
			return nil, err
		}
		selection := &Selection{
			BlockNumber: blockNumber,
			BlockTime:   blockTime,
			Session:     session,
			Index:       index,
			Name:        name,
			Count:       count,
		}
		if len(addr) > 0 {
			a := remora.BytesToAddress(addr)
			selection.Addr = &a
		}
		if len(amount) > 0 {
			selection.Amount = new(big.Int).SetBytes(amount)
		}
		selections = append(selections, selection)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return selections, nil
}

func (db *EventDB) queryRewards(ctx context.Context, stmt string, args ...interface{}) ([]*Reward, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rewards []*Reward
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			blockNumber uint32
			blockTime   uint64
			session     uint64
			author      []byte
			amount      []byte
		)
		if err := rows.Scan(
			&blockNumber,
			&blockTime,
			&session,
			&author,
			&amount,
		); err != nil {
			return nil, err
		}
		rewards = append(rewards, &Reward{
			BlockNumber: blockNumber,
			BlockTime:   blockTime,
			Session:     session,
			Author:      remora.BytesToAddress(author),
			Amount:      new(big.Int).SetBytes(amount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rewards, nil
}

func addrValue(addr *remora.Address) []byte {
	if addr == nil {
		return nil
	}
	return addr.Bytes()
}

func amountValue(amount *big.Int) []byte {
	if amount == nil {
		return nil
	}
	return amount.Bytes()
}

// BlockBatch collects the events of one block for atomic archival.
type BlockBatch struct {
	db         *sql.DB
	ctx        BlockContext
	selections []*Selection
	rewards    []*Reward
}

// Insert stages drained module events. Reward payouts land in the
// reward table, everything else in the selection table.
func (bb *BlockBatch) Insert(events []collator.Event) *BlockBatch {
	for _, ev := range events {
		if paid, ok := ev.(collator.RewardPaid); ok {
			bb.rewards = append(bb.rewards, newReward(bb.ctx, paid))
			continue
		}
		bb.selections = append(bb.selections, newSelection(bb.ctx, uint32(len(bb.selections)), ev))
	}
	return bb
}

func (bb *BlockBatch) execInTx(proc func(*sql.Tx) error) (err error) {
	tx, err := bb.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Commit writes the staged rows in one transaction.
func (bb *BlockBatch) Commit() error {
	return bb.execInTx(func(tx *sql.Tx) error {
		for _, s := range bb.selections {
			if _, err := tx.Exec("INSERT INTO selection(blockNumber ,blockTime ,sessionIndex ,eventIndex ,name ,addr ,amount ,count) VALUES ( ?, ?, ?, ?, ?, ?, ?, ?);",
				s.BlockNumber,
				s.BlockTime,
				s.Session,
				s.Index,
				s.Name,
				addrValue(s.Addr),
				amountValue(s.Amount),
				s.Count,
			); err != nil {
				return err
			}
		}
		for _, r := range bb.rewards {
			if _, err := tx.Exec("INSERT INTO reward(blockNumber ,blockTime ,sessionIndex ,author ,amount) VALUES ( ?, ?, ?, ?, ?);",
				r.BlockNumber,
				r.BlockTime,
				r.Session,
				r.Author.Bytes(),
				r.Amount.Bytes(),
			); err != nil {
				return err
			}
		}
		return nil
	})
}
