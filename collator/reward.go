// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package collator

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/remora-chain/remora/builtin"
	"github.com/remora-chain/remora/builtin/ledger"
	"github.com/remora-chain/remora/remora"
)

// NoteAuthor credits the author of the block being sealed. Half of the
// pot balance above the minimum is paid out and the author's session
// block count is bumped. Returns the amount paid.
//
// A transfer rejected by the ledger never fails the hook; the author
// still gets credit for the block.
func (m *Module) NoteAuthor(author remora.Address) (paid *big.Int, err error) {
	err = m.runAtomic(func() error {
		paid, err = m.payReward(author)
		if err != nil {
			return err
		}
		return m.stats.NoteBlock(author)
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

func (m *Module) payReward(author remora.Address) (*big.Int, error) {
	free, err := m.ledger.FreeBalance(builtin.Pot)
	if err != nil {
		return nil, err
	}
	minBalance, err := m.ledger.MinimumBalance()
	if err != nil {
		return nil, err
	}
	payable := new(big.Int).Sub(free, minBalance)
	if payable.Sign() <= 0 {
		return &big.Int{}, nil
	}
	pay := payable.Rsh(payable, 1)
	if pay.Sign() == 0 {
		return &big.Int{}, nil
	}

	if err := m.ledger.TransferKeepAlive(builtin.Pot, author, pay); err != nil {
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			metricRewards().AddWithLabel(1, map[string]string{"outcome": "skipped"})
			logger.Debug("reward transfer skipped", "author", author, "amount", pay)
			return &big.Int{}, nil
		}
		return nil, err
	}

	m.emit(RewardPaid{Author: author, Amount: pay})
	metricRewards().AddWithLabel(1, map[string]string{"outcome": "paid"})
	logger.Debug("author rewarded", "author", author, "amount", pay)
	return pay, nil
}
