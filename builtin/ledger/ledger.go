// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger implements the stake ledger. Every account carries a
// free and a reserved balance; candidacy bonds are moved between the
// two and never destroyed.
package ledger

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

var (
	minBalanceKey = remora.Blake2b([]byte("min-balance"))

	// ErrInsufficientBalance is returned when an account's free balance
	// cannot cover a reserve or transfer.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Ledger binder of the `Ledger` module.
type Ledger struct {
	addr  remora.Address
	state *state.State
}

// New create a new instance.
func New(addr remora.Address, state *state.State) *Ledger {
	return &Ledger{addr, state}
}

// Initialize sets the minimum balance every account must retain to stay
// alive. Called once at genesis.
func (l *Ledger) Initialize(minBalance *big.Int) error {
	return l.state.EncodeStorage(l.addr, minBalanceKey, func() ([]byte, error) {
		if minBalance.Sign() == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(minBalance)
	})
}

// MinimumBalance returns the minimum balance an account must retain in
// transfers that keep the sender alive.
func (l *Ledger) MinimumBalance() (*big.Int, error) {
	var v big.Int
	if err := l.state.DecodeStorage(l.addr, minBalanceKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &v)
	}); err != nil {
		return nil, err
	}
	return &v, nil
}

// FreeBalance returns the spendable balance of addr.
func (l *Ledger) FreeBalance(addr remora.Address) (*big.Int, error) {
	return l.state.GetBalance(addr)
}

// ReservedBalance returns the balance of addr held for bonds.
func (l *Ledger) ReservedBalance(addr remora.Address) (*big.Int, error) {
	return l.state.GetReserved(addr)
}

// Add mints amount into the free balance of addr. Used by genesis
// allocations and fee accrual into the pot.
func (l *Ledger) Add(addr remora.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	balance, err := l.state.GetBalance(addr)
	if err != nil {
		return err
	}
	return l.state.SetBalance(addr, new(big.Int).Add(balance, amount))
}

// Reserve moves amount from the free to the reserved balance of addr.
func (l *Ledger) Reserve(addr remora.Address, amount *big.Int) error {
	balance, err := l.state.GetBalance(addr)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	reserved, err := l.state.GetReserved(addr)
	if err != nil {
		return err
	}
	if err := l.state.SetBalance(addr, new(big.Int).Sub(balance, amount)); err != nil {
		return err
	}
	return l.state.SetReserved(addr, new(big.Int).Add(reserved, amount))
}

// Unreserve moves up to amount from the reserved back to the free
// balance of addr, and returns the amount actually unreserved. It is
// less than amount only if the reserved balance falls short.
func (l *Ledger) Unreserve(addr remora.Address, amount *big.Int) (*big.Int, error) {
	reserved, err := l.state.GetReserved(addr)
	if err != nil {
		return nil, err
	}
	actual := amount
	if reserved.Cmp(amount) < 0 {
		actual = reserved
	}
	if actual.Sign() == 0 {
		return &big.Int{}, nil
	}
	balance, err := l.state.GetBalance(addr)
	if err != nil {
		return nil, err
	}
	if err := l.state.SetReserved(addr, new(big.Int).Sub(reserved, actual)); err != nil {
		return nil, err
	}
	if err := l.state.SetBalance(addr, new(big.Int).Add(balance, actual)); err != nil {
		return nil, err
	}
	return actual, nil
}

// TransferKeepAlive moves amount of free balance from sender to
// recipient, requiring the sender to retain at least the minimum
// balance afterwards. A zero amount is a no-op.
func (l *Ledger) TransferKeepAlive(sender, recipient remora.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	senderBalance, err := l.state.GetBalance(sender)
	if err != nil {
		return err
	}
	minBalance, err := l.MinimumBalance()
	if err != nil {
		return err
	}
	remaining := new(big.Int).Sub(senderBalance, amount)
	if remaining.Cmp(minBalance) < 0 {
		return ErrInsufficientBalance
	}
	if sender == recipient {
		return nil
	}
	recipientBalance, err := l.state.GetBalance(recipient)
	if err != nil {
		return err
	}
	if err := l.state.SetBalance(sender, remaining); err != nil {
		return err
	}
	return l.state.SetBalance(recipient, new(big.Int).Add(recipientBalance, amount))
}
