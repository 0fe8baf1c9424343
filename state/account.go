// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/remora-chain/remora/kv"
	"github.com/remora-chain/remora/remora"
)

// Account is the Remora account model.
//
// Balance is the free balance, spendable and reservable.
// Reserved is the balance held for candidacy bonds. It is moved back
// to Balance when the bond is released.
type Account struct {
	Balance  *big.Int
	Reserved *big.Int
}

// IsEmpty returns if an account is empty.
// An empty account has zero balance and zero reserved balance.
func (a *Account) IsEmpty() bool {
	return a.Balance.Sign() == 0 && a.Reserved.Sign() == 0
}

func emptyAccount() *Account {
	return &Account{Balance: &big.Int{}, Reserved: &big.Int{}}
}

// loadAccount load an account object by address, an empty account is returned
// if the address is unknown.
func loadAccount(src kv.Getter, addr remora.Address) (*Account, error) {
	data, err := src.Get(addr[:])
	if err != nil {
		if src.IsNotFound(err) {
			return emptyAccount(), nil
		}
		return nil, err
	}
	var a Account
	if err := rlp.DecodeBytes(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// saveAccount save account into the putter, or delete if the account is empty.
func saveAccount(dst kv.Putter, addr remora.Address, a *Account) error {
	if a.IsEmpty() {
		return dst.Delete(addr[:])
	}
	data, err := rlp.EncodeToBytes(a)
	if err != nil {
		return err
	}
	return dst.Put(addr[:], data)
}
