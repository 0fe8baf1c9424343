// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package params implements the governance parameter store, a plain
// key to big.Int mapping in the world state.
package params

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

// Params binder of the `Params` module.
type Params struct {
	addr  remora.Address
	state *state.State
}

// New create a new instance.
func New(addr remora.Address, state *state.State) *Params {
	return &Params{addr, state}
}

// Get gets the value for the given key. An unset key reads as zero.
func (p *Params) Get(key remora.Bytes32) (*big.Int, error) {
	var v big.Int
	if err := p.state.DecodeStorage(p.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &v)
	}); err != nil {
		return nil, err
	}
	return &v, nil
}

// Set sets the value for the given key. A zero value clears the slot.
func (p *Params) Set(key remora.Bytes32, value *big.Int) error {
	return p.state.EncodeStorage(p.addr, key, func() ([]byte, error) {
		if value.Sign() == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(value)
	})
}
