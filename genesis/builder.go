// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

// Builder helper to build genesis state.
type Builder struct {
	timestamp uint64
	extraData [28]byte

	stateProcs []func(state *state.State) error
}

// Timestamp set launch timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// ExtraData set extra data, which salts the network ID.
func (b *Builder) ExtraData(data [28]byte) *Builder {
	b.extraData = data
	return b
}

// State add a state process.
func (b *Builder) State(proc func(state *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// ComputeID compute the network ID from the launch parameters.
func (b *Builder) ComputeID() (remora.Bytes32, error) {
	raw, err := rlp.EncodeToBytes([]interface{}{b.timestamp, b.extraData[:]})
	if err != nil {
		return remora.Bytes32{}, err
	}
	return remora.Blake2b(raw), nil
}

// Build apply the presets to the given state and commit it.
func (b *Builder) Build(st *state.State) error {
	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			return errors.Wrap(err, "state process")
		}
	}
	return st.Commit()
}
