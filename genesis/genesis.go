// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis builds the launch state of a network: funded
// accounts, governance params, the initial invulnerable set and the
// session keys active from block one.
package genesis

import (
	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

// Genesis to build genesis state.
type Genesis struct {
	builder *Builder
	id      remora.Bytes32
	name    string
}

// Build build the genesis state.
func (g *Genesis) Build(st *state.State) error {
	return g.builder.Build(st)
}

// ID returns the network ID.
func (g *Genesis) ID() remora.Bytes32 {
	return g.id
}

// Timestamp returns the launch timestamp.
func (g *Genesis) Timestamp() uint64 {
	return g.builder.timestamp
}

// Name returns the network name.
func (g *Genesis) Name() string {
	return g.name
}
