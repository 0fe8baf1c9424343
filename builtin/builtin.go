// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin hosts the native modules of the collator-selection
// subsystem. Each module owns a fixed namespace address in the world
// state and is bound to a state instance via WithState.
package builtin

import (
	"github.com/remora-chain/remora/builtin/keys"
	"github.com/remora-chain/remora/builtin/ledger"
	"github.com/remora-chain/remora/builtin/params"
	"github.com/remora-chain/remora/builtin/roster"
	"github.com/remora-chain/remora/builtin/stats"
	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

// Builtin modules binding.
var (
	Params = &paramsModule{mustLoadModule("Params")}
	Ledger = &ledgerModule{mustLoadModule("Ledger")}
	Roster = &rosterModule{mustLoadModule("Roster")}
	Stats  = &statsModule{mustLoadModule("Stats")}
	Keys   = &keysModule{mustLoadModule("Keys")}

	// Pot is the account accumulating fee-derived rewards to be split
	// with block authors. It is a plain ledger account, not a module.
	Pot = mustLoadModule("Pot").Address
)

type (
	paramsModule struct{ module }
	ledgerModule struct{ module }
	rosterModule struct{ module }
	statsModule  struct{ module }
	keysModule   struct{ module }
)

func (p *paramsModule) WithState(state *state.State) *params.Params {
	return params.New(p.Address, state)
}

func (l *ledgerModule) WithState(state *state.State) *ledger.Ledger {
	return ledger.New(l.Address, state)
}

func (r *rosterModule) WithState(state *state.State) *roster.Roster {
	return roster.New(r.Address, state)
}

func (s *statsModule) WithState(state *state.State) *stats.Stats {
	return stats.New(s.Address, state)
}

func (k *keysModule) WithState(state *state.State) *keys.Keys {
	return keys.New(k.Address, state)
}

// module is a native module bound to a fixed namespace address.
type module struct {
	Name    string
	Address remora.Address
}

// mustLoadModule derives the namespace address for a named module.
// Addresses are the first 20 bytes of blake2b("remora.builtin.<name>"),
// which keeps them disjoint from regular accounts in practice.
func mustLoadModule(name string) module {
	hash := remora.Blake2b([]byte("remora.builtin." + name))
	return module{
		Name:    name,
		Address: remora.BytesToAddress(hash[:remora.AddressLength]),
	}
}
