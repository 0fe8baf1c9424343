// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remora-chain/remora/builtin"
	"github.com/remora-chain/remora/collator"
	"github.com/remora-chain/remora/genesis"
	"github.com/remora-chain/remora/lvldb"
	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

func newState(t *testing.T) *state.State {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return state.New(db)
}

func TestNewDevnet(t *testing.T) {
	gene := genesis.NewDevnet()
	assert.Equal(t, "devnet", gene.Name())
	assert.False(t, gene.ID().IsZero())

	st := newState(t)
	require.NoError(t, gene.Build(st))

	ldg := builtin.Ledger.WithState(st)
	for _, a := range genesis.DevAccounts() {
		balance, err := ldg.FreeBalance(a.Address)
		require.NoError(t, err)
		assert.True(t, balance.Sign() > 0, "dev account must be funded")
	}
	potFree, err := ldg.FreeBalance(builtin.Pot)
	require.NoError(t, err)
	assert.True(t, potFree.Sign() > 0, "pot must carry a float")

	invulnerables, err := builtin.Roster.WithState(st).Invulnerables()
	require.NoError(t, err)
	assert.Len(t, invulnerables, 3)

	record, err := builtin.Roster.WithState(st).Authorities()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), record.Index)
	assert.Equal(t, invulnerables, record.Authorities)
}

func TestDevnetKeysActiveFromLaunch(t *testing.T) {
	st := newState(t)
	require.NoError(t, genesis.NewDevnet().Build(st))

	// a non-invulnerable dev account registers right away
	m := collator.New(st, genesis.DevAccounts()[0].Address)
	count, err := m.RegisterAsCandidate(genesis.DevAccounts()[4].Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	reserved, err := builtin.Ledger.WithState(st).ReservedBalance(genesis.DevAccounts()[4].Address)
	require.NoError(t, err)
	assert.Equal(t, remora.InitialCandidacyBond, reserved)
}

func TestDevnetDeterministicID(t *testing.T) {
	assert.Equal(t, genesis.NewDevnet().ID(), genesis.NewDevnet().ID())
	assert.NotEqual(t, genesis.NewDevnet().ID(), genesis.NewTestnet().ID())
}

func TestNewTestnet(t *testing.T) {
	gene := genesis.NewTestnet()
	assert.Equal(t, "testnet", gene.Name())

	st := newState(t)
	require.NoError(t, gene.Build(st))

	invulnerables, err := builtin.Roster.WithState(st).Invulnerables()
	require.NoError(t, err)
	assert.Len(t, invulnerables, 3)

	bond, err := builtin.Params.WithState(st).Get(remora.KeyCandidacyBond)
	require.NoError(t, err)
	assert.Equal(t, remora.InitialCandidacyBond.String(), bond.String())

	desired, err := builtin.Params.WithState(st).Get(remora.KeyDesiredCandidates)
	require.NoError(t, err)
	assert.Equal(t, remora.InitialDesiredCandidates, desired)
}
