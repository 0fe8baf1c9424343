// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remora-chain/remora/lvldb"
	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

func newTestLedger(t *testing.T) (*Ledger, *state.State) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	ldg := New(remora.BytesToAddress([]byte("ldg")), st)
	require.NoError(t, ldg.Initialize(big.NewInt(10)))
	return ldg, st
}

func TestReserveUnreserve(t *testing.T) {
	ldg, _ := newTestLedger(t)
	acc := remora.BytesToAddress([]byte("a1"))

	require.NoError(t, ldg.Add(acc, big.NewInt(100)))

	// cannot reserve more than the free balance
	assert.ErrorIs(t, ldg.Reserve(acc, big.NewInt(101)), ErrInsufficientBalance)

	require.NoError(t, ldg.Reserve(acc, big.NewInt(60)))
	free, _ := ldg.FreeBalance(acc)
	reserved, _ := ldg.ReservedBalance(acc)
	assert.Equal(t, big.NewInt(40), free)
	assert.Equal(t, big.NewInt(60), reserved)

	actual, err := ldg.Unreserve(acc, big.NewInt(60))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(60), actual)

	free, _ = ldg.FreeBalance(acc)
	reserved, _ = ldg.ReservedBalance(acc)
	assert.Equal(t, big.NewInt(100), free)
	assert.Equal(t, 0, reserved.Sign())
}

func TestUnreserveShortfall(t *testing.T) {
	ldg, _ := newTestLedger(t)
	acc := remora.BytesToAddress([]byte("a1"))

	require.NoError(t, ldg.Add(acc, big.NewInt(100)))
	require.NoError(t, ldg.Reserve(acc, big.NewInt(30)))

	// asking for more than is reserved releases only what is there
	actual, err := ldg.Unreserve(acc, big.NewInt(50))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(30), actual)

	actual, err = ldg.Unreserve(acc, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, 0, actual.Sign())
}

func TestTransferKeepAlive(t *testing.T) {
	ldg, _ := newTestLedger(t)
	sender := remora.BytesToAddress([]byte("a1"))
	recipient := remora.BytesToAddress([]byte("a2"))

	require.NoError(t, ldg.Add(sender, big.NewInt(100)))

	// sender must retain the minimum balance
	assert.ErrorIs(t, ldg.TransferKeepAlive(sender, recipient, big.NewInt(95)), ErrInsufficientBalance)

	require.NoError(t, ldg.TransferKeepAlive(sender, recipient, big.NewInt(90)))
	senderBal, _ := ldg.FreeBalance(sender)
	recipientBal, _ := ldg.FreeBalance(recipient)
	assert.Equal(t, big.NewInt(10), senderBal)
	assert.Equal(t, big.NewInt(90), recipientBal)

	// zero transfer is a no-op even for a drained sender
	require.NoError(t, ldg.TransferKeepAlive(sender, recipient, &big.Int{}))
}

func TestMinimumBalance(t *testing.T) {
	ldg, _ := newTestLedger(t)

	minBalance, err := ldg.MinimumBalance()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), minBalance)
}
