// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keys

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remora-chain/remora/lvldb"
	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

func newTestKeys(t *testing.T) *Keys {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(remora.BytesToAddress([]byte("key")), state.New(db))
}

func randValidatorID(t *testing.T) ValidatorID {
	pk, err := crypto.GenerateKey()
	require.NoError(t, err)
	return BytesToValidatorID(crypto.CompressPubkey(&pk.PublicKey))
}

func TestSetKeysLifecycle(t *testing.T) {
	ks := newTestKeys(t)
	acc := remora.BytesToAddress([]byte("a1"))
	id := randValidatorID(t)

	_, ok, err := ks.Convert(acc)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ks.SetKeys(acc, id))

	// associated right away, registered only after rotation
	got, ok, err := ks.Convert(acc)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, got)

	registered, err := ks.IsRegistered(id)
	require.NoError(t, err)
	assert.False(t, registered)

	require.NoError(t, ks.ActivateQueued())

	registered, err = ks.IsRegistered(id)
	require.NoError(t, err)
	assert.True(t, registered)

	// re-setting the same key is a no-op
	require.NoError(t, ks.SetKeys(acc, id))
	registered, err = ks.IsRegistered(id)
	require.NoError(t, err)
	assert.True(t, registered)
}

func TestSetKeysInvalid(t *testing.T) {
	ks := newTestKeys(t)
	acc := remora.BytesToAddress([]byte("a1"))

	var junk ValidatorID
	junk[0] = 0x05 // not a valid compressed key prefix
	assert.Error(t, ks.SetKeys(acc, junk))
}

func TestSetKeysClaimed(t *testing.T) {
	ks := newTestKeys(t)
	a1 := remora.BytesToAddress([]byte("a1"))
	a2 := remora.BytesToAddress([]byte("a2"))
	id := randValidatorID(t)

	require.NoError(t, ks.SetKeys(a1, id))
	assert.ErrorIs(t, ks.SetKeys(a2, id), ErrKeyClaimed)
}

func TestSetKeysReplace(t *testing.T) {
	ks := newTestKeys(t)
	acc := remora.BytesToAddress([]byte("a1"))
	oldID := randValidatorID(t)
	newID := randValidatorID(t)

	require.NoError(t, ks.SetKeys(acc, oldID))
	require.NoError(t, ks.ActivateQueued())

	require.NoError(t, ks.SetKeys(acc, newID))

	// the old ID is released immediately
	registered, err := ks.IsRegistered(oldID)
	require.NoError(t, err)
	assert.False(t, registered)

	got, ok, err := ks.Convert(acc)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, newID, got)

	require.NoError(t, ks.ActivateQueued())
	registered, err = ks.IsRegistered(newID)
	require.NoError(t, err)
	assert.True(t, registered)

	// and the released ID can be claimed by someone else
	require.NoError(t, ks.SetKeys(remora.BytesToAddress([]byte("a2")), oldID))
}

func TestClearKeys(t *testing.T) {
	ks := newTestKeys(t)
	acc := remora.BytesToAddress([]byte("a1"))
	id := randValidatorID(t)

	require.NoError(t, ks.SetKeys(acc, id))
	require.NoError(t, ks.ActivateQueued())
	require.NoError(t, ks.ClearKeys(acc))

	_, ok, err := ks.Convert(acc)
	require.NoError(t, err)
	assert.False(t, ok)

	registered, err := ks.IsRegistered(id)
	require.NoError(t, err)
	assert.False(t, registered)

	// clearing an account without keys is fine
	require.NoError(t, ks.ClearKeys(acc))
}

func TestActivateSkipsReleased(t *testing.T) {
	ks := newTestKeys(t)
	acc := remora.BytesToAddress([]byte("a1"))
	id := randValidatorID(t)

	require.NoError(t, ks.SetKeys(acc, id))
	require.NoError(t, ks.ClearKeys(acc))
	require.NoError(t, ks.ActivateQueued())

	// the queued entry was orphaned by the clear and must not revive
	registered, err := ks.IsRegistered(id)
	require.NoError(t, err)
	assert.False(t, registered)
}
