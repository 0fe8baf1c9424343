// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remora-chain/remora/lvldb"
	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

func newTestStats(t *testing.T) *Stats {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(remora.BytesToAddress([]byte("sts")), state.New(db))
}

func TestNoteBlock(t *testing.T) {
	sts := newTestStats(t)
	a1 := remora.BytesToAddress([]byte("a1"))
	a2 := remora.BytesToAddress([]byte("a2"))

	require.NoError(t, sts.Reset([]remora.Address{a1, a2}))

	require.NoError(t, sts.NoteBlock(a1))
	require.NoError(t, sts.NoteBlock(a1))
	require.NoError(t, sts.NoteBlock(a2))

	count, err := sts.Count(a1)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), count)

	tallies, err := sts.Tallies()
	require.NoError(t, err)
	assert.Equal(t, []Tally{{a1, 2}, {a2, 1}}, tallies)
}

func TestNoteBlockUntracked(t *testing.T) {
	sts := newTestStats(t)
	a1 := remora.BytesToAddress([]byte("a1"))

	// an author outside the seeded set joins the index
	require.NoError(t, sts.NoteBlock(a1))

	tallies, err := sts.Tallies()
	require.NoError(t, err)
	assert.Equal(t, []Tally{{a1, 1}}, tallies)
}

func TestReset(t *testing.T) {
	sts := newTestStats(t)
	a1 := remora.BytesToAddress([]byte("a1"))
	a2 := remora.BytesToAddress([]byte("a2"))
	a3 := remora.BytesToAddress([]byte("a3"))

	require.NoError(t, sts.Reset([]remora.Address{a1, a2}))
	require.NoError(t, sts.NoteBlock(a1))
	require.NoError(t, sts.NoteBlock(a2))

	// a2 stays tracked across the reset but its counter restarts at 0
	require.NoError(t, sts.Reset([]remora.Address{a2, a3}))

	tallies, err := sts.Tallies()
	require.NoError(t, err)
	assert.Equal(t, []Tally{{a2, 0}, {a3, 0}}, tallies)

	// a dropped account's counter is actually cleared, not just hidden
	count, err := sts.Count(a1)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNoteBlockSaturates(t *testing.T) {
	sts := newTestStats(t)
	a1 := remora.BytesToAddress([]byte("a1"))

	require.NoError(t, sts.Reset([]remora.Address{a1}))
	require.NoError(t, sts.setCount(a1, math.MaxUint32))

	require.NoError(t, sts.NoteBlock(a1))

	count, err := sts.Count(a1)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), count)
}

func TestResetManyPages(t *testing.T) {
	sts := newTestStats(t)

	var tracked []remora.Address
	for i := range ClearPageSize*2 + 3 {
		tracked = append(tracked, remora.BytesToAddress([]byte{byte(i), byte(i >> 8), 0xaa}))
	}
	require.NoError(t, sts.Reset(tracked))
	for _, addr := range tracked {
		require.NoError(t, sts.NoteBlock(addr))
	}

	require.NoError(t, sts.Reset(nil))

	tallies, err := sts.Tallies()
	require.NoError(t, err)
	assert.Empty(t, tallies)

	for _, addr := range tracked {
		count, err := sts.Count(addr)
		require.NoError(t, err)
		assert.Zero(t, count)
	}
}
