// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package roster

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remora-chain/remora/lvldb"
	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

func M(a ...interface{}) []interface{} {
	return a
}

func newTestRoster(t *testing.T) *Roster {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(remora.BytesToAddress([]byte("rst")), state.New(db))
}

func TestCandidateList(t *testing.T) {
	rst := newTestRoster(t)

	c1 := remora.BytesToAddress([]byte("c1"))
	c2 := remora.BytesToAddress([]byte("c2"))
	c3 := remora.BytesToAddress([]byte("c3"))
	bond := big.NewInt(1000)

	tests := []struct {
		ret      interface{}
		expected interface{}
	}{
		{M(rst.Add(c1, bond)), M(true, nil)},
		{M(rst.Add(c2, bond)), M(true, nil)},
		{M(rst.Add(c3, bond)), M(true, nil)},
		{M(rst.Add(c2, bond)), M(false, nil)},
		{M(rst.Count()), M(uint64(3), nil)},
		{M(rst.Candidates(10)), M([]*Candidate{
			{c1, bond}, {c2, bond}, {c3, bond},
		}, nil)},
		{M(rst.Candidates(2)), M([]*Candidate{
			{c1, bond}, {c2, bond},
		}, nil)},
		{M(rst.Get(c2)), M(&Candidate{c2, bond}, true, nil)},
		{M(rst.Remove(c2)), M(bond, true, nil)},
		{M(rst.Get(c2)), M((*Candidate)(nil), false, nil)},
		{M(rst.Remove(c2)), M((*big.Int)(nil), false, nil)},
		{M(rst.Count()), M(uint64(2), nil)},
		{M(rst.Candidates(10)), M([]*Candidate{
			{c1, bond}, {c3, bond},
		}, nil)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.ret)
	}
}

func TestRemoveHeadAndTail(t *testing.T) {
	rst := newTestRoster(t)

	c1 := remora.BytesToAddress([]byte("c1"))
	c2 := remora.BytesToAddress([]byte("c2"))
	c3 := remora.BytesToAddress([]byte("c3"))

	for i, c := range []remora.Address{c1, c2, c3} {
		ok, err := rst.Add(c, big.NewInt(int64(i+1)))
		require.NoError(t, err)
		require.True(t, ok)
	}

	// remove head
	deposit, ok, err := rst.Remove(c1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(1), deposit)

	// remove tail
	deposit, ok, err = rst.Remove(c3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(3), deposit)

	candidates, err := rst.Candidates(10)
	require.NoError(t, err)
	assert.Equal(t, []*Candidate{{c2, big.NewInt(2)}}, candidates)

	// and the last one
	_, ok, err = rst.Remove(c2)
	require.NoError(t, err)
	require.True(t, ok)

	candidates, err = rst.Candidates(10)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	count, err := rst.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	// list is reusable after being emptied
	ok, err = rst.Add(c3, big.NewInt(9))
	require.NoError(t, err)
	require.True(t, ok)

	candidates, err = rst.Candidates(10)
	require.NoError(t, err)
	assert.Equal(t, []*Candidate{{c3, big.NewInt(9)}}, candidates)
}

func TestDepositSurvivesReAdd(t *testing.T) {
	rst := newTestRoster(t)
	c1 := remora.BytesToAddress([]byte("c1"))

	ok, err := rst.Add(c1, big.NewInt(100))
	require.NoError(t, err)
	require.True(t, ok)

	deposit, ok, err := rst.Remove(c1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(100), deposit)

	// re-added with a different bond, the new deposit is stored
	ok, err = rst.Add(c1, big.NewInt(200))
	require.NoError(t, err)
	require.True(t, ok)

	candidate, ok, err := rst.Get(c1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(200), candidate.Deposit)
}

func TestInvulnerables(t *testing.T) {
	rst := newTestRoster(t)

	list, err := rst.Invulnerables()
	require.NoError(t, err)
	assert.Empty(t, list)

	i1 := remora.BytesToAddress([]byte("i1"))
	i2 := remora.BytesToAddress([]byte("i2"))
	require.NoError(t, rst.SetInvulnerables([]remora.Address{i1, i2}))

	list, err = rst.Invulnerables()
	require.NoError(t, err)
	assert.Equal(t, []remora.Address{i1, i2}, list)

	ok, err := rst.IsInvulnerable(i1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rst.IsInvulnerable(remora.BytesToAddress([]byte("c1")))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rst.SetInvulnerables(nil))
	list, err = rst.Invulnerables()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAuthorityRecord(t *testing.T) {
	rst := newTestRoster(t)

	record, err := rst.Authorities()
	require.NoError(t, err)
	assert.Zero(t, record.Index)
	assert.Empty(t, record.Authorities)

	want := &AuthorityRecord{
		Index: 3,
		Authorities: []remora.Address{
			remora.BytesToAddress([]byte("i1")),
			remora.BytesToAddress([]byte("c1")),
		},
	}
	require.NoError(t, rst.SetAuthorities(want))

	record, err = rst.Authorities()
	require.NoError(t, err)
	assert.Equal(t, want, record)
}
