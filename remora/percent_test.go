// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remora

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromPercent(t *testing.T) {
	assert.Equal(t, Percent(0), FromPercent(0))
	assert.Equal(t, Percent(42), FromPercent(42))
	assert.Equal(t, FullPercent, FromPercent(100))
	// saturates
	assert.Equal(t, FullPercent, FromPercent(101))
	assert.Equal(t, FullPercent, FromPercent(math.MaxUint64))
}

func TestParsePercent(t *testing.T) {
	p, err := ParsePercent("80")
	assert.NoError(t, err)
	assert.Equal(t, Percent(80), p)

	p, err = ParsePercent(" 10% ")
	assert.NoError(t, err)
	assert.Equal(t, Percent(10), p)

	_, err = ParsePercent("101")
	assert.Error(t, err)
	_, err = ParsePercent("-1")
	assert.Error(t, err)
	_, err = ParsePercent("x")
	assert.Error(t, err)
}

func TestPercentFromBig(t *testing.T) {
	p, err := PercentFromBig(big.NewInt(99))
	assert.NoError(t, err)
	assert.Equal(t, Percent(99), p)

	for _, v := range []*big.Int{nil, big.NewInt(-1), big.NewInt(101), new(big.Int).Lsh(big.NewInt(1), 70)} {
		_, err := PercentFromBig(v)
		assert.Error(t, err)
	}
}

func TestMulCeilUint64(t *testing.T) {
	tests := []struct {
		p        Percent
		x        uint64
		expected uint64
	}{
		{0, 0, 0},
		{0, 10, 0},
		{100, 10, 10},
		{80, 5, 4},   // exact
		{90, 10, 9},  // exact
		{50, 3, 2},   // ceil(1.5)
		{33, 100, 33},
		{33, 101, 34}, // ceil(33.33)
		{1, 1, 1},     // ceil(0.01)
		{99, 1, 1},
		{100, math.MaxUint64, math.MaxUint64},
		{1, math.MaxUint64, 184467440737095517},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.p.MulCeilUint64(tt.x), "%v of %v", tt.p, tt.x)
	}
}

func TestComplement(t *testing.T) {
	assert.Equal(t, FullPercent, Percent(0).Complement())
	assert.Equal(t, Percent(0), FullPercent.Complement())
	assert.Equal(t, Percent(90), Percent(10).Complement())
}

func TestPercentString(t *testing.T) {
	assert.Equal(t, "80%", Percent(80).String())
	assert.Equal(t, "0%", Percent(0).String())
}
