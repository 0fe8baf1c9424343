// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package remora

import (
	"errors"
	"math/big"
	"math/bits"
	"strconv"
	"strings"
)

// Percent is a fraction with whole-percent resolution, ranged [0%, 100%].
// All arithmetic is integer only, so results are reproducible bit for bit
// across runs and platforms.
type Percent uint8

// FullPercent is 100%.
const FullPercent Percent = 100

// FromPercent creates a Percent from n, saturating at 100.
func FromPercent(n uint64) Percent {
	if n > uint64(FullPercent) {
		return FullPercent
	}
	return Percent(n)
}

// ParsePercent parses a string like "80" or "80%".
func ParsePercent(s string) (Percent, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, errors.New("invalid percent")
	}
	if n > uint64(FullPercent) {
		return 0, errors.New("percent out of range")
	}
	return Percent(n), nil
}

// PercentFromBig converts a stored big.Int value into Percent.
func PercentFromBig(v *big.Int) (Percent, error) {
	if v == nil || v.Sign() < 0 || !v.IsUint64() || v.Uint64() > uint64(FullPercent) {
		return 0, errors.New("percent out of range")
	}
	return Percent(v.Uint64()), nil
}

// ToBig returns the percent value as big.Int, for param storage.
func (p Percent) ToBig() *big.Int {
	return new(big.Int).SetUint64(uint64(p))
}

// Complement returns 100% − p.
func (p Percent) Complement() Percent {
	return FullPercent - p
}

// IsZero returns whether p is 0%.
func (p Percent) IsZero() bool {
	return p == 0
}

// IsFull returns whether p is 100%.
func (p Percent) IsFull() bool {
	return p == FullPercent
}

// MulCeilUint64 returns ceil(p · x), i.e. (p·x + 99) / 100 in full 128-bit
// intermediate precision. p·x for p ≤ 100 never exceeds 100·(2^64−1), so the
// division cannot overflow.
func (p Percent) MulCeilUint64(x uint64) uint64 {
	hi, lo := bits.Mul64(uint64(p), x)
	lo, carry := bits.Add64(lo, uint64(FullPercent)-1, 0)
	hi += carry
	q, _ := bits.Div64(hi, lo, uint64(FullPercent))
	return q
}

// String implements stringer.
func (p Percent) String() string {
	return strconv.FormatUint(uint64(p), 10) + "%"
}
