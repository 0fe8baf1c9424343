// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package remora

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytes32MarshalUnmarshal(t *testing.T) {
	originalHex := `"0x00000000000000000000000000000000000000000000000000636f6c6c61746f"`

	var unmarshaled Bytes32
	err := json.Unmarshal([]byte(originalHex), &unmarshaled)
	assert.NoError(t, err)

	marshaled, err := json.Marshal(&unmarshaled)
	assert.NoError(t, err)
	assert.Equal(t, originalHex, string(marshaled))
}

func TestBytes32IsZero(t *testing.T) {
	assert.True(t, Bytes32{}.IsZero())
	assert.False(t, Blake2b([]byte("x")).IsZero())
}

func TestParseBytes32(t *testing.T) {
	b := Blake2b([]byte("anything"))
	parsed, err := ParseBytes32(b.String())
	assert.NoError(t, err)
	assert.Equal(t, b, parsed)

	_, err = ParseBytes32("0x123")
	assert.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	addr := BytesToAddress([]byte("addr"))
	parsed, err := ParseAddress(addr.String())
	assert.NoError(t, err)
	assert.Equal(t, addr, parsed)

	_, err = ParseAddress("zz")
	assert.Error(t, err)
}
