// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/remora-chain/remora/remora"
)

func RandomHash() remora.Bytes32 {
	var b32 remora.Bytes32

	rand.Read(b32[:])
	return b32
}

func RandAddress() remora.Address {
	var addr remora.Address

	rand.Read(addr[:])
	return addr
}
