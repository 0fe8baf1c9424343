// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/remora-chain/remora/builtin"
	"github.com/remora-chain/remora/builtin/keys"
	"github.com/remora-chain/remora/builtin/roster"
	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

// DevAccount account for development.
type DevAccount struct {
	Address    remora.Address
	PrivateKey *ecdsa.PrivateKey
}

// ValidatorID returns the account's authoring key.
func (a *DevAccount) ValidatorID() keys.ValidatorID {
	return keys.BytesToValidatorID(crypto.CompressPubkey(&a.PrivateKey.PublicKey))
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for dev mode.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"6e93bca1f2a84d210c5a77e93b04f8d512c96a3e8d40b7f659e1c28a74d0539b",
		"2a5d8f013c7e94b6d1a0582ef34c9b78065ad3e2917f40c8b5263d9ea087f145",
		"91c3e76a04b8d2f55e19a37c80d64b2ef7a50c9138e6d04b26c781f3a9d05e62",
		"0d82a4c7f3165e9b28d07a4c615f38e9b02d56a7c489f1e3075b6d28c94a01f7",
		"7b3f90d25a81c46e0f7d92b35c68a41ed90b37f2685c01ae49d8263b07f5c918",
		"c41a68f0b92d537ea8401c6f9b25d783e60a94c2f15b08d7364e92a1c50d7b3f",
		"38e5d20a9c714fb6025e8ad3c9670b14f82da5639e04c7b1d5280f6a3c91e47d",
		"e072c59b3a86d14f7c20e958b4d1637af905c82e6d13b04a78f5d2c6091ae83b",
		"55b8203d7e9ca461f08b5d29637a04ec91f3862ba5d70c14e38f6a29b04dc175",
		"a9641e07d3b52c8f460a97de215c83b9f7042d68a1e35c09b86d47f2103e59ca",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{remora.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// NewDevnet create genesis for dev mode. Every dev account holds funds
// and an active session key; the first three are invulnerable and
// author from launch.
func NewDevnet() *Genesis {
	launchTime := uint64(1767225600) // 'Thu Jan 01 2026 00:00:00 GMT+0000 (UTC)'

	builder := new(Builder).
		Timestamp(launchTime).
		ExtraData(devnetExtra()).
		State(func(state *state.State) error {
			ldg := builtin.Ledger.WithState(state)
			if err := ldg.Initialize(remora.InitialExistentialDeposit); err != nil {
				return err
			}
			bal, _ := new(big.Int).SetString("1000000000000000000000000", 10)
			for _, a := range DevAccounts() {
				if err := ldg.Add(a.Address, bal); err != nil {
					return err
				}
			}
			potFloat, _ := new(big.Int).SetString("1000000000000000000000", 10)
			if err := ldg.Add(builtin.Pot, potFloat); err != nil {
				return err
			}

			prm := builtin.Params.WithState(state)
			if err := prm.Set(remora.KeyCandidacyBond, remora.InitialCandidacyBond); err != nil {
				return err
			}
			if err := prm.Set(remora.KeyDesiredCandidates, remora.InitialDesiredCandidates); err != nil {
				return err
			}
			if err := prm.Set(remora.KeyEvictionBaseline, remora.InitialEvictionBaseline.ToBig()); err != nil {
				return err
			}
			if err := prm.Set(remora.KeyEvictionTolerance, remora.InitialEvictionTolerance.ToBig()); err != nil {
				return err
			}

			ks := builtin.Keys.WithState(state)
			for _, a := range DevAccounts() {
				if err := ks.SetKeys(a.Address, a.ValidatorID()); err != nil {
					return err
				}
			}
			if err := ks.ActivateQueued(); err != nil {
				return err
			}

			var invulnerables []remora.Address
			for _, a := range DevAccounts()[:3] {
				invulnerables = append(invulnerables, a.Address)
			}
			rst := builtin.Roster.WithState(state)
			if err := rst.SetInvulnerables(invulnerables); err != nil {
				return err
			}
			if err := rst.SetAuthorities(&roster.AuthorityRecord{Authorities: invulnerables}); err != nil {
				return err
			}
			return builtin.Stats.WithState(state).Reset(invulnerables)
		})

	id, err := builder.ComputeID()
	if err != nil {
		panic(err)
	}

	return &Genesis{builder, id, "devnet"}
}

func devnetExtra() (extra [28]byte) {
	copy(extra[:], "Remora Devnet")
	return
}
