// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"

	"github.com/remora-chain/remora/builtin"
	"github.com/remora-chain/remora/builtin/roster"
	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

// NewTestnet create genesis for the public test network. The seed
// collators are invulnerable and author from launch; candidates join by
// associating session keys on the live network.
func NewTestnet() *Genesis {
	launchTime := uint64(1767830400) // 'Thu Jan 08 2026 00:00:00 GMT+0000 (UTC)'

	// operators of the seed collators
	invulnerables := []remora.Address{
		remora.MustParseAddress("0x36571350bfe51e0c05d43a2773ab6478a99b1a45"),
		remora.MustParseAddress("0xc12edff519a9f4d8072258d2f7ee6c29510c3897"),
		remora.MustParseAddress("0x7e0a1bd6f5b04bcd85e1a9b053e9db5a0d1c9b62"),
	}

	faucet := remora.MustParseAddress("0x249bd1cfc323d5b33dee9313286049a0e71eedf5")

	builder := new(Builder).
		Timestamp(launchTime).
		ExtraData(testnetExtra()).
		State(func(state *state.State) error {
			ldg := builtin.Ledger.WithState(state)
			if err := ldg.Initialize(remora.InitialExistentialDeposit); err != nil {
				return err
			}
			faucetBalance, _ := new(big.Int).SetString("10000000000000000000000000", 10)
			if err := ldg.Add(faucet, faucetBalance); err != nil {
				return err
			}
			potFloat, _ := new(big.Int).SetString("5000000000000000000000", 10)
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
	return &Genesis{builder, id, "testnet"}
}

func testnetExtra() (extra [28]byte) {
	copy(extra[:], "Remora Testnet")
	return
}
