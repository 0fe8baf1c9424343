// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/remora-chain/remora/builtin"
	"github.com/remora-chain/remora/builtin/keys"
	"github.com/remora-chain/remora/builtin/roster"
	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

// NewCustomNet create custom network genesis.
func NewCustomNet(gen *CustomGenesis) (*Genesis, error) {
	launchTime := gen.LaunchTime

	minBalance := remora.InitialExistentialDeposit
	if gen.MinimumBalance != nil {
		minBalance = (*big.Int)(gen.MinimumBalance)
		if minBalance.Sign() < 0 {
			return nil, fmt.Errorf("minimumBalance must be a non-negative integer")
		}
	}

	if uint64(len(gen.Invulnerables)) > remora.MaxInvulnerables {
		return nil, fmt.Errorf("at most %d invulnerables allowed", remora.MaxInvulnerables)
	}
	seen := make(map[remora.Address]bool, len(gen.Invulnerables))
	for _, addr := range gen.Invulnerables {
		if seen[addr] {
			return nil, fmt.Errorf("%s: duplicate invulnerable", addr)
		}
		seen[addr] = true
	}

	sessionKeys := make(map[remora.Address]keys.ValidatorID, len(gen.SessionKeys))
	for _, sk := range gen.SessionKeys {
		raw, err := hexutil.Decode(sk.ValidatorID)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid validator id", sk.Address)
		}
		if len(raw) != keys.ValidatorIDLength {
			return nil, fmt.Errorf("%s: validator id must be %d bytes", sk.Address, keys.ValidatorIDLength)
		}
		if _, found := sessionKeys[sk.Address]; found {
			return nil, fmt.Errorf("%s: duplicate session key", sk.Address)
		}
		sessionKeys[sk.Address] = keys.BytesToValidatorID(raw)
	}

	bond := remora.InitialCandidacyBond
	if gen.Params.CandidacyBond != nil {
		bond = (*big.Int)(gen.Params.CandidacyBond)
		if bond.Sign() < 0 {
			return nil, fmt.Errorf("candidacyBond must be a non-negative integer")
		}
	}
	desired := remora.InitialDesiredCandidates
	if gen.Params.DesiredCandidates != nil {
		if *gen.Params.DesiredCandidates > remora.MaxCandidates {
			return nil, fmt.Errorf("desiredCandidates must not exceed %d", remora.MaxCandidates)
		}
		desired = new(big.Int).SetUint64(*gen.Params.DesiredCandidates)
	}
	baseline := remora.InitialEvictionBaseline
	if gen.Params.EvictionBaseline != nil {
		if *gen.Params.EvictionBaseline > uint64(remora.FullPercent) {
			return nil, fmt.Errorf("evictionBaseline must be a percent within [0, 100]")
		}
		baseline = remora.Percent(*gen.Params.EvictionBaseline)
	}
	tolerance := remora.InitialEvictionTolerance
	if gen.Params.EvictionTolerance != nil {
		if *gen.Params.EvictionTolerance > uint64(remora.FullPercent) {
			return nil, fmt.Errorf("evictionTolerance must be a percent within [0, 100]")
		}
		tolerance = remora.Percent(*gen.Params.EvictionTolerance)
	}

	builder := new(Builder).
		Timestamp(launchTime).
		State(func(state *state.State) error {
			ldg := builtin.Ledger.WithState(state)
			if err := ldg.Initialize(minBalance); err != nil {
				return err
			}
			for _, a := range gen.Accounts {
				if a.Balance == nil {
					return fmt.Errorf("%s: balance must be set", a.Address)
				}
				balance := (*big.Int)(a.Balance)
				if balance.Sign() < 1 {
					return fmt.Errorf("%s: balance must be a non-zero integer", a.Address)
				}
				if err := ldg.Add(a.Address, balance); err != nil {
					return err
				}
			}
			if gen.Pot != nil {
				if err := ldg.Add(builtin.Pot, (*big.Int)(gen.Pot)); err != nil {
					return err
				}
			}

			prm := builtin.Params.WithState(state)
			if err := prm.Set(remora.KeyCandidacyBond, bond); err != nil {
				return err
			}
			if err := prm.Set(remora.KeyDesiredCandidates, desired); err != nil {
				return err
			}
			if err := prm.Set(remora.KeyEvictionBaseline, baseline.ToBig()); err != nil {
				return err
			}
			if err := prm.Set(remora.KeyEvictionTolerance, tolerance.ToBig()); err != nil {
				return err
			}

			ks := builtin.Keys.WithState(state)
			for _, sk := range gen.SessionKeys {
				if err := ks.SetKeys(sk.Address, sessionKeys[sk.Address]); err != nil {
					return err
				}
			}
			if err := ks.ActivateQueued(); err != nil {
				return err
			}

			rst := builtin.Roster.WithState(state)
			if err := rst.SetInvulnerables(gen.Invulnerables); err != nil {
				return err
			}
			if err := rst.SetAuthorities(&roster.AuthorityRecord{Authorities: gen.Invulnerables}); err != nil {
				return err
			}
			return builtin.Stats.WithState(state).Reset(gen.Invulnerables)
		})

	extra, err := customExtra(gen)
	if err != nil {
		return nil, err
	}
	builder.ExtraData(extra)

	id, err := builder.ComputeID()
	if err != nil {
		return nil, err
	}
	return &Genesis{builder, id, "customnet"}, nil
}

// customExtra salts the network ID with the whole config, so two nets
// differing only in allocations get distinct IDs.
func customExtra(gen *CustomGenesis) (extra [28]byte, err error) {
	if gen.ExtraData != "" {
		copy(extra[:], gen.ExtraData)
		return
	}
	raw, err := json.Marshal(gen)
	if err != nil {
		return [28]byte{}, err
	}
	copy(extra[:], remora.Blake2b(raw).Bytes())
	return
}
