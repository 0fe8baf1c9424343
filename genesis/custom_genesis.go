// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/remora-chain/remora/remora"
)

// CustomGenesis is user customized genesis
type CustomGenesis struct {
	LaunchTime     uint64           `json:"launchTime"`
	ExtraData      string           `json:"extraData"`
	MinimumBalance *HexOrDecimal256 `json:"minimumBalance"`
	Accounts       []Account        `json:"accounts"`
	Invulnerables  []remora.Address `json:"invulnerables"`
	SessionKeys    []SessionKey     `json:"sessionKeys"`
	Pot            *HexOrDecimal256 `json:"pot"`
	Params         Params           `json:"params"`
}

// Account is an account funded at launch
type Account struct {
	Address remora.Address   `json:"address"`
	Balance *HexOrDecimal256 `json:"balance"`
}

// SessionKey associates an account with its authoring key, active from
// launch
type SessionKey struct {
	Address     remora.Address `json:"address"`
	ValidatorID string         `json:"validatorId"`
}

// Params means the selection params written at launch
type Params struct {
	CandidacyBond     *HexOrDecimal256 `json:"candidacyBond"`
	DesiredCandidates *uint64          `json:"desiredCandidates"`
	EvictionBaseline  *uint64          `json:"evictionBaseline"`
	EvictionTolerance *uint64          `json:"evictionTolerance"`
}

// HexOrDecimal256 marshals big.Int as hex or decimal.
// Copied from go-ethereum/common/math and implement json. Marshaler
type HexOrDecimal256 math.HexOrDecimal256

// UnmarshalJSON implements the json.Unmarshaler interface.
func (i *HexOrDecimal256) UnmarshalJSON(input []byte) error {
	var hex string
	if err := json.Unmarshal(input, &hex); err != nil {
		if err = (*big.Int)(i).UnmarshalJSON(input); err != nil {
			return err
		}
		return nil
	}
	bigint, ok := math.ParseBig256(hex)
	if !ok {
		return fmt.Errorf("invalid hex or decimal integer %q", input)
	}
	*i = HexOrDecimal256(*bigint)
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (i HexOrDecimal256) MarshalJSON() ([]byte, error) {
	decimal256 := math.HexOrDecimal256(i)
	text, err := decimal256.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}
