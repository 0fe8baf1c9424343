// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Scenario drives one simulation run. A scenario file may set any
// subset of the fields; the rest keep their default values.
type Scenario struct {
	Name             string  `yaml:"name"`
	Seed             int64   `yaml:"seed"`
	Sessions         int     `yaml:"sessions"`
	BlocksPerSession int     `yaml:"blocksPerSession"`
	Operators        int     `yaml:"operators"`
	JoinRate         float64 `yaml:"joinRate"`
	LeaveRate        float64 `yaml:"leaveRate"`
	MinReliability   float64 `yaml:"minReliability"`
	MaxReliability   float64 `yaml:"maxReliability"`
	BlockFee         string  `yaml:"blockFee"`
}

// DefaultScenario returns a steady-churn run: a dozen operators of
// mixed reliability joining and leaving around the desired set.
func DefaultScenario() *Scenario {
	return &Scenario{
		Name:             "steady-churn",
		Seed:             1,
		Sessions:         20,
		BlocksPerSession: 30,
		Operators:        12,
		JoinRate:         0.4,
		LeaveRate:        0.1,
		MinReliability:   0.5,
		MaxReliability:   1,
		BlockFee:         "10000000000000000000",
	}
}

// LoadScenario reads a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario")
	}
	scen := DefaultScenario()
	if err := yaml.Unmarshal(data, scen); err != nil {
		return nil, errors.Wrap(err, "parse scenario")
	}
	if err := scen.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate scenario")
	}
	return scen, nil
}

// Validate checks the scenario ranges.
func (s *Scenario) Validate() error {
	if s.Sessions <= 0 || s.BlocksPerSession <= 0 {
		return errors.New("sessions and blocksPerSession must be positive")
	}
	if s.Operators <= 0 {
		return errors.New("operators must be positive")
	}
	if s.JoinRate < 0 || s.JoinRate > 1 || s.LeaveRate < 0 || s.LeaveRate > 1 {
		return errors.New("joinRate and leaveRate must be within [0, 1]")
	}
	if s.MinReliability < 0 || s.MaxReliability > 1 || s.MinReliability > s.MaxReliability {
		return errors.New("reliability bounds must satisfy 0 <= min <= max <= 1")
	}
	if fee, ok := new(big.Int).SetString(s.BlockFee, 10); !ok || fee.Sign() < 0 {
		return errors.New("malformed blockFee")
	}
	return nil
}

func (s *Scenario) blockFee() *big.Int {
	fee, _ := new(big.Int).SetString(s.BlockFee, 10)
	return fee
}
