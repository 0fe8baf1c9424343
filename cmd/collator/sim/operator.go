// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/remora-chain/remora/builtin/keys"
	"github.com/remora-chain/remora/co"
	"github.com/remora-chain/remora/remora"
)

// operator is one simulated collator operator.
type operator struct {
	addr        remora.Address
	validatorID keys.ValidatorID

	// probability of authoring when scheduled
	reliability float64

	// session index the keys were submitted at, -1 when none
	keysQueuedAt int
	candidate    bool
}

// newOperators derives the operator set from the scenario seed. Key
// derivation is CPU bound, so it fans out over all cores.
func newOperators(scen *Scenario) ([]*operator, error) {
	ops := make([]*operator, scen.Operators)
	errs := make([]error, scen.Operators)
	<-co.Parallel(func(queue chan<- func()) {
		for i := range ops {
			i := i
			queue <- func() {
				ops[i], errs[i] = newOperator(scen, i)
			}
		}
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return ops, nil
}

func newOperator(scen *Scenario, index int) (*operator, error) {
	var material [16]byte
	binary.BigEndian.PutUint64(material[:8], uint64(scen.Seed))
	binary.BigEndian.PutUint64(material[8:], uint64(index))

	// rejection sample until the digest is a valid curve scalar
	digest := remora.Blake2b([]byte("sim-operator"), material[:])
	key, err := crypto.ToECDSA(digest.Bytes())
	for err != nil {
		digest = remora.Blake2b(digest.Bytes())
		key, err = crypto.ToECDSA(digest.Bytes())
	}

	reliability := scen.MaxReliability
	if scen.Operators > 1 {
		span := scen.MaxReliability - scen.MinReliability
		reliability = scen.MinReliability + span*float64(index)/float64(scen.Operators-1)
	}

	return &operator{
		addr:         remora.Address(crypto.PubkeyToAddress(key.PublicKey)),
		validatorID:  keys.BytesToValidatorID(crypto.CompressPubkey(&key.PublicKey)),
		reliability:  reliability,
		keysQueuedAt: -1,
	}, nil
}
