// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package collator_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remora-chain/remora/builtin"
	"github.com/remora-chain/remora/builtin/keys"
	"github.com/remora-chain/remora/builtin/ledger"
	"github.com/remora-chain/remora/collator"
	"github.com/remora-chain/remora/lvldb"
	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

func M(a ...interface{}) []interface{} {
	return a
}

var (
	govern = remora.BytesToAddress([]byte("govern"))

	minBalance = big.NewInt(10)
	bond       = big.NewInt(100)
	funding    = big.NewInt(1000)
)

func newValidatorID(t *testing.T) keys.ValidatorID {
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	return keys.BytesToValidatorID(crypto.CompressPubkey(&priv.PublicKey))
}

// newTestModule builds a module over an in-memory state with the
// governance params of the test network preset.
func newTestModule(t *testing.T) (*collator.Module, *state.State) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.New(db)

	require.NoError(t, builtin.Ledger.WithState(st).Initialize(minBalance))

	m := collator.New(st, govern)
	require.NoError(t, m.SetCandidacyBond(govern, bond))
	require.NoError(t, m.SetDesiredCandidates(govern, 10))
	require.NoError(t, m.SetEvictionBaseline(govern, remora.Percent(80)))
	require.NoError(t, m.SetEvictionTolerance(govern, remora.Percent(10)))
	m.DrainEvents()
	return m, st
}

// enroll funds the accounts, associates fresh session keys and rotates
// once so the keys count as registered.
func enroll(t *testing.T, m *collator.Module, st *state.State, addrs ...remora.Address) {
	ldg := builtin.Ledger.WithState(st)
	for _, addr := range addrs {
		require.NoError(t, ldg.Add(addr, funding))
		require.NoError(t, m.SetSessionKeys(addr, newValidatorID(t)))
	}
	_, err := m.NewSession()
	require.NoError(t, err)
	m.DrainEvents()
}

func register(t *testing.T, m *collator.Module, addrs ...remora.Address) {
	for _, addr := range addrs {
		_, err := m.RegisterAsCandidate(addr)
		require.NoError(t, err)
	}
	m.DrainEvents()
}

func addr(name string) remora.Address {
	return remora.BytesToAddress([]byte(name))
}

func TestRegisterAsCandidate(t *testing.T) {
	m, st := newTestModule(t)
	a1, a2 := addr("a1"), addr("a2")
	enroll(t, m, st, a1, a2)

	count, err := m.RegisterAsCandidate(a1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	count, err = m.RegisterAsCandidate(a2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	ldg := builtin.Ledger.WithState(st)
	free, err := ldg.FreeBalance(a1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(900), free)
	reserved, err := ldg.ReservedBalance(a1)
	require.NoError(t, err)
	assert.Equal(t, bond, reserved)

	candidates, err := m.Candidates()
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, a1, candidates[0].Addr)
	assert.Equal(t, a2, candidates[1].Addr)

	events := m.DrainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, collator.CandidateAdded{Addr: a1, Deposit: bond}, events[0])
	assert.Equal(t, collator.CandidateAdded{Addr: a2, Deposit: bond}, events[1])
}

func TestRegisterChecks(t *testing.T) {
	m, st := newTestModule(t)
	ldg := builtin.Ledger.WithState(st)

	// no session keys at all
	noKeys := addr("nokeys")
	require.NoError(t, ldg.Add(noKeys, funding))
	_, err := m.RegisterAsCandidate(noKeys)
	assert.ErrorIs(t, err, collator.ErrNoAssociatedValidatorID)

	// keys associated but not yet rotated in
	pending := addr("pending")
	require.NoError(t, ldg.Add(pending, funding))
	require.NoError(t, m.SetSessionKeys(pending, newValidatorID(t)))
	_, err = m.RegisterAsCandidate(pending)
	assert.ErrorIs(t, err, collator.ErrValidatorNotRegistered)

	// registered after the next rotation
	_, err = m.NewSession()
	require.NoError(t, err)
	_, err = m.RegisterAsCandidate(pending)
	require.NoError(t, err)

	// double registration
	_, err = m.RegisterAsCandidate(pending)
	assert.ErrorIs(t, err, collator.ErrAlreadyCandidate)

	// invulnerables cannot register
	inv := addr("inv")
	require.NoError(t, ldg.Add(inv, funding))
	require.NoError(t, m.SetSessionKeys(inv, newValidatorID(t)))
	require.NoError(t, m.SetInvulnerables(govern, []remora.Address{inv}))
	_, err = m.NewSession()
	require.NoError(t, err)
	_, err = m.RegisterAsCandidate(inv)
	assert.ErrorIs(t, err, collator.ErrAlreadyInvulnerable)
}

func TestRegisterInsufficientBalance(t *testing.T) {
	m, st := newTestModule(t)
	ldg := builtin.Ledger.WithState(st)

	poor := addr("poor")
	require.NoError(t, ldg.Add(poor, big.NewInt(50)))
	require.NoError(t, m.SetSessionKeys(poor, newValidatorID(t)))
	_, err := m.NewSession()
	require.NoError(t, err)
	m.DrainEvents()

	_, err = m.RegisterAsCandidate(poor)
	assert.True(t, errors.Is(err, ledger.ErrInsufficientBalance))

	// the failed call left nothing behind
	free, err := ldg.FreeBalance(poor)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), free)
	candidates, err := m.Candidates()
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Empty(t, m.DrainEvents())
}

func TestRegisterCapped(t *testing.T) {
	m, st := newTestModule(t)
	a1, a2 := addr("a1"), addr("a2")
	enroll(t, m, st, a1, a2)

	require.NoError(t, m.SetDesiredCandidates(govern, 1))
	_, err := m.RegisterAsCandidate(a1)
	require.NoError(t, err)
	_, err = m.RegisterAsCandidate(a2)
	assert.ErrorIs(t, err, collator.ErrTooManyCandidates)

	// raising the cap unblocks registration
	require.NoError(t, m.SetDesiredCandidates(govern, 2))
	_, err = m.RegisterAsCandidate(a2)
	require.NoError(t, err)
}

func TestRegisterCollatorByGovernance(t *testing.T) {
	m, st := newTestModule(t)
	a1 := addr("a1")
	enroll(t, m, st, a1)

	_, err := m.RegisterCollator(a1, a1)
	assert.ErrorIs(t, err, collator.ErrUnauthorized)

	count, err := m.RegisterCollator(govern, a1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	reserved, err := builtin.Ledger.WithState(st).ReservedBalance(a1)
	require.NoError(t, err)
	assert.Equal(t, bond, reserved)
}

func TestLeaveIntent(t *testing.T) {
	m, st := newTestModule(t)
	a1, a2 := addr("a1"), addr("a2")
	enroll(t, m, st, a1, a2)
	register(t, m, a1, a2)

	count, err := m.LeaveIntent(a1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	ldg := builtin.Ledger.WithState(st)
	free, err := ldg.FreeBalance(a1)
	require.NoError(t, err)
	assert.Equal(t, funding, free)
	reserved, err := ldg.ReservedBalance(a1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0).String(), reserved.String())

	_, err = m.LeaveIntent(a1)
	assert.ErrorIs(t, err, collator.ErrNotCandidate)

	events := m.DrainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, collator.CandidateRemoved{Addr: a1, Deposit: bond}, events[0])
}

func TestLeaveRefundsOriginalDeposit(t *testing.T) {
	m, st := newTestModule(t)
	a1 := addr("a1")
	enroll(t, m, st, a1)
	register(t, m, a1)

	// bond changes do not touch existing deposits
	require.NoError(t, m.SetCandidacyBond(govern, big.NewInt(250)))

	_, err := m.LeaveIntent(a1)
	require.NoError(t, err)
	free, err := builtin.Ledger.WithState(st).FreeBalance(a1)
	require.NoError(t, err)
	assert.Equal(t, funding, free)
}

func TestRemoveCollator(t *testing.T) {
	m, st := newTestModule(t)
	a1 := addr("a1")
	inv := addr("inv")
	enroll(t, m, st, a1)
	register(t, m, a1)
	require.NoError(t, m.SetInvulnerables(govern, []remora.Address{inv}))

	_, err := m.RemoveCollator(a1, a1)
	assert.ErrorIs(t, err, collator.ErrUnauthorized)

	_, err = m.RemoveCollator(govern, inv)
	assert.ErrorIs(t, err, collator.ErrNotAllowRemoveInvulnerable)

	_, err = m.RemoveCollator(govern, addr("ghost"))
	assert.ErrorIs(t, err, collator.ErrNotCandidate)

	count, err := m.RemoveCollator(govern, a1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	free, err := builtin.Ledger.WithState(st).FreeBalance(a1)
	require.NoError(t, err)
	assert.Equal(t, funding, free)
}

func TestSetInvulnerables(t *testing.T) {
	m, st := newTestModule(t)
	a1 := addr("a1")
	enroll(t, m, st, a1)
	register(t, m, a1)

	assert.ErrorIs(t, m.SetInvulnerables(a1, nil), collator.ErrUnauthorized)

	// candidates are rejected
	err := m.SetInvulnerables(govern, []remora.Address{a1})
	assert.Error(t, err)

	// duplicates are rejected
	inv := addr("inv")
	err = m.SetInvulnerables(govern, []remora.Address{inv, inv})
	assert.Error(t, err)

	// cap enforced
	tooMany := make([]remora.Address, remora.MaxInvulnerables+1)
	for i := range tooMany {
		tooMany[i] = remora.BytesToAddress([]byte{byte(i), 0xff})
	}
	assert.Error(t, m.SetInvulnerables(govern, tooMany))

	require.NoError(t, m.SetInvulnerables(govern, []remora.Address{inv}))
	list, err := m.Invulnerables()
	require.NoError(t, err)
	assert.Equal(t, []remora.Address{inv}, list)
}

func TestGovernanceParams(t *testing.T) {
	m, _ := newTestModule(t)

	assert.ErrorIs(t, m.SetDesiredCandidates(addr("x"), 5), collator.ErrUnauthorized)
	assert.ErrorIs(t, m.SetCandidacyBond(addr("x"), bond), collator.ErrUnauthorized)
	assert.ErrorIs(t, m.SetEvictionBaseline(addr("x"), 0), collator.ErrUnauthorized)
	assert.ErrorIs(t, m.SetEvictionTolerance(addr("x"), 0), collator.ErrUnauthorized)

	assert.Error(t, m.SetDesiredCandidates(govern, remora.MaxCandidates+1))
	assert.Error(t, m.SetCandidacyBond(govern, big.NewInt(-1)))

	require.NoError(t, m.SetDesiredCandidates(govern, 42))
	desired, err := m.DesiredCandidates()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), desired)

	require.NoError(t, m.SetEvictionBaseline(govern, remora.Percent(95)))
	baseline, err := m.EvictionBaseline()
	require.NoError(t, err)
	assert.Equal(t, remora.Percent(95), baseline)

	require.NoError(t, m.SetEvictionTolerance(govern, remora.Percent(25)))
	tolerance, err := m.EvictionTolerance()
	require.NoError(t, err)
	assert.Equal(t, remora.Percent(25), tolerance)

	events := m.DrainEvents()
	require.Len(t, events, 3)
	assert.Equal(t, "desired-candidates-set", events[0].Name())
	assert.Equal(t, "eviction-baseline-set", events[1].Name())
	assert.Equal(t, "eviction-tolerance-set", events[2].Name())
}
