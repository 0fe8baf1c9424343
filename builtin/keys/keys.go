// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package keys implements the session key registry.
//
// An account associates itself with a validator ID, the compressed
// public key it will author blocks with. The association is visible
// immediately, but the ID only counts as registered after the next
// session rotation activates the queue. Candidate registration requires
// a registered ID.
package keys

import (
	"encoding/hex"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/remora-chain/remora/remora"
	"github.com/remora-chain/remora/state"
)

// ValidatorIDLength is the length of a validator ID, a compressed
// secp256k1 public key.
const ValidatorIDLength = 33

var (
	queueKey = remora.Blake2b([]byte("queued"))

	// ErrKeyClaimed is returned when a session key is already associated
	// with another account.
	ErrKeyClaimed = errors.New("session key already claimed")
	// ErrQueueFull is returned when no more key activations fit into the
	// current session.
	ErrQueueFull = errors.New("session key queue full")
)

// ValidatorID identifies the authoring key of a collator.
type ValidatorID [ValidatorIDLength]byte

// String implements the stringer interface.
func (id ValidatorID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// IsZero returns if the ID is all zero bytes.
func (id ValidatorID) IsZero() bool {
	return id == ValidatorID{}
}

// BytesToValidatorID converts a byte slice into a ValidatorID, cropped
// or left-padded to the ID length.
func BytesToValidatorID(b []byte) (id ValidatorID) {
	if len(b) > ValidatorIDLength {
		b = b[len(b)-ValidatorIDLength:]
	}
	copy(id[ValidatorIDLength-len(b):], b)
	return
}

func assocKey(addr remora.Address) remora.Bytes32 {
	return remora.BytesToBytes32(append([]byte("a"), addr.Bytes()...))
}

func ownerKey(id ValidatorID) remora.Bytes32 {
	return remora.Blake2b([]byte("o"), id[:])
}

// ownership is the stored record of a claimed validator ID.
type ownership struct {
	Owner      remora.Address
	Registered bool
}

func (o *ownership) isEmpty() bool {
	return o.Owner.IsZero() && !o.Registered
}

// Keys binder of the `Keys` module.
type Keys struct {
	addr  remora.Address
	state *state.State
}

// New create a new instance.
func New(addr remora.Address, state *state.State) *Keys {
	return &Keys{addr, state}
}

func (k *Keys) getOwnership(id ValidatorID) (*ownership, error) {
	var o ownership
	if err := k.state.DecodeStorage(k.addr, ownerKey(id), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &o)
	}); err != nil {
		return nil, err
	}
	return &o, nil
}

func (k *Keys) setOwnership(id ValidatorID, o *ownership) error {
	return k.state.EncodeStorage(k.addr, ownerKey(id), func() ([]byte, error) {
		if o.isEmpty() {
			return nil, nil
		}
		return rlp.EncodeToBytes(o)
	})
}

func (k *Keys) queued() ([]ValidatorID, error) {
	var queue []ValidatorID
	if err := k.state.DecodeStorage(k.addr, queueKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &queue)
	}); err != nil {
		return nil, err
	}
	return queue, nil
}

func (k *Keys) setQueued(queue []ValidatorID) error {
	return k.state.EncodeStorage(k.addr, queueKey, func() ([]byte, error) {
		if len(queue) == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(queue)
	})
}

// Convert returns the validator ID associated with the given account.
func (k *Keys) Convert(addr remora.Address) (ValidatorID, bool, error) {
	var id ValidatorID
	if err := k.state.DecodeStorage(k.addr, assocKey(addr), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &id)
	}); err != nil {
		return ValidatorID{}, false, err
	}
	if id.IsZero() {
		return ValidatorID{}, false, nil
	}
	return id, true, nil
}

// IsRegistered returns whether the given validator ID has been
// activated by a session rotation.
func (k *Keys) IsRegistered(id ValidatorID) (bool, error) {
	o, err := k.getOwnership(id)
	if err != nil {
		return false, err
	}
	return o.Registered, nil
}

// SetKeys associates the account with a validator ID and queues it for
// activation at the next session rotation. The ID must parse as a
// compressed public key and must not be claimed by another account.
// Re-setting the current ID is a no-op.
func (k *Keys) SetKeys(addr remora.Address, id ValidatorID) error {
	if _, err := secp256k1.ParsePubKey(id[:]); err != nil {
		return errors.New("invalid session key")
	}
	o, err := k.getOwnership(id)
	if err != nil {
		return err
	}
	if !o.isEmpty() {
		if o.Owner != addr {
			return ErrKeyClaimed
		}
		return nil
	}

	// release a previously associated ID
	prev, ok, err := k.Convert(addr)
	if err != nil {
		return err
	}
	if ok {
		if err := k.setOwnership(prev, &ownership{}); err != nil {
			return err
		}
	}

	queue, err := k.queued()
	if err != nil {
		return err
	}
	if uint64(len(queue)) >= remora.MaxAuthorities {
		return ErrQueueFull
	}
	if err := k.setQueued(append(queue, id)); err != nil {
		return err
	}
	if err := k.setOwnership(id, &ownership{Owner: addr}); err != nil {
		return err
	}
	return k.state.EncodeStorage(k.addr, assocKey(addr), func() ([]byte, error) {
		return rlp.EncodeToBytes(id)
	})
}

// ClearKeys removes the account's association and the registration of
// its validator ID.
func (k *Keys) ClearKeys(addr remora.Address) error {
	id, ok, err := k.Convert(addr)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := k.setOwnership(id, &ownership{}); err != nil {
		return err
	}
	return k.state.EncodeStorage(k.addr, assocKey(addr), func() ([]byte, error) {
		return nil, nil
	})
}

// ActivateQueued marks every queued validator ID as registered and
// empties the queue. Called once per session rotation. IDs released
// since they were queued are skipped.
func (k *Keys) ActivateQueued() error {
	queue, err := k.queued()
	if err != nil {
		return err
	}
	for _, id := range queue {
		o, err := k.getOwnership(id)
		if err != nil {
			return err
		}
		if o.isEmpty() {
			continue
		}
		o.Registered = true
		if err := k.setOwnership(id, o); err != nil {
			return err
		}
	}
	return k.setQueued(nil)
}
