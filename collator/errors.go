// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package collator

import "errors"

// Errors returned by collator operations. Any operation failing with
// one of these leaves the state untouched.
var (
	// ErrAlreadyCandidate is returned when the account is already a
	// registered candidate.
	ErrAlreadyCandidate = errors.New("already a candidate")

	// ErrAlreadyInvulnerable is returned when the account is on the
	// invulnerable list and thus cannot bond as a candidate.
	ErrAlreadyInvulnerable = errors.New("already invulnerable")

	// ErrNotCandidate is returned when the account is not a registered
	// candidate.
	ErrNotCandidate = errors.New("not a candidate")

	// ErrTooManyCandidates is returned when the candidate list is at the
	// desired-candidates cap.
	ErrTooManyCandidates = errors.New("too many candidates")

	// ErrNoAssociatedValidatorID is returned when the account has no
	// session key association.
	ErrNoAssociatedValidatorID = errors.New("no associated validator id")

	// ErrValidatorNotRegistered is returned when the account's session
	// key has not been activated by a session rotation yet.
	ErrValidatorNotRegistered = errors.New("validator not registered")

	// ErrNotAllowRemoveInvulnerable is returned when governance removal
	// targets an invulnerable.
	ErrNotAllowRemoveInvulnerable = errors.New("not allowed to remove invulnerable")

	// ErrUnauthorized is returned when an operation reserved for the
	// governance origin is called by anyone else.
	ErrUnauthorized = errors.New("unauthorized origin")
)
