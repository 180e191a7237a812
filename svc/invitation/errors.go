package invitation

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no invitation matches the id or token.
	ErrNotFound = errors.New("invitation: not found")

	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("invitation: validation failed")

	// ErrExpired is returned when the invitation's expiry has passed.
	ErrExpired = errors.New("invitation: expired")

	// ErrConflict is the base error for state conflicts. The wrapped variants
	// below carry the specific reason; match with errors.Is against either.
	ErrConflict = errors.New("invitation: conflict")

	// ErrRoleNotAssignable is returned when the actor's hierarchy level does
	// not permit granting the requested role.
	ErrRoleNotAssignable = errors.New("invitation: role is not assignable by the actor")
)

var (
	// ErrDuplicatePending: one effective-pending invitation per (organization,
	// email) at a time.
	ErrDuplicatePending = fmt.Errorf("%w: a pending invitation already exists for this email", ErrConflict)

	// ErrAlreadyMember: the address already belongs to an active member.
	ErrAlreadyMember = fmt.Errorf("%w: user is already an active member", ErrConflict)

	// ErrAlreadyAccepted: accepted invitations are immutable; revoke the
	// membership instead of cancelling.
	ErrAlreadyAccepted = fmt.Errorf("%w: invitation was already accepted, revoke the membership instead", ErrConflict)

	// ErrNotPending: the operation requires a pending invitation.
	ErrNotPending = fmt.Errorf("%w: invitation is not pending", ErrConflict)
)
