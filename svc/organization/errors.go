package organization

import "errors"

var (
	// ErrNotFound is returned when an organization, role, or user does not exist.
	ErrNotFound = errors.New("organization: not found")

	// ErrNotMember is returned when a user holds no active membership in the
	// organization they tried to act in.
	ErrNotMember = errors.New("organization: user is not an active member")

	// ErrNoMembership is returned by the membership resolver when a user
	// belongs to no organization at all.
	ErrNoMembership = errors.New("organization: user has no active memberships")

	// ErrPermissionDenied is returned when an active member's permission set
	// does not grant the attempted action.
	ErrPermissionDenied = errors.New("organization: permission denied")

	// ErrLastOwner is returned when removing a member would leave the
	// organization without an owner.
	ErrLastOwner = errors.New("organization: cannot remove the last owner")

	// ErrOwnerRoleProtected is returned on attempts to modify or delete the
	// organization-owner role.
	ErrOwnerRoleProtected = errors.New("organization: owner role is immutable")

	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("organization: validation failed")
)
