package organization

import (
	"time"

	"github.com/google/uuid"
)

// OwnerHierarchyLevel is reserved for the organization-owner role. All other
// roles sit at level 1 or below in authority (numerically greater).
const OwnerHierarchyLevel = 0

// Organization is the tenant boundary. Organizations are created at
// registration and never hard-deleted by this engine.
type Organization struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	MFARequired bool
	CreatedAt   time.Time
}

// OrganizationSummary is the read model the membership resolver hands to
// authentication flows for the organization selection step.
type OrganizationSummary struct {
	ID       uuid.UUID
	Name     string
	Slug     string
	RoleID   uuid.UUID
	RoleName string
}

// Role is a named permission bundle scoped to one organization. Exactly one
// role per organization has IsOrganizationOwner set; it lives at hierarchy
// level 0, cannot be deleted, and is never assignable via invitation.
type Role struct {
	ID                  uuid.UUID
	OrganizationID      uuid.UUID
	Name                string
	HierarchyLevel      int
	IsOrganizationOwner bool
	IsDefault           bool
	Permissions         []string
	CreatedAt           time.Time
}

// OwnsOrganization implements permission.RoleView. Nil-safe so a role deleted
// between read and check resolves to no permissions.
func (r *Role) OwnsOrganization() bool {
	return r != nil && r.IsOrganizationOwner
}

// PermissionSlugs implements permission.RoleView.
func (r *Role) PermissionSlugs() []string {
	if r == nil {
		return nil
	}
	return r.Permissions
}

// MembershipStatus tracks the lifecycle of a user's binding to an
// organization. Revoked and left memberships are kept as rows so a
// re-invitation can reactivate them instead of duplicating.
type MembershipStatus string

const (
	MembershipActive  MembershipStatus = "active"
	MembershipRevoked MembershipStatus = "revoked"
	MembershipLeft    MembershipStatus = "left"
)

// Membership binds a user to an organization with a role. It is the unit
// actually granting access.
type Membership struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	RoleID         uuid.UUID
	Status         MembershipStatus
	JoinedAt       time.Time
	RevokedAt      *time.Time
	RevokedBy      *uuid.UUID
}

// UserStatus tracks the account lifecycle.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
	UserDeleted   UserStatus = "deleted"
)

// User is an account that may hold memberships in any number of
// organizations, each with an independent role.
type User struct {
	ID           uuid.UUID
	Email        string
	FirstName    string
	LastName     string
	PasswordHash []byte
	Status       UserStatus
	CreatedAt    time.Time
}
