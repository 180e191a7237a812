package organization

import (
	"context"

	"github.com/google/uuid"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/audit"
)

// Storage is the persistence contract for the tenant side of the engine.
// Mutating methods take pre-built audit entries and must commit them in the
// same transaction as the change itself.
type Storage interface {
	// CreateOrganization atomically inserts the organization, its initial role
	// set with their permissions, and the creator's active membership.
	CreateOrganization(ctx context.Context, org Organization, roles []Role, owner Membership, entries []audit.Entry) error
	GetOrganization(ctx context.Context, id uuid.UUID) (Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (Organization, error)

	// RolesByOrganization returns all roles of an organization, owner first,
	// then ascending hierarchy level.
	RolesByOrganization(ctx context.Context, orgID uuid.UUID) ([]Role, error)
	GetRole(ctx context.Context, orgID, roleID uuid.UUID) (Role, error)

	// ActiveMembership returns the user's active membership in the
	// organization, or ErrNotMember.
	ActiveMembership(ctx context.Context, orgID, userID uuid.UUID) (Membership, error)
	// ActiveMemberByEmail resolves an active membership through the member's
	// account email, or ErrNotMember.
	ActiveMemberByEmail(ctx context.Context, orgID uuid.UUID, email string) (Membership, error)
	// ActiveOrganizations lists the organizations a user actively belongs to.
	ActiveOrganizations(ctx context.Context, userID uuid.UUID) ([]OrganizationSummary, error)
	// CountActiveOwners counts active memberships holding the owner role.
	CountActiveOwners(ctx context.Context, orgID uuid.UUID) (int, error)
	// RevokeMembership marks a membership revoked, keeping the row for later
	// reactivation, and returns the updated membership.
	RevokeMembership(ctx context.Context, orgID, userID, actorID uuid.UUID, entries []audit.Entry) (Membership, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}
