package organization

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/audit"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/permission"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/slug"
)

// Permission slugs from the seeded catalog. Roles reference these through
// role_permissions; the owner role needs none since it resolves to the
// wildcard set.
const (
	PermInvitationsCreate = "invitations.create"
	PermInvitationsView   = "invitations.view"
	PermInvitationsCancel = "invitations.cancel"
	PermMembersView       = "users.view"
	PermRevokeMembers     = "users.revoke"
	PermAuditView         = "audit.view"
)

// Default permission bundles for the role templates stamped out at
// organization registration.
var (
	defaultAdminPermissions = []string{
		PermInvitationsCreate, PermInvitationsView, PermInvitationsCancel,
		PermMembersView, PermRevokeMembers, PermAuditView,
	}
	defaultMemberPermissions = []string{PermMembersView}
)

// Service implements organization registration, the role hierarchy gate, and
// member removal on top of a Storage.
type Service struct {
	storage Storage
	audits  *audit.Recorder
	log     *slog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithAuditLog attaches the audit read model backing AuditTrail.
func WithAuditLog(r *audit.Recorder) Option {
	return func(s *Service) {
		s.audits = r
	}
}

// NewService creates a Service. A nil logger falls back to slog.Default.
func NewService(storage Storage, log *slog.Logger, opts ...Option) *Service {
	if storage == nil {
		panic("organization: storage cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Service{storage: storage, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams describes a new organization registration.
type CreateParams struct {
	Name        string
	OwnerUserID uuid.UUID
	MFARequired bool
}

// Create registers an organization together with its role set and the
// creator's active membership. The immutable owner role sits at hierarchy
// level 0 and is minted only here, which keeps the one-owner-role invariant a
// construction property rather than a runtime check; Admin and Member
// templates are stamped out alongside it so the organization is usable
// immediately.
func (s *Service) Create(ctx context.Context, params CreateParams) (Organization, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return Organization{}, fmt.Errorf("%w: organization name is required", ErrValidation)
	}
	if params.OwnerUserID == uuid.Nil {
		return Organization{}, fmt.Errorf("%w: owner user id is required", ErrValidation)
	}
	if _, err := s.storage.GetUserByID(ctx, params.OwnerUserID); err != nil {
		return Organization{}, err
	}

	now := s.now().UTC()
	org := Organization{
		ID:          uuid.New(),
		Name:        name,
		Slug:        slug.Make(name, slug.MaxLength(48), slug.WithSuffix(6)),
		MFARequired: params.MFARequired,
		CreatedAt:   now,
	}
	roles := []Role{
		{
			ID:                  uuid.New(),
			OrganizationID:      org.ID,
			Name:                "Organization Owner",
			HierarchyLevel:      OwnerHierarchyLevel,
			IsOrganizationOwner: true,
			CreatedAt:           now,
		},
		{
			ID:             uuid.New(),
			OrganizationID: org.ID,
			Name:           "Admin",
			HierarchyLevel: 1,
			Permissions:    defaultAdminPermissions,
			CreatedAt:      now,
		},
		{
			ID:             uuid.New(),
			OrganizationID: org.ID,
			Name:           "Member",
			HierarchyLevel: 2,
			IsDefault:      true,
			Permissions:    defaultMemberPermissions,
			CreatedAt:      now,
		},
	}
	owner := Membership{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		UserID:         params.OwnerUserID,
		RoleID:         roles[0].ID,
		Status:         MembershipActive,
		JoinedAt:       now,
	}

	entries := []audit.Entry{
		audit.NewEntry("organization.create",
			audit.WithOrganization(org.ID),
			audit.WithActor(params.OwnerUserID),
			audit.WithEntity("organization", org.ID.String()),
			audit.WithNewValues(map[string]any{"name": org.Name, "slug": org.Slug}),
		),
		audit.NewEntry("membership.create",
			audit.WithOrganization(org.ID),
			audit.WithActor(params.OwnerUserID),
			audit.WithEntity("membership", owner.ID.String()),
			audit.WithNewValues(map[string]any{"user_id": owner.UserID.String(), "role_id": owner.RoleID.String(), "status": string(owner.Status)}),
		),
	}

	if err := s.storage.CreateOrganization(ctx, org, roles, owner, entries); err != nil {
		return Organization{}, err
	}

	s.log.InfoContext(ctx, "organization created",
		slog.String("organization_id", org.ID.String()),
		slog.String("slug", org.Slug),
	)
	return org, nil
}

// AssignableRolesFor loads the actor's role fresh from storage and returns
// the roles they may grant via invitation. The freshly loaded role matters:
// the gate must hold even when the caller's snapshot of their own role is
// stale.
func (s *Service) AssignableRolesFor(ctx context.Context, actorUserID, orgID uuid.UUID) ([]Role, error) {
	membership, err := s.storage.ActiveMembership(ctx, orgID, actorUserID)
	if err != nil {
		return nil, err
	}
	actorRole, err := s.storage.GetRole(ctx, orgID, membership.RoleID)
	if err != nil {
		return nil, err
	}
	all, err := s.storage.RolesByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return AssignableRoles(actorRole, all), nil
}

// PermissionSetFor resolves the actor's current effective permission set in
// the organization, failing closed when the membership or role is gone.
func (s *Service) PermissionSetFor(ctx context.Context, actorUserID, orgID uuid.UUID) (permission.Set, error) {
	membership, err := s.storage.ActiveMembership(ctx, orgID, actorUserID)
	if err != nil {
		return permission.Explicit(), err
	}
	role, err := s.storage.GetRole(ctx, orgID, membership.RoleID)
	if err != nil {
		return permission.Explicit(), err
	}
	return permission.Resolve(&role), nil
}

// RemoveMember revokes a user's membership. The row is kept with status
// revoked so a later re-invitation reactivates it. Removing the last active
// owner is rejected: an organization must never be orphaned.
func (s *Service) RemoveMember(ctx context.Context, actorUserID, orgID, userID uuid.UUID) (Membership, error) {
	set, err := s.PermissionSetFor(ctx, actorUserID, orgID)
	if err != nil {
		return Membership{}, err
	}
	if !set.Has(PermRevokeMembers) {
		return Membership{}, fmt.Errorf("%w: %s", ErrPermissionDenied, PermRevokeMembers)
	}

	target, err := s.storage.ActiveMembership(ctx, orgID, userID)
	if err != nil {
		return Membership{}, err
	}
	role, err := s.storage.GetRole(ctx, orgID, target.RoleID)
	if err != nil {
		return Membership{}, err
	}
	if role.IsOrganizationOwner {
		owners, err := s.storage.CountActiveOwners(ctx, orgID)
		if err != nil {
			return Membership{}, err
		}
		if owners <= 1 {
			return Membership{}, ErrLastOwner
		}
	}

	entries := []audit.Entry{
		audit.NewEntry("membership.revoke",
			audit.WithOrganization(orgID),
			audit.WithActor(actorUserID),
			audit.WithEntity("membership", target.ID.String()),
			audit.WithOldValues(map[string]any{"status": string(target.Status), "role_id": target.RoleID.String()}),
			audit.WithNewValues(map[string]any{"status": string(MembershipRevoked)}),
		),
	}

	return s.storage.RevokeMembership(ctx, orgID, userID, actorUserID, entries)
}

// AuditTrail returns the organization's audit entries, newest first. Requires
// the audit.view permission and an attached audit log.
func (s *Service) AuditTrail(ctx context.Context, actorUserID, orgID uuid.UUID, limit int) ([]audit.Entry, error) {
	set, err := s.PermissionSetFor(ctx, actorUserID, orgID)
	if err != nil {
		return nil, err
	}
	if !set.Has(PermAuditView) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, PermAuditView)
	}
	if s.audits == nil {
		return nil, fmt.Errorf("organization: audit log is not configured")
	}
	return s.audits.Find(ctx, audit.Filter{OrganizationID: orgID, Limit: limit})
}
