package invitation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/audit"
	"github.com/BlendWitTech/mero-jugx-sub003/svc/organization"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// CreateParams describes a new invitation.
type CreateParams struct {
	OrganizationID uuid.UUID
	ActorUserID    uuid.UUID
	Email          string
	RoleID         uuid.UUID
	Message        string
}

// Validate normalizes and checks the params. The email is lowercased so the
// per-organization uniqueness guarantee is case-insensitive.
func (p *CreateParams) Validate() error {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Email == "" || !emailRegex.MatchString(p.Email) {
		return fmt.Errorf("%w: invalid email %q", ErrValidation, p.Email)
	}
	if p.RoleID == uuid.Nil {
		return fmt.Errorf("%w: role id is required", ErrValidation)
	}
	if p.OrganizationID == uuid.Nil || p.ActorUserID == uuid.Nil {
		return fmt.Errorf("%w: organization and actor are required", ErrValidation)
	}
	return nil
}

// Create issues an invitation. The actor needs the invitations.create
// permission and may only grant roles strictly below their own hierarchy
// level; the owner role is never grantable. One effective-pending invitation
// per (organization, email) is allowed at a time, and addresses already
// belonging to an active member are rejected. The notification email is
// dispatched without blocking the request; a dispatch-time validation failure
// comes back as a warning on the result, never as an error.
func (s *Service) Create(ctx context.Context, params CreateParams) (CreateResult, error) {
	if err := params.Validate(); err != nil {
		return CreateResult{}, err
	}

	actorRole, err := s.requirePermission(ctx, params.ActorUserID, params.OrganizationID, PermCreate)
	if err != nil {
		return CreateResult{}, err
	}

	targetRole, err := s.orgs.GetRole(ctx, params.OrganizationID, params.RoleID)
	if err != nil {
		return CreateResult{}, err
	}
	if !organization.CanAssign(actorRole, targetRole) {
		return CreateResult{}, fmt.Errorf("%w: %s", ErrRoleNotAssignable, targetRole.Name)
	}

	if _, err := s.orgs.ActiveMemberByEmail(ctx, params.OrganizationID, params.Email); err == nil {
		return CreateResult{}, ErrAlreadyMember
	} else if !errors.Is(err, organization.ErrNotMember) {
		return CreateResult{}, err
	}

	// An existing account for the email is linked up front; for everyone else
	// the link is made on acceptance.
	var userID *uuid.UUID
	if user, err := s.orgs.GetUserByEmail(ctx, params.Email); err == nil {
		userID = &user.ID
	} else if !errors.Is(err, organization.ErrNotFound) {
		return CreateResult{}, err
	}

	now := s.now().UTC()
	inv := Invitation{
		ID:             uuid.New(),
		OrganizationID: params.OrganizationID,
		Email:          params.Email,
		RoleID:         params.RoleID,
		Token:          uuid.New(),
		Status:         StatusPending,
		Message:        strings.TrimSpace(params.Message),
		InvitedBy:      params.ActorUserID,
		UserID:         userID,
		ExpiresAt:      now.Add(s.ttl),
		CreatedAt:      now,
	}

	entries := []audit.Entry{
		audit.NewEntry("invitation.create",
			audit.WithOrganization(inv.OrganizationID),
			audit.WithActor(inv.InvitedBy),
			audit.WithEntity("invitation", inv.ID.String()),
			audit.WithNewValues(map[string]any{
				"email":      inv.Email,
				"role_id":    inv.RoleID.String(),
				"expires_at": inv.ExpiresAt,
			}),
		),
	}

	if err := s.storage.CreateInvitation(ctx, inv, now, entries); err != nil {
		return CreateResult{}, err
	}

	result := CreateResult{Invitation: inv}

	org, err := s.orgs.GetOrganization(ctx, inv.OrganizationID)
	if err != nil {
		// The invitation is committed; a failed org lookup only degrades the
		// email, so report it as a warning like any other dispatch failure.
		s.log.ErrorContext(ctx, "failed to load organization for invitation email",
			slog.String("invitation_id", inv.ID.String()),
			slog.Any("error", err),
		)
		result.Warning = "invitation created but the notification email could not be sent"
		return result, nil
	}
	if err := s.notifier.InvitationCreated(ctx, inv, org.Name, targetRole.Name); err != nil {
		s.log.WarnContext(ctx, "invitation email rejected before dispatch",
			slog.String("invitation_id", inv.ID.String()),
			slog.Any("error", err),
		)
		result.Warning = "invitation created but the notification email could not be sent"
	}

	s.log.InfoContext(ctx, "invitation created",
		slog.String("invitation_id", inv.ID.String()),
		slog.String("organization_id", inv.OrganizationID.String()),
		slog.String("email", inv.Email),
	)
	return result, nil
}
