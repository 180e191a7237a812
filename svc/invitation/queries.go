package invitation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/BlendWitTech/mero-jugx-sub003/svc/organization"
)

// List returns the organization's invitations matching the filter, newest
// first, with statuses resolved to their effective value as of now. The
// status filter matches effectively too, so pending never includes rows past
// expiry and expired includes stored pending rows whose expiry passed.
// Requires the invitations.view permission.
func (s *Service) List(ctx context.Context, actorUserID, orgID uuid.UUID, filter Filter) ([]Invitation, error) {
	if _, err := s.requirePermission(ctx, actorUserID, orgID, PermView); err != nil {
		return nil, err
	}
	switch filter.Status {
	case "", StatusPending, StatusAccepted, StatusCancelled, StatusExpired:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, filter.Status)
	}

	filter.Email = strings.ToLower(strings.TrimSpace(filter.Email))
	filter.Now = s.now().UTC()
	invitations, err := s.storage.List(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}

	for i := range invitations {
		invitations[i].Status = invitations[i].EffectiveStatus(filter.Now)
	}
	return invitations, nil
}

// Pending lists the organization's effectively pending invitations, newest
// first. Requires the invitations.view permission.
func (s *Service) Pending(ctx context.Context, actorUserID, orgID uuid.UUID) ([]Invitation, error) {
	return s.List(ctx, actorUserID, orgID, Filter{Status: StatusPending})
}

// History lists the organization's invitations with their effective status
// resolved as of now, optionally narrowed to one email. Requires the
// invitations.view permission.
func (s *Service) History(ctx context.Context, actorUserID, orgID uuid.UUID, email string, limit int) ([]Invitation, error) {
	return s.List(ctx, actorUserID, orgID, Filter{Email: email, Limit: limit})
}

// Get returns one invitation scoped to the organization, with its effective
// status resolved. Requires the invitations.view permission.
func (s *Service) Get(ctx context.Context, actorUserID, orgID, id uuid.UUID) (Invitation, error) {
	if _, err := s.requirePermission(ctx, actorUserID, orgID, PermView); err != nil {
		return Invitation{}, err
	}
	inv, err := s.storage.GetInvitation(ctx, orgID, id)
	if err != nil {
		return Invitation{}, err
	}
	inv.Status = inv.EffectiveStatus(s.now().UTC())
	return inv, nil
}

// PreviewByToken resolves an invitation token for the pre-authentication
// acceptance page. No permission check: possession of the token is the
// credential. An expired invitation previews with status expired rather than
// erroring so the page can explain what happened.
func (s *Service) PreviewByToken(ctx context.Context, token uuid.UUID) (Preview, error) {
	inv, err := s.storage.GetInvitationByToken(ctx, token)
	if err != nil {
		return Preview{}, err
	}
	inv.Status = inv.EffectiveStatus(s.now().UTC())

	org, err := s.orgs.GetOrganization(ctx, inv.OrganizationID)
	if err != nil {
		return Preview{}, err
	}
	role, err := s.orgs.GetRole(ctx, inv.OrganizationID, inv.RoleID)
	if err != nil {
		return Preview{}, err
	}

	userExists := true
	if _, err := s.orgs.GetUserByEmail(ctx, inv.Email); err != nil {
		if !errors.Is(err, organization.ErrNotFound) {
			return Preview{}, err
		}
		userExists = false
	}

	return Preview{
		Invitation:       inv,
		OrganizationName: org.Name,
		RoleName:         role.Name,
		UserExists:       userExists,
	}, nil
}
