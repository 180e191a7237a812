package organization

import (
	"context"

	"github.com/google/uuid"
)

// MembershipContext is the result of resolving which organization a user
// operates in after authentication.
type MembershipContext struct {
	// Organizations the user actively belongs to; never empty.
	Organizations []OrganizationSummary
}

// Single returns the only organization when the user belongs to exactly one.
// When it reports false the caller must present a selection step and come
// back through ResolveExplicit.
func (c MembershipContext) Single() (OrganizationSummary, bool) {
	if len(c.Organizations) == 1 {
		return c.Organizations[0], true
	}
	return OrganizationSummary{}, false
}

// ResolveContext determines the organization context for a user. Exactly one
// active membership resolves directly; several leave the choice to the
// authentication flow; none is ErrNoMembership. The resolver is a pure
// lookup and never mutates membership state.
func (s *Service) ResolveContext(ctx context.Context, userID uuid.UUID) (MembershipContext, error) {
	orgs, err := s.storage.ActiveOrganizations(ctx, userID)
	if err != nil {
		return MembershipContext{}, err
	}
	if len(orgs) == 0 {
		return MembershipContext{}, ErrNoMembership
	}
	return MembershipContext{Organizations: orgs}, nil
}

// ResolveExplicit validates a user's explicit organization choice from the
// selection step. The membership is re-checked here; the earlier listing is
// not trusted across requests.
func (s *Service) ResolveExplicit(ctx context.Context, userID, orgID uuid.UUID) (OrganizationSummary, error) {
	orgs, err := s.storage.ActiveOrganizations(ctx, userID)
	if err != nil {
		return OrganizationSummary{}, err
	}
	for _, org := range orgs {
		if org.ID == orgID {
			return org, nil
		}
	}
	return OrganizationSummary{}, ErrNotMember
}
