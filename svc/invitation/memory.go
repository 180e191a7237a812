package invitation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/audit"
	"github.com/BlendWitTech/mero-jugx-sub003/svc/organization"
)

// MemoryStorage is an in-memory Storage for tests and development. It leans
// on an organization.MemoryStorage for the users and memberships the accept
// path touches, mirroring how the PostgreSQL implementation shares tables.
type MemoryStorage struct {
	mu          sync.Mutex
	invitations map[uuid.UUID]Invitation
	orgs        *organization.MemoryStorage

	// Audit receives entries from mutating operations.
	Audit *audit.MemoryStorage
}

// NewMemoryStorage creates an empty storage bound to the given organization
// storage.
func NewMemoryStorage(orgs *organization.MemoryStorage) *MemoryStorage {
	if orgs == nil {
		panic("invitation: organization storage cannot be nil")
	}
	return &MemoryStorage{
		invitations: make(map[uuid.UUID]Invitation),
		orgs:        orgs,
		Audit:       audit.NewMemoryStorage(),
	}
}

// Put seeds or replaces an invitation.
func (s *MemoryStorage) Put(inv Invitation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invitations[inv.ID] = inv
}

func (s *MemoryStorage) CreateInvitation(ctx context.Context, inv Invitation, now time.Time, entries []audit.Entry) error {
	s.mu.Lock()
	for id, existing := range s.invitations {
		if existing.OrganizationID != inv.OrganizationID || existing.Email != inv.Email {
			continue
		}
		if existing.Status != StatusPending {
			continue
		}
		if existing.EffectiveStatus(now) == StatusExpired {
			existing.Status = StatusExpired
			s.invitations[id] = existing
			continue
		}
		s.mu.Unlock()
		return ErrDuplicatePending
	}
	s.invitations[inv.ID] = inv
	s.mu.Unlock()
	return s.Audit.Store(ctx, entries...)
}

func (s *MemoryStorage) GetInvitation(_ context.Context, orgID, id uuid.UUID) (Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invitations[id]
	if !ok || inv.OrganizationID != orgID {
		return Invitation{}, ErrNotFound
	}
	return inv, nil
}

func (s *MemoryStorage) GetInvitationByToken(_ context.Context, token uuid.UUID) (Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invitations {
		if inv.Token == token {
			return inv, nil
		}
	}
	return Invitation{}, ErrNotFound
}

func (s *MemoryStorage) List(_ context.Context, orgID uuid.UUID, filter Filter) ([]Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Invitation
	for _, inv := range s.invitations {
		if inv.OrganizationID != orgID {
			continue
		}
		if filter.Status != "" && inv.EffectiveStatus(filter.Now) != filter.Status {
			continue
		}
		if filter.Email != "" && inv.Email != filter.Email {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.Limit
		}
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
		if len(out) > filter.Limit {
			out = out[:filter.Limit]
		}
	}
	return out, nil
}

func (s *MemoryStorage) MarkCancelled(ctx context.Context, orgID, id, actorID uuid.UUID, now time.Time, entries []audit.Entry) (Invitation, error) {
	s.mu.Lock()
	inv, ok := s.invitations[id]
	if !ok || inv.OrganizationID != orgID {
		s.mu.Unlock()
		return Invitation{}, ErrNotFound
	}
	if err := guardCancellable(inv, now); err != nil {
		s.mu.Unlock()
		return Invitation{}, err
	}
	inv.Status = StatusCancelled
	inv.CancelledAt = &now
	inv.CancelledBy = &actorID
	s.invitations[id] = inv
	s.mu.Unlock()

	if err := s.Audit.Store(ctx, entries...); err != nil {
		return Invitation{}, err
	}
	return inv, nil
}

func (s *MemoryStorage) AcceptInvitation(ctx context.Context, token uuid.UUID, now time.Time, newUser *organization.User) (Invitation, organization.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var inv Invitation
	found := false
	for _, candidate := range s.invitations {
		if candidate.Token == token {
			inv, found = candidate, true
			break
		}
	}
	if !found {
		return Invitation{}, organization.Membership{}, ErrNotFound
	}
	if err := guardPending(inv, now); err != nil {
		return Invitation{}, organization.Membership{}, err
	}

	var entries []audit.Entry
	user, err := s.orgs.GetUserByEmail(ctx, inv.Email)
	if err != nil {
		if newUser == nil {
			return Invitation{}, organization.Membership{}, fmt.Errorf("%w: registration details are required", ErrValidation)
		}
		user = *newUser
		s.orgs.PutUser(user)
		entries = append(entries, audit.NewEntry("user.create",
			audit.WithOrganization(inv.OrganizationID),
			audit.WithActor(user.ID),
			audit.WithEntity("user", user.ID.String()),
			audit.WithNewValues(map[string]any{"email": user.Email}),
		))
	}

	m, exists := s.orgs.FindMembership(inv.OrganizationID, user.ID)
	switch {
	case exists && m.Status == organization.MembershipActive:
		return Invitation{}, organization.Membership{}, ErrAlreadyMember
	case exists:
		oldStatus := m.Status
		m.RoleID = inv.RoleID
		m.Status = organization.MembershipActive
		m.JoinedAt = now
		m.RevokedAt = nil
		m.RevokedBy = nil
		s.orgs.PutMembership(m)
		entries = append(entries, audit.NewEntry("membership.reactivate",
			audit.WithOrganization(inv.OrganizationID),
			audit.WithActor(user.ID),
			audit.WithEntity("membership", m.ID.String()),
			audit.WithOldValues(map[string]any{"status": string(oldStatus)}),
			audit.WithNewValues(map[string]any{"role_id": m.RoleID.String(), "status": string(m.Status)}),
		))
	default:
		m = organization.Membership{
			ID:             uuid.New(),
			OrganizationID: inv.OrganizationID,
			UserID:         user.ID,
			RoleID:         inv.RoleID,
			Status:         organization.MembershipActive,
			JoinedAt:       now,
		}
		s.orgs.PutMembership(m)
		entries = append(entries, audit.NewEntry("membership.create",
			audit.WithOrganization(inv.OrganizationID),
			audit.WithActor(user.ID),
			audit.WithEntity("membership", m.ID.String()),
			audit.WithNewValues(map[string]any{"role_id": m.RoleID.String(), "status": string(m.Status)}),
		))
	}

	inv.Status = StatusAccepted
	inv.UserID = &user.ID
	inv.AcceptedAt = &now
	s.invitations[inv.ID] = inv

	entries = append(entries, audit.NewEntry("invitation.accept",
		audit.WithOrganization(inv.OrganizationID),
		audit.WithActor(user.ID),
		audit.WithEntity("invitation", inv.ID.String()),
		audit.WithOldValues(map[string]any{"status": string(StatusPending)}),
		audit.WithNewValues(map[string]any{"status": string(StatusAccepted), "user_id": user.ID.String()}),
	))
	if err := s.Audit.Store(ctx, entries...); err != nil {
		return Invitation{}, organization.Membership{}, err
	}
	return inv, m, nil
}
