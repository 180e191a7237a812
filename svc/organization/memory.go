package organization

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/audit"
)

// MemoryStorage is an in-memory Storage for tests and development. Audit
// entries handed to mutating methods are appended to Audit so tests can
// assert the trail alongside the state change.
type MemoryStorage struct {
	mu            sync.RWMutex
	organizations map[uuid.UUID]Organization
	roles         map[uuid.UUID]Role
	memberships   map[uuid.UUID]Membership
	users         map[uuid.UUID]User

	// Audit receives entries from mutating operations.
	Audit *audit.MemoryStorage
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		organizations: make(map[uuid.UUID]Organization),
		roles:         make(map[uuid.UUID]Role),
		memberships:   make(map[uuid.UUID]Membership),
		users:         make(map[uuid.UUID]User),
		Audit:         audit.NewMemoryStorage(),
	}
}

// PutOrganization seeds or replaces an organization.
func (s *MemoryStorage) PutOrganization(org Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organizations[org.ID] = org
}

// PutRole seeds or replaces a role.
func (s *MemoryStorage) PutRole(role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[role.ID] = role
}

// PutUser seeds or replaces a user.
func (s *MemoryStorage) PutUser(user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

// PutMembership seeds or replaces a membership.
func (s *MemoryStorage) PutMembership(m Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[m.ID] = m
}

// FindMembership returns the membership row for (org, user) in any status.
func (s *MemoryStorage) FindMembership(orgID, userID uuid.UUID) (Membership, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.memberships {
		if m.OrganizationID == orgID && m.UserID == userID {
			return m, true
		}
	}
	return Membership{}, false
}

func (s *MemoryStorage) CreateOrganization(ctx context.Context, org Organization, roles []Role, owner Membership, entries []audit.Entry) error {
	s.mu.Lock()
	s.organizations[org.ID] = org
	for _, role := range roles {
		s.roles[role.ID] = role
	}
	s.memberships[owner.ID] = owner
	s.mu.Unlock()
	return s.Audit.Store(ctx, entries...)
}

func (s *MemoryStorage) GetOrganization(_ context.Context, id uuid.UUID) (Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.organizations[id]
	if !ok {
		return Organization{}, fmt.Errorf("%w: organization", ErrNotFound)
	}
	return org, nil
}

func (s *MemoryStorage) GetOrganizationBySlug(_ context.Context, slug string) (Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, org := range s.organizations {
		if org.Slug == slug {
			return org, nil
		}
	}
	return Organization{}, fmt.Errorf("%w: organization", ErrNotFound)
}

func (s *MemoryStorage) RolesByOrganization(_ context.Context, orgID uuid.UUID) ([]Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var roles []Role
	for _, role := range s.roles {
		if role.OrganizationID == orgID {
			roles = append(roles, role)
		}
	}
	sort.Slice(roles, func(i, j int) bool {
		if roles[i].HierarchyLevel != roles[j].HierarchyLevel {
			return roles[i].HierarchyLevel < roles[j].HierarchyLevel
		}
		return roles[i].Name < roles[j].Name
	})
	return roles, nil
}

func (s *MemoryStorage) GetRole(_ context.Context, orgID, roleID uuid.UUID) (Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roles[roleID]
	if !ok || role.OrganizationID != orgID {
		return Role{}, fmt.Errorf("%w: role", ErrNotFound)
	}
	return role, nil
}

func (s *MemoryStorage) ActiveMembership(_ context.Context, orgID, userID uuid.UUID) (Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.memberships {
		if m.OrganizationID == orgID && m.UserID == userID && m.Status == MembershipActive {
			return m, nil
		}
	}
	return Membership{}, ErrNotMember
}

func (s *MemoryStorage) ActiveMemberByEmail(_ context.Context, orgID uuid.UUID, email string) (Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.memberships {
		if m.OrganizationID != orgID || m.Status != MembershipActive {
			continue
		}
		if user, ok := s.users[m.UserID]; ok && strings.EqualFold(user.Email, email) {
			return m, nil
		}
	}
	return Membership{}, ErrNotMember
}

func (s *MemoryStorage) ActiveOrganizations(_ context.Context, userID uuid.UUID) ([]OrganizationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []OrganizationSummary
	for _, m := range s.memberships {
		if m.UserID != userID || m.Status != MembershipActive {
			continue
		}
		org := s.organizations[m.OrganizationID]
		role := s.roles[m.RoleID]
		out = append(out, OrganizationSummary{
			ID:       org.ID,
			Name:     org.Name,
			Slug:     org.Slug,
			RoleID:   role.ID,
			RoleName: role.Name,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStorage) CountActiveOwners(_ context.Context, orgID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, m := range s.memberships {
		if m.OrganizationID != orgID || m.Status != MembershipActive {
			continue
		}
		if role, ok := s.roles[m.RoleID]; ok && role.IsOrganizationOwner {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) RevokeMembership(ctx context.Context, orgID, userID, actorID uuid.UUID, entries []audit.Entry) (Membership, error) {
	s.mu.Lock()
	var revoked *Membership
	for id, m := range s.memberships {
		if m.OrganizationID == orgID && m.UserID == userID && m.Status == MembershipActive {
			now := time.Now().UTC()
			m.Status = MembershipRevoked
			m.RevokedAt = &now
			m.RevokedBy = &actorID
			s.memberships[id] = m
			revoked = &m
			break
		}
	}
	s.mu.Unlock()

	if revoked == nil {
		return Membership{}, ErrNotMember
	}
	if err := s.Audit.Store(ctx, entries...); err != nil {
		return Membership{}, err
	}
	return *revoked, nil
}

func (s *MemoryStorage) GetUserByID(_ context.Context, id uuid.UUID) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return User{}, fmt.Errorf("%w: user", ErrNotFound)
	}
	return user, nil
}

func (s *MemoryStorage) GetUserByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return User{}, fmt.Errorf("%w: user", ErrNotFound)
}

