package invitation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/permission"
	"github.com/BlendWitTech/mero-jugx-sub003/svc/organization"
)

// Permission slugs guarding the invitation operations, from the seeded
// catalog.
const (
	PermCreate = organization.PermInvitationsCreate
	PermView   = organization.PermInvitationsView
	PermCancel = organization.PermInvitationsCancel
)

// Service implements the invitation lifecycle on top of an invitation Storage
// and the organization domain's Storage (memberships, roles, users).
type Service struct {
	storage  Storage
	orgs     organization.Storage
	notifier *Notifier
	log      *slog.Logger
	ttl      time.Duration
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTTL overrides the invitation lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Service. Storage, organization storage and notifier
// must not be nil; a nil logger falls back to slog.Default.
func NewService(storage Storage, orgs organization.Storage, notifier *Notifier, log *slog.Logger, opts ...Option) *Service {
	if storage == nil {
		panic("invitation: storage cannot be nil")
	}
	if orgs == nil {
		panic("invitation: organization storage cannot be nil")
	}
	if notifier == nil {
		panic("invitation: notifier cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		storage:  storage,
		orgs:     orgs,
		notifier: notifier,
		log:      log,
		ttl:      DefaultTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// actorRole loads the actor's active membership and its role fresh from
// storage. Every guarded operation starts here so a revoked membership or a
// changed role takes effect immediately.
func (s *Service) actorRole(ctx context.Context, actorUserID, orgID uuid.UUID) (organization.Role, error) {
	membership, err := s.orgs.ActiveMembership(ctx, orgID, actorUserID)
	if err != nil {
		return organization.Role{}, err
	}
	return s.orgs.GetRole(ctx, orgID, membership.RoleID)
}

// requirePermission resolves the actor's permission set and checks one slug,
// returning the actor's role for follow-up hierarchy checks.
func (s *Service) requirePermission(ctx context.Context, actorUserID, orgID uuid.UUID, slug string) (organization.Role, error) {
	role, err := s.actorRole(ctx, actorUserID, orgID)
	if err != nil {
		return organization.Role{}, err
	}
	if !permission.Resolve(&role).Has(slug) {
		return organization.Role{}, fmt.Errorf("%w: %s", organization.ErrPermissionDenied, slug)
	}
	return role, nil
}
