package invitation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/BlendWitTech/mero-jugx-sub003/svc/organization"
)

const minPasswordLength = 8

// AcceptParams describes an acceptance. The registration fields are required
// only when no account exists for the invited email; they are ignored
// otherwise.
type AcceptParams struct {
	Token     uuid.UUID
	FirstName string
	LastName  string
	Password  string
}

// AcceptOutcome is the result of a successful acceptance.
type AcceptOutcome struct {
	Invitation Invitation
	Membership organization.Membership
	// UserID of the member, whether pre-existing or created during acceptance.
	UserID uuid.UUID
}

// Accept redeems an invitation token. For an email without an account the
// registration fields create one; for an existing account acceptance attaches
// to it directly, regardless of who is signed in. A previously revoked or
// left membership is reactivated with the invited role rather than
// duplicated. Status and expiry are validated here and again under a row lock
// inside the storage transaction.
func (s *Service) Accept(ctx context.Context, params AcceptParams) (AcceptOutcome, error) {
	if params.Token == uuid.Nil {
		return AcceptOutcome{}, fmt.Errorf("%w: token is required", ErrValidation)
	}

	inv, err := s.storage.GetInvitationByToken(ctx, params.Token)
	if err != nil {
		return AcceptOutcome{}, err
	}

	now := s.now().UTC()
	if err := guardPending(inv, now); err != nil {
		return AcceptOutcome{}, err
	}

	var newUser *organization.User
	if _, err := s.orgs.GetUserByEmail(ctx, inv.Email); err != nil {
		if !errors.Is(err, organization.ErrNotFound) {
			return AcceptOutcome{}, err
		}
		newUser, err = s.buildUser(inv.Email, params, now)
		if err != nil {
			return AcceptOutcome{}, err
		}
	}

	accepted, membership, err := s.storage.AcceptInvitation(ctx, params.Token, now, newUser)
	if err != nil {
		return AcceptOutcome{}, err
	}

	if org, err := s.orgs.GetOrganization(ctx, accepted.OrganizationID); err == nil {
		if err := s.notifier.InvitationAccepted(ctx, accepted, org.Name); err != nil {
			s.log.WarnContext(ctx, "welcome email rejected before dispatch",
				slog.String("invitation_id", accepted.ID.String()),
				slog.Any("error", err),
			)
		}
	}

	s.log.InfoContext(ctx, "invitation accepted",
		slog.String("invitation_id", accepted.ID.String()),
		slog.String("organization_id", accepted.OrganizationID.String()),
		slog.Bool("new_user", newUser != nil),
	)
	return AcceptOutcome{
		Invitation: accepted,
		Membership: membership,
		UserID:     membership.UserID,
	}, nil
}

// guardPending maps an invitation's effective status to the acceptance error
// taxonomy.
func guardPending(inv Invitation, now time.Time) error {
	switch inv.EffectiveStatus(now) {
	case StatusPending:
		return nil
	case StatusExpired:
		return ErrExpired
	case StatusAccepted:
		return ErrNotPending
	default:
		return ErrNotPending
	}
}

func (s *Service) buildUser(email string, params AcceptParams, now time.Time) (*organization.User, error) {
	firstName := strings.TrimSpace(params.FirstName)
	lastName := strings.TrimSpace(params.LastName)
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required to register", ErrValidation)
	}
	if len(params.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &organization.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hash,
		Status:       organization.UserActive,
		CreatedAt:    now,
	}, nil
}
