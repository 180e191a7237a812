package invitation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/audit"
	"github.com/BlendWitTech/mero-jugx-sub003/svc/organization"
)

// Storage persists invitations. Implementations must keep the audit entries
// in the same transaction as the state change they describe.
type Storage interface {
	// CreateInvitation inserts a new pending invitation. Stored pending rows
	// for the same (organization, email) whose expiry passed before now are
	// marked expired first; a surviving pending row yields ErrDuplicatePending.
	CreateInvitation(ctx context.Context, inv Invitation, now time.Time, entries []audit.Entry) error

	// GetInvitation returns the invitation scoped to the organization, or
	// ErrNotFound.
	GetInvitation(ctx context.Context, orgID, id uuid.UUID) (Invitation, error)

	// GetInvitationByToken returns the invitation for an acceptance token, or
	// ErrNotFound. The token is the only handle pre-authentication clients hold.
	GetInvitationByToken(ctx context.Context, token uuid.UUID) (Invitation, error)

	// List returns the organization's invitations, newest first, narrowed and
	// paginated per filter. Status matching is against the effective status as
	// of filter.Now.
	List(ctx context.Context, orgID uuid.UUID, filter Filter) ([]Invitation, error)

	// MarkCancelled transitions a pending invitation to cancelled under a row
	// lock, re-validating state inside the transaction. Returns
	// ErrAlreadyAccepted, ErrNotPending or ErrExpired on a lost race.
	MarkCancelled(ctx context.Context, orgID, id, actorID uuid.UUID, now time.Time, entries []audit.Entry) (Invitation, error)

	// AcceptInvitation atomically accepts the invitation identified by token:
	// it locks the row, re-validates pending state and expiry, resolves or
	// creates the user (newUser is used only when no account exists for the
	// invited email), creates or reactivates the membership, and marks the
	// invitation accepted. Audit entries are built inside since the outcome
	// (fresh membership vs reactivation, new account vs existing) is only
	// known within the transaction.
	AcceptInvitation(ctx context.Context, token uuid.UUID, now time.Time, newUser *organization.User) (Invitation, organization.Membership, error)
}
