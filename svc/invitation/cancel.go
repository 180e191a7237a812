package invitation

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/audit"
)

// Cancel withdraws a pending invitation. Accepted invitations cannot be
// cancelled (the membership exists; revoke it instead), and an invitation
// that expired before the cancel lands reports ErrExpired. The state check
// runs again under a row lock in storage so two concurrent transitions cannot
// both win.
func (s *Service) Cancel(ctx context.Context, actorUserID, orgID, id uuid.UUID) (Invitation, error) {
	if _, err := s.requirePermission(ctx, actorUserID, orgID, PermCancel); err != nil {
		return Invitation{}, err
	}

	now := s.now().UTC()
	entries := []audit.Entry{
		audit.NewEntry("invitation.cancel",
			audit.WithOrganization(orgID),
			audit.WithActor(actorUserID),
			audit.WithEntity("invitation", id.String()),
			audit.WithOldValues(map[string]any{"status": string(StatusPending)}),
			audit.WithNewValues(map[string]any{"status": string(StatusCancelled)}),
		),
	}

	inv, err := s.storage.MarkCancelled(ctx, orgID, id, actorUserID, now, entries)
	if err != nil {
		return Invitation{}, err
	}

	s.log.InfoContext(ctx, "invitation cancelled",
		slog.String("invitation_id", inv.ID.String()),
		slog.String("organization_id", orgID.String()),
	)
	return inv, nil
}
