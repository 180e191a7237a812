package invitation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/audit"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/pg"
	"github.com/BlendWitTech/mero-jugx-sub003/svc/organization"
)

// PGStorage implements Storage on PostgreSQL. A partial unique index on
// (organization_id, email) WHERE status = 'pending' backs the one-pending
// rule; stored pending rows past expiry are swept to expired before each
// insert so they never block a re-invitation.
type PGStorage struct {
	pool *pgxpool.Pool
}

// NewPGStorage wraps a pgx pool.
func NewPGStorage(pool *pgxpool.Pool) *PGStorage {
	return &PGStorage{pool: pool}
}

const invitationColumns = `id, organization_id, email, role_id, token, status, message, invited_by,
	user_id, expires_at, created_at, accepted_at, cancelled_at, cancelled_by`

func scanInvitation(row interface{ Scan(dest ...any) error }) (Invitation, error) {
	var inv Invitation
	err := row.Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &inv.RoleID, &inv.Token,
		&inv.Status, &inv.Message, &inv.InvitedBy, &inv.UserID, &inv.ExpiresAt, &inv.CreatedAt,
		&inv.AcceptedAt, &inv.CancelledAt, &inv.CancelledBy)
	return inv, err
}

func (s *PGStorage) CreateInvitation(ctx context.Context, inv Invitation, now time.Time, entries []audit.Entry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		UPDATE invitations SET status = $1
		WHERE organization_id = $2 AND email = $3 AND status = $4 AND expires_at < $5`,
		StatusExpired, inv.OrganizationID, inv.Email, StatusPending, now,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO invitations (id, organization_id, email, role_id, token, status, message, invited_by, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		inv.ID, inv.OrganizationID, inv.Email, inv.RoleID, inv.Token, inv.Status,
		inv.Message, inv.InvitedBy, inv.UserID, inv.ExpiresAt, inv.CreatedAt,
	)
	if pg.IsUniqueViolation(err) {
		return ErrDuplicatePending
	}
	if err != nil {
		return err
	}

	if err := audit.InsertEntries(ctx, tx, entries...); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PGStorage) GetInvitation(ctx context.Context, orgID, id uuid.UUID) (Invitation, error) {
	inv, err := scanInvitation(s.pool.QueryRow(ctx, `
		SELECT `+invitationColumns+` FROM invitations WHERE id = $1 AND organization_id = $2`, id, orgID))
	if pg.IsNotFound(err) {
		return Invitation{}, ErrNotFound
	}
	return inv, err
}

func (s *PGStorage) GetInvitationByToken(ctx context.Context, token uuid.UUID) (Invitation, error) {
	inv, err := scanInvitation(s.pool.QueryRow(ctx, `
		SELECT `+invitationColumns+` FROM invitations WHERE token = $1`, token))
	if pg.IsNotFound(err) {
		return Invitation{}, ErrNotFound
	}
	return inv, err
}

func (s *PGStorage) List(ctx context.Context, orgID uuid.UUID, filter Filter) ([]Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE organization_id = $1`
	args := []any{orgID}
	// The status filter matches the effective status, so pending excludes rows
	// past expiry and expired includes stored pending rows the sweep has not
	// touched yet.
	switch filter.Status {
	case "":
	case StatusPending:
		args = append(args, StatusPending, filter.Now)
		query += fmt.Sprintf(` AND status = $%d AND expires_at >= $%d`, len(args)-1, len(args))
	case StatusExpired:
		args = append(args, StatusExpired, StatusPending, filter.Now)
		query += fmt.Sprintf(` AND (status = $%d OR (status = $%d AND expires_at < $%d))`,
			len(args)-2, len(args)-1, len(args))
	default:
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		query += fmt.Sprintf(` AND email = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
		if filter.Page > 1 {
			query += fmt.Sprintf(` OFFSET %d`, (filter.Page-1)*filter.Limit)
		}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (s *PGStorage) MarkCancelled(ctx context.Context, orgID, id, actorID uuid.UUID, now time.Time, entries []audit.Entry) (Invitation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Invitation{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inv, err := s.lockInvitation(ctx, tx, `id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return Invitation{}, err
	}
	if err := guardCancellable(inv, now); err != nil {
		return Invitation{}, err
	}

	inv.Status = StatusCancelled
	inv.CancelledAt = &now
	inv.CancelledBy = &actorID
	_, err = tx.Exec(ctx, `
		UPDATE invitations SET status = $1, cancelled_at = $2, cancelled_by = $3 WHERE id = $4`,
		inv.Status, inv.CancelledAt, inv.CancelledBy, inv.ID,
	)
	if err != nil {
		return Invitation{}, err
	}

	if err := audit.InsertEntries(ctx, tx, entries...); err != nil {
		return Invitation{}, err
	}
	return inv, tx.Commit(ctx)
}

func guardCancellable(inv Invitation, now time.Time) error {
	switch inv.EffectiveStatus(now) {
	case StatusPending:
		return nil
	case StatusAccepted:
		return ErrAlreadyAccepted
	case StatusExpired:
		return ErrExpired
	default:
		return ErrNotPending
	}
}

func (s *PGStorage) AcceptInvitation(ctx context.Context, token uuid.UUID, now time.Time, newUser *organization.User) (Invitation, organization.Membership, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Invitation{}, organization.Membership{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inv, err := s.lockInvitation(ctx, tx, `token = $1`, token)
	if err != nil {
		return Invitation{}, organization.Membership{}, err
	}
	if err := guardPending(inv, now); err != nil {
		return Invitation{}, organization.Membership{}, err
	}

	userID, userEntries, err := s.resolveUser(ctx, tx, inv, newUser)
	if err != nil {
		return Invitation{}, organization.Membership{}, err
	}

	membership, memberEntries, err := s.attachMembership(ctx, tx, inv, userID, now)
	if err != nil {
		return Invitation{}, organization.Membership{}, err
	}

	inv.Status = StatusAccepted
	inv.UserID = &userID
	inv.AcceptedAt = &now
	_, err = tx.Exec(ctx, `
		UPDATE invitations SET status = $1, user_id = $2, accepted_at = $3 WHERE id = $4`,
		inv.Status, inv.UserID, inv.AcceptedAt, inv.ID,
	)
	if err != nil {
		return Invitation{}, organization.Membership{}, err
	}

	entries := append(userEntries, memberEntries...)
	entries = append(entries, audit.NewEntry("invitation.accept",
		audit.WithOrganization(inv.OrganizationID),
		audit.WithActor(userID),
		audit.WithEntity("invitation", inv.ID.String()),
		audit.WithOldValues(map[string]any{"status": string(StatusPending)}),
		audit.WithNewValues(map[string]any{"status": string(StatusAccepted), "user_id": userID.String()}),
	))
	if err := audit.InsertEntries(ctx, tx, entries...); err != nil {
		return Invitation{}, organization.Membership{}, err
	}

	return inv, membership, tx.Commit(ctx)
}

func (s *PGStorage) lockInvitation(ctx context.Context, tx pgx.Tx, where string, args ...any) (Invitation, error) {
	inv, err := scanInvitation(tx.QueryRow(ctx, `
		SELECT `+invitationColumns+` FROM invitations WHERE `+where+` FOR UPDATE`, args...))
	if pg.IsNotFound(err) {
		return Invitation{}, ErrNotFound
	}
	return inv, err
}

// resolveUser finds the account for the invited email inside the transaction,
// inserting newUser when none exists. The re-check matters: an account may
// have appeared between the service's lookup and this transaction.
func (s *PGStorage) resolveUser(ctx context.Context, tx pgx.Tx, inv Invitation, newUser *organization.User) (uuid.UUID, []audit.Entry, error) {
	var userID uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE lower(email) = lower($1)`, inv.Email).Scan(&userID)
	if err == nil {
		return userID, nil, nil
	}
	if !pg.IsNotFound(err) {
		return uuid.Nil, nil, err
	}
	if newUser == nil {
		return uuid.Nil, nil, fmt.Errorf("%w: registration details are required", ErrValidation)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, email, first_name, last_name, password_hash, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		newUser.ID, newUser.Email, newUser.FirstName, newUser.LastName,
		newUser.PasswordHash, newUser.Status, newUser.CreatedAt,
	)
	if err != nil {
		return uuid.Nil, nil, err
	}

	entry := audit.NewEntry("user.create",
		audit.WithOrganization(inv.OrganizationID),
		audit.WithActor(newUser.ID),
		audit.WithEntity("user", newUser.ID.String()),
		audit.WithNewValues(map[string]any{"email": newUser.Email}),
	)
	return newUser.ID, []audit.Entry{entry}, nil
}

// attachMembership creates the membership, reactivating a revoked or left row
// for the same (organization, user) instead of inserting a duplicate.
func (s *PGStorage) attachMembership(ctx context.Context, tx pgx.Tx, inv Invitation, userID uuid.UUID, now time.Time) (organization.Membership, []audit.Entry, error) {
	var m organization.Membership
	err := tx.QueryRow(ctx, `
		SELECT id, organization_id, user_id, role_id, status, joined_at, revoked_at, revoked_by
		FROM memberships WHERE organization_id = $1 AND user_id = $2 FOR UPDATE`,
		inv.OrganizationID, userID,
	).Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.RoleID, &m.Status, &m.JoinedAt, &m.RevokedAt, &m.RevokedBy)

	switch {
	case pg.IsNotFound(err):
		m = organization.Membership{
			ID:             uuid.New(),
			OrganizationID: inv.OrganizationID,
			UserID:         userID,
			RoleID:         inv.RoleID,
			Status:         organization.MembershipActive,
			JoinedAt:       now,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO memberships (id, organization_id, user_id, role_id, status, joined_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			m.ID, m.OrganizationID, m.UserID, m.RoleID, m.Status, m.JoinedAt,
		)
		if err != nil {
			return organization.Membership{}, nil, err
		}
		entry := audit.NewEntry("membership.create",
			audit.WithOrganization(inv.OrganizationID),
			audit.WithActor(userID),
			audit.WithEntity("membership", m.ID.String()),
			audit.WithNewValues(map[string]any{"role_id": m.RoleID.String(), "status": string(m.Status)}),
		)
		return m, []audit.Entry{entry}, nil

	case err != nil:
		return organization.Membership{}, nil, err

	case m.Status == organization.MembershipActive:
		return organization.Membership{}, nil, ErrAlreadyMember

	default:
		oldStatus := m.Status
		m.RoleID = inv.RoleID
		m.Status = organization.MembershipActive
		m.JoinedAt = now
		m.RevokedAt = nil
		m.RevokedBy = nil
		_, err = tx.Exec(ctx, `
			UPDATE memberships
			SET role_id = $1, status = $2, joined_at = $3, revoked_at = NULL, revoked_by = NULL
			WHERE id = $4`,
			m.RoleID, m.Status, m.JoinedAt, m.ID,
		)
		if err != nil {
			return organization.Membership{}, nil, err
		}
		entry := audit.NewEntry("membership.reactivate",
			audit.WithOrganization(inv.OrganizationID),
			audit.WithActor(userID),
			audit.WithEntity("membership", m.ID.String()),
			audit.WithOldValues(map[string]any{"status": string(oldStatus)}),
			audit.WithNewValues(map[string]any{"role_id": m.RoleID.String(), "status": string(m.Status)}),
		)
		return m, []audit.Entry{entry}, nil
	}
}
