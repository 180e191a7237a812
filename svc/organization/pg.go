package organization

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/audit"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/pg"
)

// PGStorage implements Storage on PostgreSQL.
type PGStorage struct {
	pool *pgxpool.Pool
}

// NewPGStorage wraps a pgx pool.
func NewPGStorage(pool *pgxpool.Pool) *PGStorage {
	return &PGStorage{pool: pool}
}

const roleColumns = `r.id, r.organization_id, r.name, r.hierarchy_level, r.is_organization_owner, r.is_default, r.created_at,
	COALESCE((SELECT array_agg(rp.permission_slug ORDER BY rp.permission_slug) FROM role_permissions rp WHERE rp.role_id = r.id), '{}')`

func (s *PGStorage) CreateOrganization(ctx context.Context, org Organization, roles []Role, owner Membership, entries []audit.Entry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO organizations (id, name, slug, mfa_required, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		org.ID, org.Name, org.Slug, org.MFARequired, org.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, role := range roles {
		_, err = tx.Exec(ctx, `
			INSERT INTO roles (id, organization_id, name, hierarchy_level, is_organization_owner, is_default, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			role.ID, role.OrganizationID, role.Name, role.HierarchyLevel,
			role.IsOrganizationOwner, role.IsDefault, role.CreatedAt,
		)
		if err != nil {
			return err
		}
		for _, slug := range role.Permissions {
			_, err = tx.Exec(ctx, `
				INSERT INTO role_permissions (role_id, permission_slug) VALUES ($1, $2)`,
				role.ID, slug,
			)
			if err != nil {
				return err
			}
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO memberships (id, organization_id, user_id, role_id, status, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		owner.ID, owner.OrganizationID, owner.UserID, owner.RoleID, owner.Status, owner.JoinedAt,
	)
	if err != nil {
		return err
	}

	if err := audit.InsertEntries(ctx, tx, entries...); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *PGStorage) GetOrganization(ctx context.Context, id uuid.UUID) (Organization, error) {
	return s.scanOrganization(s.pool.QueryRow(ctx, `
		SELECT id, name, slug, mfa_required, created_at FROM organizations WHERE id = $1`, id))
}

func (s *PGStorage) GetOrganizationBySlug(ctx context.Context, slug string) (Organization, error) {
	return s.scanOrganization(s.pool.QueryRow(ctx, `
		SELECT id, name, slug, mfa_required, created_at FROM organizations WHERE slug = $1`, slug))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PGStorage) scanOrganization(row rowScanner) (Organization, error) {
	var org Organization
	err := row.Scan(&org.ID, &org.Name, &org.Slug, &org.MFARequired, &org.CreatedAt)
	if pg.IsNotFound(err) {
		return Organization{}, fmt.Errorf("%w: organization", ErrNotFound)
	}
	return org, err
}

func (s *PGStorage) RolesByOrganization(ctx context.Context, orgID uuid.UUID) ([]Role, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+roleColumns+`
		FROM roles r
		WHERE r.organization_id = $1
		ORDER BY r.hierarchy_level ASC, r.name ASC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (s *PGStorage) GetRole(ctx context.Context, orgID, roleID uuid.UUID) (Role, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+roleColumns+`
		FROM roles r
		WHERE r.id = $1 AND r.organization_id = $2`, roleID, orgID)

	role, err := scanRole(row)
	if pg.IsNotFound(err) {
		return Role{}, fmt.Errorf("%w: role", ErrNotFound)
	}
	return role, err
}

func scanRole(row rowScanner) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.OrganizationID, &role.Name, &role.HierarchyLevel,
		&role.IsOrganizationOwner, &role.IsDefault, &role.CreatedAt, &role.Permissions)
	return role, err
}

func (s *PGStorage) ActiveMembership(ctx context.Context, orgID, userID uuid.UUID) (Membership, error) {
	return s.scanMembership(s.pool.QueryRow(ctx, `
		SELECT id, organization_id, user_id, role_id, status, joined_at, revoked_at, revoked_by
		FROM memberships
		WHERE organization_id = $1 AND user_id = $2 AND status = $3`,
		orgID, userID, MembershipActive))
}

func (s *PGStorage) ActiveMemberByEmail(ctx context.Context, orgID uuid.UUID, email string) (Membership, error) {
	return s.scanMembership(s.pool.QueryRow(ctx, `
		SELECT m.id, m.organization_id, m.user_id, m.role_id, m.status, m.joined_at, m.revoked_at, m.revoked_by
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.organization_id = $1 AND lower(u.email) = lower($2) AND m.status = $3`,
		orgID, email, MembershipActive))
}

func (s *PGStorage) scanMembership(row rowScanner) (Membership, error) {
	var m Membership
	err := row.Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.RoleID, &m.Status, &m.JoinedAt, &m.RevokedAt, &m.RevokedBy)
	if pg.IsNotFound(err) {
		return Membership{}, ErrNotMember
	}
	return m, err
}

func (s *PGStorage) ActiveOrganizations(ctx context.Context, userID uuid.UUID) ([]OrganizationSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT o.id, o.name, o.slug, r.id, r.name
		FROM memberships m
		JOIN organizations o ON o.id = m.organization_id
		JOIN roles r ON r.id = m.role_id
		WHERE m.user_id = $1 AND m.status = $2
		ORDER BY o.name ASC`, userID, MembershipActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrganizationSummary
	for rows.Next() {
		var s OrganizationSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.RoleID, &s.RoleName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (s *PGStorage) CountActiveOwners(ctx context.Context, orgID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM memberships m
		JOIN roles r ON r.id = m.role_id
		WHERE m.organization_id = $1 AND m.status = $2 AND r.is_organization_owner`,
		orgID, MembershipActive).Scan(&count)
	return count, err
}

func (s *PGStorage) RevokeMembership(ctx context.Context, orgID, userID, actorID uuid.UUID, entries []audit.Entry) (Membership, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Membership{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The status check repeats inside the update so two concurrent revokes
	// cannot both succeed.
	var m Membership
	err = tx.QueryRow(ctx, `
		UPDATE memberships
		SET status = $1, revoked_at = $2, revoked_by = $3
		WHERE organization_id = $4 AND user_id = $5 AND status = $6
		RETURNING id, organization_id, user_id, role_id, status, joined_at, revoked_at, revoked_by`,
		MembershipRevoked, time.Now().UTC(), actorID, orgID, userID, MembershipActive,
	).Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.RoleID, &m.Status, &m.JoinedAt, &m.RevokedAt, &m.RevokedBy)
	if pg.IsNotFound(err) {
		return Membership{}, ErrNotMember
	}
	if err != nil {
		return Membership{}, err
	}

	if err := audit.InsertEntries(ctx, tx, entries...); err != nil {
		return Membership{}, err
	}

	return m, tx.Commit(ctx)
}

func (s *PGStorage) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, password_hash, status, created_at
		FROM users WHERE id = $1`, id))
}

func (s *PGStorage) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, password_hash, status, created_at
		FROM users WHERE lower(email) = lower($1)`, email))
}

func (s *PGStorage) scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.Status, &u.CreatedAt)
	if pg.IsNotFound(err) {
		return User{}, fmt.Errorf("%w: user", ErrNotFound)
	}
	return u, err
}
