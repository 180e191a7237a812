package invitation

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long an invitation stays acceptable after creation.
const DefaultTTL = 72 * time.Hour

// Status is the lifecycle state of an invitation. Only pending, accepted and
// cancelled are stored; expired is derived from the timestamp at read time
// (see EffectiveStatus) and only written back opportunistically.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Invitation is a pending grant of membership in an organization, addressed
// to an email rather than a user: the recipient may not have an account yet.
type Invitation struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Email          string
	RoleID         uuid.UUID
	Token          uuid.UUID
	Status         Status
	Message        string // optional note from the inviter, shown in the email and preview
	InvitedBy      uuid.UUID
	UserID         *uuid.UUID // linked at creation when the email already has an account, set at latest on acceptance
	ExpiresAt      time.Time
	CreatedAt      time.Time
	AcceptedAt     *time.Time
	CancelledAt    *time.Time
	CancelledBy    *uuid.UUID
}

// EffectiveStatus is the status as of now: a stored pending invitation whose
// expiry has passed reads as expired. Expiry is strict, so an invitation is
// still pending at the exact expiry instant. All read paths and guards go
// through this so no sweeper job is needed.
func (i Invitation) EffectiveStatus(now time.Time) Status {
	if i.Status == StatusPending && now.After(i.ExpiresAt) {
		return StatusExpired
	}
	return i.Status
}

// Filter narrows a listing. Status matches the effective status as of Now,
// zero means every status; Email keeps one address's rows. Page is 1-based
// and only applies when Limit is set.
type Filter struct {
	Status Status
	Email  string
	Now    time.Time
	Page   int
	Limit  int
}

// CreateResult carries the created invitation plus a non-fatal warning when
// the notification email could not be dispatched. The invitation itself is
// committed either way.
type CreateResult struct {
	Invitation Invitation
	Warning    string
}

// Preview is the public, pre-authentication view of an invitation resolved by
// token. UserExists tells the client whether acceptance needs registration
// fields.
type Preview struct {
	Invitation       Invitation
	OrganizationName string
	RoleName         string
	UserExists       bool
}
