package audit

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidEntry indicates an entry failed validation before storage.
	ErrInvalidEntry = errors.New("audit: invalid entry")

	// ErrStorageFailed indicates the storage backend rejected the write.
	ErrStorageFailed = errors.New("audit: storage failed")
)

// Entry is a single immutable audit record.
type Entry struct {
	ID             uuid.UUID      `json:"id"`
	OrganizationID uuid.UUID      `json:"organization_id"`
	ActorID        uuid.UUID      `json:"actor_id"` // uuid.Nil for system actions
	Action         string         `json:"action"`
	EntityType     string         `json:"entity_type"`
	EntityID       string         `json:"entity_id"`
	OldValues      map[string]any `json:"old_values,omitempty"`
	NewValues      map[string]any `json:"new_values,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Validate checks the fields required to reconstruct the transition later.
func (e Entry) Validate() error {
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrInvalidEntry)
	}
	if e.EntityType == "" || e.EntityID == "" {
		return fmt.Errorf("%w: entity reference is required", ErrInvalidEntry)
	}
	return nil
}

// Option mutates an entry during construction.
type Option func(*Entry)

// WithOrganization scopes the entry to a tenant.
func WithOrganization(orgID uuid.UUID) Option {
	return func(e *Entry) { e.OrganizationID = orgID }
}

// WithActor records the user who performed the action.
func WithActor(userID uuid.UUID) Option {
	return func(e *Entry) { e.ActorID = userID }
}

// WithEntity records the entity the action applied to.
func WithEntity(entityType, entityID string) Option {
	return func(e *Entry) {
		e.EntityType = entityType
		e.EntityID = entityID
	}
}

// WithOldValues records the state before the transition.
func WithOldValues(values map[string]any) Option {
	return func(e *Entry) { e.OldValues = values }
}

// WithNewValues records the state after the transition.
func WithNewValues(values map[string]any) Option {
	return func(e *Entry) { e.NewValues = values }
}

// WithMetadata attaches one supplementary key/value pair.
func WithMetadata(key string, value any) Option {
	return func(e *Entry) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}

// NewEntry builds an entry with a fresh id and timestamp.
func NewEntry(action string, opts ...Option) Entry {
	e := Entry{
		ID:        uuid.New(),
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}
