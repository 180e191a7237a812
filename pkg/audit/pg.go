package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/pg"
)

// PGStorage persists entries in the audit_entries table.
type PGStorage struct {
	q pg.Querier
}

// NewPGStorage wraps a pool for standalone recording.
func NewPGStorage(q pg.Querier) *PGStorage {
	return &PGStorage{q: q}
}

// Store appends entries through the wrapped querier.
func (s *PGStorage) Store(ctx context.Context, entries ...Entry) error {
	return InsertEntries(ctx, s.q, entries...)
}

// InsertEntries writes entries through q, which may be a transaction. Service
// storage layers call this inside the transaction performing the state change
// so audit rows and the change commit or roll back together.
func InsertEntries(ctx context.Context, q pg.Querier, entries ...Entry) error {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}

		oldValues, err := marshalValues(e.OldValues)
		if err != nil {
			return err
		}
		newValues, err := marshalValues(e.NewValues)
		if err != nil {
			return err
		}
		metadata, err := marshalValues(e.Metadata)
		if err != nil {
			return err
		}

		_, err = q.Exec(ctx, `
			INSERT INTO audit_entries (id, organization_id, actor_id, action, entity_type, entity_id, old_values, new_values, metadata, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			e.ID, nullableUUID(e.OrganizationID), nullableUUID(e.ActorID),
			e.Action, e.EntityType, e.EntityID,
			oldValues, newValues, metadata, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStorageFailed, err)
		}
	}
	return nil
}

// Query returns entries matching the filter, newest first.
func (s *PGStorage) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.OrganizationID != uuid.Nil {
		add("organization_id = $%d", filter.OrganizationID)
	}
	if filter.ActorID != uuid.Nil {
		add("actor_id = $%d", filter.ActorID)
	}
	if filter.Action != "" {
		add("action = $%d", filter.Action)
	}
	if filter.EntityType != "" {
		add("entity_type = $%d", filter.EntityType)
	}
	if filter.EntityID != "" {
		add("entity_id = $%d", filter.EntityID)
	}

	query := `SELECT id, organization_id, actor_id, action, entity_type, entity_id, old_values, new_values, metadata, created_at FROM audit_entries`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageFailed, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e             Entry
			orgID, actor  *uuid.UUID
			oldV, newV, m []byte
		)
		if err := rows.Scan(&e.ID, &orgID, &actor, &e.Action, &e.EntityType, &e.EntityID, &oldV, &newV, &m, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStorageFailed, err)
		}
		if orgID != nil {
			e.OrganizationID = *orgID
		}
		if actor != nil {
			e.ActorID = *actor
		}
		if err := unmarshalValues(oldV, &e.OldValues); err != nil {
			return nil, err
		}
		if err := unmarshalValues(newV, &e.NewValues); err != nil {
			return nil, err
		}
		if err := unmarshalValues(m, &e.Metadata); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func marshalValues(values map[string]any) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	return data, nil
}

func unmarshalValues(data []byte, dst *map[string]any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageFailed, err)
	}
	return nil
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
