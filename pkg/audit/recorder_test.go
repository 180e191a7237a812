package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/audit"
)

func TestRecorder_Record(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := audit.NewMemoryStorage()
	recorder := audit.NewRecorder(storage)

	orgID := uuid.New()
	actorID := uuid.New()

	err := recorder.Record(ctx, "invitation.create",
		audit.WithOrganization(orgID),
		audit.WithActor(actorID),
		audit.WithEntity("invitation", "inv-1"),
		audit.WithNewValues(map[string]any{"status": "pending"}),
		audit.WithMetadata("email", "new@example.com"),
	)
	require.NoError(t, err)

	entries, err := recorder.Find(ctx, audit.Filter{OrganizationID: orgID})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, actorID, entry.ActorID)
	assert.Equal(t, "invitation.create", entry.Action)
	assert.Equal(t, "invitation", entry.EntityType)
	assert.Equal(t, "inv-1", entry.EntityID)
	assert.Equal(t, "pending", entry.NewValues["status"])
	assert.Equal(t, "new@example.com", entry.Metadata["email"])
	assert.WithinDuration(t, time.Now(), entry.CreatedAt, time.Minute)
}

func TestRecorder_Record_Validation(t *testing.T) {
	t.Parallel()

	recorder := audit.NewRecorder(audit.NewMemoryStorage())

	err := recorder.Record(context.Background(), "")
	assert.ErrorIs(t, err, audit.ErrInvalidEntry)

	err = recorder.Record(context.Background(), "invitation.create")
	assert.ErrorIs(t, err, audit.ErrInvalidEntry, "entity reference is required")
}

func TestMemoryStorage_QueryFilterAndOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := audit.NewMemoryStorage()
	orgID := uuid.New()

	first := audit.NewEntry("invitation.create",
		audit.WithOrganization(orgID),
		audit.WithEntity("invitation", "inv-1"),
	)
	second := audit.NewEntry("invitation.cancel",
		audit.WithOrganization(orgID),
		audit.WithEntity("invitation", "inv-1"),
	)
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	other := audit.NewEntry("invitation.create",
		audit.WithOrganization(uuid.New()),
		audit.WithEntity("invitation", "inv-2"),
	)

	require.NoError(t, storage.Store(ctx, first, second, other))

	entries, err := storage.Query(ctx, audit.Filter{OrganizationID: orgID, EntityID: "inv-1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "invitation.cancel", entries[0].Action, "newest first")

	limited, err := storage.Query(ctx, audit.Filter{OrganizationID: orgID, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	byAction, err := storage.Query(ctx, audit.Filter{Action: "invitation.cancel"})
	require.NoError(t, err)
	assert.Len(t, byAction, 1)
}
