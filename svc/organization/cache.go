package organization

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CachedStorage decorates a Storage with a bounded-TTL Redis cache for an
// organization's role list. Permission resolution deliberately does not track
// role edits (see pkg/permission); the TTL here is the bounded staleness
// interval that contract asks callers to provide, and Invalidate is the
// explicit signal for role mutations the service knows about.
type CachedStorage struct {
	Storage
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// NewCachedStorage wraps storage. TTL must be positive.
func NewCachedStorage(storage Storage, client *redis.Client, ttl time.Duration, log *slog.Logger) *CachedStorage {
	if ttl <= 0 {
		panic("organization: cache ttl must be positive")
	}
	if log == nil {
		log = slog.Default()
	}
	return &CachedStorage{Storage: storage, client: client, ttl: ttl, log: log}
}

func rolesCacheKey(orgID uuid.UUID) string {
	return "org:roles:" + orgID.String()
}

// RolesByOrganization serves the role list from Redis when fresh, falling
// back to the underlying storage. Cache failures degrade to a direct read;
// they are logged, never surfaced.
func (c *CachedStorage) RolesByOrganization(ctx context.Context, orgID uuid.UUID) ([]Role, error) {
	key := rolesCacheKey(orgID)

	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var roles []Role
		if err := json.Unmarshal(data, &roles); err == nil {
			return roles, nil
		}
		// Corrupt payload: drop it and fall through to storage.
		_ = c.client.Del(ctx, key).Err()
	}

	roles, err := c.Storage.RolesByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(roles); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.WarnContext(ctx, "failed to cache role list",
				slog.String("organization_id", orgID.String()),
				slog.Any("error", err),
			)
		}
	}

	return roles, nil
}

// Invalidate drops the cached role list for an organization. Call after any
// role mutation.
func (c *CachedStorage) Invalidate(ctx context.Context, orgID uuid.UUID) error {
	return c.client.Del(ctx, rolesCacheKey(orgID)).Err()
}
