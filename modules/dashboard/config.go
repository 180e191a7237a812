package dashboard

import (
	"time"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/email"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/httpserver"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/pg"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/redis"
)

// Config is the module's full configuration, populated from the environment.
type Config struct {
	AppName     string `env:"APP_NAME" envDefault:"dashboard"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// BaseURL is the dashboard origin used in invitation links.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// RolesCacheTTL bounds how stale a cached role list may get.
	RolesCacheTTL time.Duration `env:"ROLES_CACHE_TTL" envDefault:"60s"`

	// InvitationTTL is how long invitations stay acceptable.
	InvitationTTL time.Duration `env:"INVITATION_TTL" envDefault:"72h"`

	// HistoryLimit caps the invitation history listing.
	HistoryLimit int `env:"INVITATION_HISTORY_LIMIT" envDefault:"100"`

	HTTP  httpserver.Config
	PG    pg.Config
	Redis redis.Config
	Email email.Config
}

// IsDevelopment reports whether the module runs in a development environment.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "local"
}
