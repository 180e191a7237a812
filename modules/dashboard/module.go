package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/audit"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/config"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/email"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/httpserver"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/logger"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/pg"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/redis"
	"github.com/BlendWitTech/mero-jugx-sub003/svc/invitation"
	"github.com/BlendWitTech/mero-jugx-sub003/svc/organization"
)

// Module bundles the wired services and their infrastructure.
type Module struct {
	cfg Config
	log *slog.Logger

	pool        *pgxpool.Pool
	redisClient *goredis.Client

	orgs    *organization.Service
	invites *invitation.Service
}

// New loads configuration, connects PostgreSQL and Redis, runs migrations and
// wires the services. Call Close when done.
func New(ctx context.Context) (*Module, error) {
	cfg, err := config.Load[Config]()
	if err != nil {
		return nil, err
	}

	var log *slog.Logger
	if cfg.IsDevelopment() {
		log = logger.New(logger.WithDevelopment(cfg.AppName))
	} else {
		log = logger.New(logger.WithAttr(slog.String("service", cfg.AppName)))
	}
	slog.SetDefault(log)

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return nil, fmt.Errorf("dashboard: connect postgres: %w", err)
	}
	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("dashboard: migrate: %w", err)
	}

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("dashboard: connect redis: %w", err)
	}

	var sender email.EmailSender
	if cfg.Email.PostmarkServerToken != "" {
		sender, err = email.NewPostmarkClient(cfg.Email)
		if err != nil {
			pool.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("dashboard: email client: %w", err)
		}
	} else {
		sender = email.NewDevSender(log)
	}

	orgStorage := organization.NewCachedStorage(
		organization.NewPGStorage(pool), redisClient, cfg.RolesCacheTTL, log,
	)
	orgs := organization.NewService(orgStorage, log,
		organization.WithAuditLog(audit.NewRecorder(audit.NewPGStorage(pool))),
	)

	notifier := invitation.NewNotifier(sender, cfg.BaseURL, log)
	invites := invitation.NewService(
		invitation.NewPGStorage(pool), orgStorage, notifier, log,
		invitation.WithTTL(cfg.InvitationTTL),
	)

	return &Module{
		cfg:         cfg,
		log:         log,
		pool:        pool,
		redisClient: redisClient,
		orgs:        orgs,
		invites:     invites,
	}, nil
}

// Run serves the HTTP API until ctx is cancelled or a signal arrives.
func (m *Module) Run(ctx context.Context) error {
	srv := httpserver.New(m.cfg.HTTP, m.log)
	return srv.Run(ctx, m.Router())
}

// Close releases the module's connections.
func (m *Module) Close() {
	if m.redisClient != nil {
		_ = m.redisClient.Close()
	}
	if m.pool != nil {
		m.pool.Close()
	}
}
