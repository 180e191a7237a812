package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/httpserver"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/pg"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/redis"
	"github.com/BlendWitTech/mero-jugx-sub003/svc/invitation"
	"github.com/BlendWitTech/mero-jugx-sub003/svc/organization"
)

// API serves the dashboard routes. It carries only what handlers need so
// tests can assemble it around in-memory services.
type API struct {
	Orgs         *organization.Service
	Invites      *invitation.Service
	Log          *slog.Logger
	HistoryLimit int
	Readiness    []func(context.Context) error
}

// Router builds the chi router for the API.
func (a *API) Router() http.Handler {
	if a.Log == nil {
		a.Log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(a.Log))
	r.Get("/readyz", httpserver.HealthCheckHandler(a.Log, a.Readiness...))

	// Public token endpoints: possession of the token is the credential.
	r.Get("/invitations/{token}", a.handlePreviewInvitation)
	r.Post("/invitations/{token}/accept", a.handleAcceptInvitation)

	r.Group(func(r chi.Router) {
		r.Use(a.requireActor)

		r.Post("/orgs", a.handleCreateOrganization)
		r.Get("/me/context", a.handleMembershipContext)

		r.Route("/orgs/{orgID}", func(r chi.Router) {
			r.Get("/roles/assignable", a.handleAssignableRoles)
			r.Delete("/members/{userID}", a.handleRemoveMember)

			r.Post("/invitations", a.handleCreateInvitation)
			r.Get("/invitations", a.handleListInvitations)
			r.Get("/invitations/history", a.handleInvitationHistory)
			r.Delete("/invitations/{id}", a.handleCancelInvitation)

			r.Get("/audit", a.handleAuditTrail)
		})
	})

	return r
}

// Router builds the module's HTTP handler with readiness checks bound to its
// connections.
func (m *Module) Router() http.Handler {
	api := &API{
		Orgs:         m.orgs,
		Invites:      m.invites,
		Log:          m.log,
		HistoryLimit: m.cfg.HistoryLimit,
		Readiness: []func(context.Context) error{
			pg.Healthcheck(m.pool),
			redis.Healthcheck(m.redisClient),
		},
	}
	return api.Router()
}
