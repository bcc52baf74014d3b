package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/outstocked/outstocked-backend/api/controllers"
	"github.com/outstocked/outstocked-backend/api/middleware"
	"github.com/outstocked/outstocked-backend/internal/assignments"
	"github.com/outstocked/outstocked-backend/internal/fields"
	"github.com/outstocked/outstocked-backend/internal/invites"
	"github.com/outstocked/outstocked-backend/internal/items"
	"github.com/outstocked/outstocked-backend/internal/ledger"
	"github.com/outstocked/outstocked-backend/internal/locations"
	"github.com/outstocked/outstocked-backend/internal/requests"
	"github.com/outstocked/outstocked-backend/internal/users"
	"github.com/outstocked/outstocked-backend/pkg/config"
	"github.com/outstocked/outstocked-backend/pkg/db"
	"github.com/outstocked/outstocked-backend/pkg/logger"
	"github.com/outstocked/outstocked-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Items       items.Service
	Ledger      ledger.Service
	Assignments assignments.Service
	Requests    requests.Service
	Locations   locations.Service
	Users       users.Service
	Invites     invites.Service
	Fields      fields.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	ready := controllers.HealthReady(cfg, logg, dbP, nil)
	if redisClient != nil {
		ready = controllers.HealthReady(cfg, logg, dbP, redisClient)
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", ready)
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	var idemStore redis.IdempotencyStore
	if redisClient != nil {
		idemStore = redisClient
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))
		r.Use(middleware.TrackActivity(svcs.Users, logg))

		// Catalog and assignment mutations are admin surface; adjustments
		// and reads stay open to every member.
		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ItemList(svcs.Items, logg))
			r.With(middleware.RequireRole("admin", logg)).
				Post("/", controllers.ItemCreate(svcs.Items, logg))
			r.Route("/{itemId}", func(r chi.Router) {
				r.Get("/", controllers.ItemGet(svcs.Items, logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole("admin", logg))
					r.Patch("/", controllers.ItemUpdate(svcs.Items, logg))
					r.Delete("/", controllers.ItemDelete(svcs.Items, logg))
				})
				r.Post("/adjustments", controllers.ApplyAdjustment(svcs.Ledger, logg))
				r.Get("/history", controllers.ListHistory(svcs.Ledger, logg))
				r.Get("/assignments", controllers.AssignmentList(svcs.Assignments, logg))
				r.Get("/availability", controllers.ItemAvailability(svcs.Assignments, logg))
			})
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", logg))
			r.Post("/", controllers.AssignmentCreate(svcs.Assignments, logg))
			r.Delete("/{assignmentId}", controllers.AssignmentRevoke(svcs.Assignments, logg))
		})

		r.Route("/requests", func(r chi.Router) {
			r.Get("/", controllers.RequestList(svcs.Requests, logg))
			r.Post("/", controllers.RequestSubmit(svcs.Requests, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin", logg))
				r.Post("/{requestId}/approve", controllers.RequestApprove(svcs.Requests, logg))
				r.Post("/{requestId}/deny", controllers.RequestDeny(svcs.Requests, logg))
			})
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", controllers.LocationList(svcs.Locations, logg))
			r.With(middleware.RequireRole("admin", logg)).
				Post("/", controllers.LocationCreate(svcs.Locations, logg))
			r.Route("/{locationId}", func(r chi.Router) {
				r.Get("/", controllers.LocationGet(svcs.Locations, logg))
				r.With(middleware.RequireRole("admin", logg)).
					Patch("/", controllers.LocationUpdate(svcs.Locations, logg))
				r.Get("/managers", controllers.ManagerList(svcs.Locations, logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole("admin", logg))
					r.Post("/managers", controllers.ManagerGrant(svcs.Locations, logg))
					r.Delete("/managers/{grantId}", controllers.ManagerRevoke(svcs.Locations, logg))
				})
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.UserList(svcs.Users, logg))
			r.Get("/me", controllers.UserMe(svcs.Users, logg))
			r.With(middleware.RequireRole("admin", logg)).
				Patch("/{userId}/role", controllers.UserUpdateRole(svcs.Users, logg))
		})

		r.With(middleware.RequireRole("admin", logg)).
			Post("/invites", controllers.InviteUsers(svcs.Invites, logg))

		r.Route("/fields", func(r chi.Router) {
			r.Get("/", controllers.FieldList(svcs.Fields, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin", logg))
				r.Post("/", controllers.FieldCreate(svcs.Fields, logg))
				r.Patch("/{fieldId}", controllers.FieldUpdate(svcs.Fields, logg))
				r.Delete("/{fieldId}", controllers.FieldDelete(svcs.Fields, logg))
			})
		})
	})

	return r
}
