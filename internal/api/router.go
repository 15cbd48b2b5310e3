package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/govichain/engine/internal/api/handlers"
	mw "github.com/govichain/engine/internal/api/middleware"
)

type Dependencies struct {
	TokenResolver     mw.TokenResolver
	AuthHandler       *handlers.AuthHandler
	UsersHandler      *handlers.UsersHandler
	ProjectsHandler   *handlers.ProjectsHandler
	MilestonesHandler *handlers.MilestonesHandler
	DashboardHandler  *handlers.DashboardHandler
	HealthHandler     *handlers.HealthHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.RateLimit(10, 20))
	r.Use(chimid.Compress(5))

	// Health endpoints
	r.Get("/healthz", dep.HealthHandler.Liveness)
	r.Get("/readyz", dep.HealthHandler.Readiness)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", dep.AuthHandler.Register)
			ar.Post("/login", dep.AuthHandler.Login)
		})

		// Protected routes
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.TokenResolver))

			protected.Route("/users", func(ur chi.Router) {
				ur.Get("/me", dep.UsersHandler.Me)
				ur.Get("/", dep.UsersHandler.List)
				ur.Get("/{id}", dep.UsersHandler.Get)
			})

			protected.Route("/projects", func(pr chi.Router) {
				pr.Get("/", dep.ProjectsHandler.List)
				pr.Post("/", dep.ProjectsHandler.Create)
				pr.Get("/my-projects", dep.ProjectsHandler.MyProjects)
				pr.Get("/{id}", dep.ProjectsHandler.Get)
				pr.Delete("/{id}", dep.ProjectsHandler.Delete)
				pr.Get("/{id}/progress", dep.ProjectsHandler.Progress)
				pr.Put("/{id}/status", dep.ProjectsHandler.UpdateStatus)
			})

			protected.Route("/milestones", func(mr chi.Router) {
				mr.Get("/", dep.MilestonesHandler.List)
				mr.Post("/", dep.MilestonesHandler.Create)
				mr.Get("/my-milestones", dep.MilestonesHandler.MyMilestones)
				mr.Get("/project/{projectId}", dep.MilestonesHandler.ListByProject)
				mr.Get("/{id}", dep.MilestonesHandler.Get)
				mr.Put("/{id}/approve", dep.MilestonesHandler.Approve)
				mr.Put("/{id}/flag", dep.MilestonesHandler.Flag)
			})

			protected.Route("/dashboard", func(dr chi.Router) {
				dr.Get("/stats", dep.DashboardHandler.Stats)
				dr.Get("/my-stats", dep.DashboardHandler.MyStats)
			})
		})
	})

	return r
}
