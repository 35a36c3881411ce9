package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sovaehr/authapi/internal/middleware"
	"github.com/sovaehr/authapi/internal/middleware/metrics"
	"github.com/sovaehr/authapi/internal/setup"
)

// New wires the HTTP surface. Signin/signup are public; signout, delete and
// user lookup sit behind the bearer-token guard.
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "x-request-id"},
	}))

	h := deps.Handler

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signin", h.SignIn)
		r.Post("/signup", h.SignUp)

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Post("/signout", h.SignOut)
			r.Delete("/delete_user", h.DeleteUser)
			r.Post("/retrieve_user_id", h.RetrieveUserID)
		})
	})

	return r
}
