package setup

import (
	"github.com/sovaehr/authapi/internal/config"
	"github.com/sovaehr/authapi/internal/handler"
	"github.com/sovaehr/authapi/internal/middleware"
	"github.com/sovaehr/authapi/internal/supabase"
)

// Dependencies holds everything the router needs. All of it is constructed
// once at startup and only read afterwards, so concurrent requests share it
// without locking.
type Dependencies struct {
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
}

// SetupDependencies initializes the dependency graph for the application.
func SetupDependencies(cfg *config.Config) *Dependencies {
	authService := supabase.New(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceKey)

	return &Dependencies{
		Handler:        handler.New(authService, cfg),
		AuthMiddleware: middleware.NewAuth(cfg.SupabaseJWTSecret),
	}
}
