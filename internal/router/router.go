// Package router defines how HTTP routes are registered for the API.  Route
// groups mirror the privilege tiers: public content browsing, the auth
// endpoints, the admin tier (admin or superadmin) and the superadmin tier.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/glossline/glossline/internal/handler"
	"github.com/glossline/glossline/internal/middleware"
	"github.com/glossline/glossline/internal/repository"
)

// RegisterRoutes registers routes that carry no authentication and no
// caching.  Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated content browsing endpoints.
// Only published records are ever returned by these handlers.  The cache
// middleware is applied per route so authenticated surfaces stay uncached.
func RegisterPublic(e *echo.Echo, celebs *handler.CelebrityHandler, outfits *handler.OutfitHandler,
	reviews *handler.ReviewHandler, movies *handler.MovieHandler, cache echo.MiddlewareFunc) {

	e.GET("/v1/celebrities", celebs.ListPublic, cache)
	e.GET("/v1/celebrities/:slug", celebs.GetPublic, cache)
	e.GET("/v1/outfits", outfits.ListPublic, cache)
	e.GET("/v1/reviews", reviews.ListPublic, cache)
	e.GET("/v1/reviews/:slug", reviews.GetPublic, cache)
	e.GET("/v1/movies/upcoming", movies.ListPublic, cache)
}

// RegisterAuth registers the auth endpoints.  Signup, login and refresh
// establish or extend a session and therefore take no auth middleware.
// Logout resolves the access token itself so it can clear the session
// cookies even when the token no longer verifies; only /v1/auth/me sits
// behind the authenticator.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, accessSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, middleware.Authenticate(accessSecret))
}

// RegisterAdmin registers the admin tier: the user listing and the content
// CRUD surface.  Every route requires a valid access token and a role in
// {admin, superadmin}; there is no implicit hierarchy above or below.
func RegisterAdmin(e *echo.Echo, admin *handler.AdminHandler, celebs *handler.CelebrityHandler,
	outfits *handler.OutfitHandler, reviews *handler.ReviewHandler, movies *handler.MovieHandler,
	accessSecret string) {

	g := e.Group("/v1/admin")
	g.Use(middleware.Authenticate(accessSecret))
	g.Use(middleware.RequireRole(repository.RoleAdmin, repository.RoleSuperadmin))

	g.GET("/users", admin.ListUsers)

	g.GET("/celebrities", celebs.ListAdmin)
	g.POST("/celebrities", celebs.Create)
	g.PUT("/celebrities/:id", celebs.Update)
	g.DELETE("/celebrities/:id", celebs.Delete)

	g.GET("/outfits", outfits.ListAdmin)
	g.POST("/outfits", outfits.Create)
	g.PUT("/outfits/:id", outfits.Update)
	g.DELETE("/outfits/:id", outfits.Delete)

	g.GET("/reviews", reviews.ListAdmin)
	g.POST("/reviews", reviews.Create)
	g.PUT("/reviews/:id", reviews.Update)
	g.DELETE("/reviews/:id", reviews.Delete)

	g.GET("/movies", movies.ListAdmin)
	g.POST("/movies", movies.Create)
	g.PUT("/movies/:id", movies.Update)
	g.DELETE("/movies/:id", movies.Delete)
}

// RegisterSuperadmin registers the superadmin tier.  Login, one-time
// provisioning and the password-reset pair are reachable without a session;
// everything else requires an access token whose role is exactly
// superadmin.
func RegisterSuperadmin(e *echo.Echo, sa *handler.SuperadminHandler, accessSecret string) {
	open := e.Group("/v1/superadmin")
	open.POST("/login", sa.Login)
	open.POST("/provision", sa.Provision)
	open.POST("/forgot-password", sa.ForgotPassword)
	open.POST("/reset-password", sa.ResetPassword)

	g := e.Group("/v1/superadmin")
	g.Use(middleware.Authenticate(accessSecret))
	g.Use(middleware.RequireRole(repository.RoleSuperadmin))

	g.PATCH("/users/:id/role", sa.UpdateRole)
	g.PATCH("/users/:id/active", sa.UpdateActive)
	g.GET("/stats", sa.GetStats)
	g.GET("/settings", sa.GetSettings)
	g.PUT("/settings", sa.UpdateSettings)
	g.POST("/settings/api-key", sa.RotateAPIKey)
	g.POST("/backup", sa.RunBackup)
	g.DELETE("/credential", sa.DeleteCredential)
}
