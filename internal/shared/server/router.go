// Package server builds the HTTP engine and route tree.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docvault-backend/internal/auth"
	"docvault-backend/internal/documents"
	"docvault-backend/internal/ingestion"
	"docvault-backend/internal/shared/config"
	"docvault-backend/internal/shared/server/middleware"
	"docvault-backend/internal/shared/server/respond"
	"docvault-backend/internal/users"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config           config.Config
	AuthHandler      *auth.Handler
	DocumentHandler  *documents.Handler
	IngestionHandler *ingestion.Handler
	UserHandler      *users.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
// Auth routes (register, login) stay outside the token check; everything else
// under /api/v1 requires a valid bearer token.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	deps.AuthHandler.RegisterPublicRoutes(api)

	protected := api.Group("", middleware.Auth())
	deps.AuthHandler.RegisterProtectedRoutes(protected)
	deps.DocumentHandler.RegisterRoutes(protected)
	deps.IngestionHandler.RegisterRoutes(protected)
	deps.UserHandler.RegisterRoutes(protected)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
