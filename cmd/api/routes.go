package main

import (
	"database/sql"
	"net/http"
	"time"

	"memorial-registry/internal/app"
	"memorial-registry/internal/auth"
	"memorial-registry/internal/httpapi"
	"memorial-registry/internal/ratelimit"
	"memorial-registry/internal/rbac"
	"memorial-registry/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type routeDeps struct {
	services *app.App
	auth     *auth.Manager
	limiter  ratelimit.Limiter
	db       *sql.DB
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, d routeDeps) {
	r.GET("/healthz", func(c *gin.Context) {
		if d.db != nil {
			if err := utils.HealthCheck(c.Request.Context(), d.db, 2*time.Second); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "database unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := httpapi.Handlers{
		Victims:    d.services.Victims,
		Moderation: d.services.Moderation,
		Audit:      d.services.Audit,
		Reporting:  d.services.Reporting,
	}

	// public: a missing token is anonymous, a bad one is rejected
	v1 := r.Group("/v1")
	v1.Use(auth.OptionalAccessToken(d.auth))
	h.RegisterPublic(v1, ratelimit.Middleware(d.limiter))

	// staff: moderators and superusers; services still ask the Guard per operation
	admin := r.Group("/v1/admin")
	admin.Use(auth.RequireAccessToken(d.auth))
	admin.Use(rbac.RequireStaff())
	h.RegisterAdmin(admin)
}
