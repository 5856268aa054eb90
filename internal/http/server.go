// README: API gateway; builds the gin engine, registers routes and delegates to module services.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kavach/internal/config"
	"kavach/internal/http/handlers"
	"kavach/internal/http/middleware"
	"kavach/internal/infra"
	"kavach/internal/metrics"
	"kavach/internal/modules/report"
	"kavach/internal/modules/station"
)

const rateLimitIdleTTL = 10 * time.Minute

type ServerDeps struct {
	Reports   *report.Service
	Stations  *station.Service
	Verifier  infra.TokenVerifier
	Logger    *slog.Logger
	Nearby    config.NearbyConfig
	RateLimit config.RateLimitConfig
	// Ready backs /health; nil means always healthy.
	Ready func(ctx context.Context) error
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Server{deps: deps}
}

func (s *Server) Routes() (http.Handler, error) {
	if err := handlers.RegisterValidations(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.Recovery(s.deps.Logger), middleware.Logging(s.deps.Logger))

	r.GET("/health", s.health)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	if s.deps.RateLimit.RPS > 0 {
		api.Use(middleware.RateLimit(s.deps.RateLimit.RPS, s.deps.RateLimit.Burst, rateLimitIdleTTL, s.deps.Logger))
	}
	api.Use(middleware.Auth(s.deps.Verifier))

	reportHandler := handlers.NewReportHandler(s.deps.Reports, s.deps.Nearby)
	u := api.Group("/u")
	u.POST("/reports", reportHandler.Create)
	u.GET("/reports", reportHandler.ListMine)
	u.GET("/reports/nearby", reportHandler.Nearby)
	u.GET("/reports/:id", reportHandler.GetMine)
	u.PUT("/reports/:id", reportHandler.Edit)
	u.DELETE("/reports/:id", reportHandler.Withdraw)

	adminHandler := handlers.NewAdminHandler(s.deps.Reports)
	a := api.Group("/a", middleware.RequireRole(middleware.RoleAdmin, middleware.RoleSuperadmin))
	a.GET("/reports", adminHandler.List)
	a.GET("/reports/:id", adminHandler.Get)
	a.PATCH("/reports/:id/status", adminHandler.UpdateStatus)
	a.POST("/reports/:id/notes", adminHandler.AddNote)
	a.GET("/dashboard", adminHandler.Dashboard)

	stationHandler := handlers.NewStationHandler(s.deps.Stations)
	superHandler := handlers.NewSuperadminHandler(s.deps.Reports)
	sa := api.Group("/sa", middleware.RequireRole(middleware.RoleSuperadmin))
	sa.GET("/stations", stationHandler.List)
	sa.POST("/stations", stationHandler.Create)
	sa.GET("/stations/:id", stationHandler.Get)
	sa.PUT("/stations/:id", stationHandler.Update)
	sa.DELETE("/stations/:id", stationHandler.Delete)
	sa.GET("/districts", stationHandler.Districts)
	sa.GET("/reports", superHandler.ListReports)
	sa.GET("/reports/stats", superHandler.Stats)
	sa.GET("/reports/heatmap", superHandler.Heatmap)
	sa.PATCH("/reports/:id/station", superHandler.Reassign)

	return r, nil
}

func (s *Server) health(c *gin.Context) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ready(ctx); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
