// Package server exposes the kiosk and admin HTTP API over the store.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwoodard/timetrack4237/internal/auth"
	"github.com/jonwoodard/timetrack4237/internal/config"
	"github.com/jonwoodard/timetrack4237/internal/store"
)

// ExportFunc writes an export snapshot to a file. The server never touches
// spreadsheet formatting itself; the concrete writer is injected.
type ExportFunc func(path string, data store.ExportData) error

// Server wires the HTTP routes to the store.
type Server struct {
	cfg    config.App
	store  *store.Store
	export ExportFunc
}

func New(cfg config.App, st *store.Store, export ExportFunc) *Server {
	return &Server{cfg: cfg, store: st, export: export}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/healthz", "/metrics"},
	}))
	r.Use(requestID())
	r.Use(newTokenBucket(s.cfg.RateLimitPerMin, s.cfg.RateLimitPerMin).middleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/healthz", s.handleHealthz)
	api.POST("/scan", s.handleScan)
	api.POST("/checkin", s.handleCheckIn)
	api.POST("/checkout", s.handleCheckOut)
	api.GET("/checked-in", s.handleCheckedIn)
	api.GET("/students/:barcode/hours", s.handleStudentHours)
	api.POST("/admin/login", s.handleAdminLogin)

	admin := api.Group("/admin", auth.AdminAuth(s.cfg.JWTSigningKey, s.cfg.JWTIssuer))
	admin.GET("/:table", s.handleList)
	admin.POST("/:table", s.handleInsert)
	admin.GET("/:table/:rowid", s.handleGet)
	admin.PUT("/:table/:rowid", s.handleUpdate)
	admin.DELETE("/:table/:rowid", s.handleDelete)
	admin.POST("/:table/import", s.handleImport)
	admin.POST("/reset-pin", s.handleResetPIN)
	admin.POST("/logout-all", s.handleLogoutAll)
	admin.POST("/export", s.handleExport)

	return r
}

func (s *Server) handleHealthz(c *gin.Context) {
	if err := s.store.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": true})
}

// httpError maps a store error onto an HTTP status. Constraint messages come
// from the schema triggers and are returned verbatim so the kiosk can show
// them to the user unchanged.
func httpError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case store.IsKind(err, store.KindConstraint):
		status = http.StatusConflict
	case store.IsKind(err, store.KindValidation):
		status = http.StatusBadRequest
	case store.IsKind(err, store.KindNotFound):
		status = http.StatusNotFound
	case store.IsKind(err, store.KindConnection):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
