// Package gateway exposes the reservation and access QR dialogs over HTTP.
package gateway

import (
	"context"
	"net/http"

	"club-la-victoria/internal/accessqr"
	"club-la-victoria/internal/common/errors"
	"club-la-victoria/internal/common/logger"
	"club-la-victoria/internal/common/observability"
	"club-la-victoria/internal/membership"
	"club-la-victoria/internal/reservation"
	"club-la-victoria/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionHeader identifies one browser form. Without it, requests are keyed
// on client IP plus User-Agent.
const SessionHeader = "X-Session-ID"

type Dependencies struct {
	Reservation      *reservation.Service
	AccessQR         *accessqr.Service
	ReservationForms *membership.FormSet
	QRForms          *membership.FormSet
	Activities       *registry.ActivityRegistry // registry.Default() when nil
	Observability    *observability.Observability // optional
	Logger           logger.Logger
	AllowedOrigins   string

	// Ready reports whether backing services are reachable.
	Ready func(ctx context.Context) error
}

// Router wires HTTP handlers.
type Router struct {
	deps   Dependencies
	errors *errors.ErrorHandler
	logger logger.Logger
}

func NewRouter(deps Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if deps.Activities == nil {
		deps.Activities = registry.Default()
	}
	r := &Router{
		deps:   deps,
		errors: errors.NewErrorHandler(log),
		logger: log,
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		corsMiddleware(deps.AllowedOrigins),
		requestLogMiddleware(log),
		metricsMiddleware(deps.Observability),
	)

	router.GET("/health", r.health)
	router.GET("/ready", r.ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/activities", r.listActivities)
		api.POST("/reservations", r.createReservation)
		api.POST("/access-qr", r.issueAccessQR)
		api.GET("/access-qr/:dni/download", r.downloadAccessQR)
	}

	return router
}

func (r *Router) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (r *Router) ready(c *gin.Context) {
	if r.deps.Ready != nil {
		if err := r.deps.Ready(c.Request.Context()); err != nil {
			r.logger.Warn("readiness check failed", map[string]interface{}{"error": err.Error()})
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// clientKey selects the form a request belongs to.
func clientKey(c *gin.Context) string {
	if key := c.GetHeader(SessionHeader); key != "" {
		return key
	}
	return c.ClientIP() + "|" + c.Request.UserAgent()
}
