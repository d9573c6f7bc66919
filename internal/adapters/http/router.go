// Package http is the bridge daemon's local diagnostics surface.
package http

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/voco-chat/bridge/internal/config"
	"github.com/voco-chat/bridge/internal/domain"
	"github.com/voco-chat/bridge/internal/service"
	"github.com/voco-chat/bridge/internal/session"
	"github.com/voco-chat/bridge/internal/transport"
)

// intent is a mutation request from a local surface (window or tab).
type intent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func SetupRouter(cfg *config.Config, bridge *transport.Bridge, sessions *session.Registry, dispatcher *service.Dispatcher, operator domain.UserID, reg *prometheus.Registry) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	r.GET("/status", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"state":           bridge.State().String(),
			"latencyMs":       bridge.LatencyMillis(),
			"pendingRequests": bridge.PendingCount(),
			"connections":     sessions.Count(),
		})
	})

	r.POST("/intent", func(c *gin.Context) {
		var in intent
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(400, gin.H{"error": "malformed intent"})
			return
		}
		// Failures surface on the router as `error` events, not here.
		dispatcher.Dispatch(c.Request.Context(), operator, in.Event, in.Data)
		c.JSON(202, gin.H{"accepted": true})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	log.Info().Str("module", "adapters.http").Msg("status router setup")
	return r
}
