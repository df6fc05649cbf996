package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/commercekit/razorpay-provider/internal/shared/metrics"
	"github.com/commercekit/razorpay-provider/internal/shared/middleware"
)

// NewRouter builds the gin engine with middleware and all routes.
// allowedOrigins narrows the CORS allow-list; empty means allow all.
func NewRouter(handler *Handler, webhooks *WebhookHandler, m *metrics.Metrics, logger *zap.Logger, allowedOrigins []string) *gin.Engine {
	corsCfg := middleware.DefaultCORSConfig()
	if len(allowedOrigins) > 0 {
		corsCfg.AllowOrigins = allowedOrigins
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	handler.RegisterRoutes(v1)

	hooks := r.Group("/webhooks")
	webhooks.RegisterRoutes(hooks)

	return r
}
