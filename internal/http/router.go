package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/datanav/velruse/internal/config"
	"github.com/datanav/velruse/internal/http/handler"
	httpmiddleware "github.com/datanav/velruse/internal/http/middleware"
	"github.com/datanav/velruse/internal/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, authHandler *handler.AuthHandler, rateLimiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(otelgin.Middleware(cfg.ServiceName))

	authGroup := r.Group("/auth")
	{
		openidGroup := authGroup.Group("/openid")
		{
			openidGroup.POST("/login", authHandler.Login)
			// Providers respond with either a GET redirect or a form POST.
			openidGroup.GET("/process", authHandler.Process)
			openidGroup.POST("/process", authHandler.Process)
		}

		authGroup.GET("/tokens/:token", authHandler.Redeem)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
