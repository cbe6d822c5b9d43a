// Package router assembles the Gin engine from the application's modules.
package router

import (
	"net/http"
	"strings"

	apphttp "tinko-recovery-backend/internal/http"
	"tinko-recovery-backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// New builds the Gin engine: global middleware, CORS, health endpoint,
// static assets, and every module's routes.
func New(app *apphttp.App) *gin.Engine {
	if !strings.EqualFold(appEnv(app), "development") {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(corsMiddleware(app))

	rateLimiter := httpkit.NewIPRateLimiter(20, 40, app.Logger)
	engine.Use(rateLimiter.RateLimit())

	engine.GET("/health", func(c *gin.Context) {
		if err := app.Health.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.Static("/static", "./web/static")
	engine.LoadHTMLGlob("web/templates/*.tmpl")

	authMiddleware := httpkit.AuthRequired(app.Config)
	v1 := engine.Group("/v1")
	protected := engine.Group("/v1")
	protected.Use(authMiddleware)

	ctx := &apphttp.RouterContext{
		Engine:          engine,
		V1:              v1,
		Protected:       protected,
		Config:          app.Config,
		AuthMiddleware:  authMiddleware,
		AuthRateLimiter: httpkit.NewAuthRateLimiter(app.Logger),
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(ctx)
		app.Logger.Info("module routes registered", "module", module.Name())
	}

	return engine
}

func corsMiddleware(app *apphttp.App) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if app.Config.GetCORSAllowAll() {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = app.Config.GetCORSOrigins()
	}
	corsConfig.AllowCredentials = app.Config.GetCORSAllowCreds()
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "Idempotency-Key")
	return cors.New(corsConfig)
}

func appEnv(app *apphttp.App) string {
	type envConfig interface{ GetEnv() string }
	if cfg, ok := app.Config.(envConfig); ok {
		return cfg.GetEnv()
	}
	return ""
}
