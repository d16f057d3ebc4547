package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	appsvc "chatfeed/internal/app"
	"chatfeed/internal/bootstrap"
	"chatfeed/internal/transport/http/handler"
	"chatfeed/internal/transport/http/middleware"
)

type RouterOptions struct {
	GinMode        string
	AllowedOrigins []string
	Logger         *slog.Logger
	FeedService    *appsvc.FeedService
	HealthHandler  *handler.HealthHandler
	SubmitTimeout  time.Duration
	MaxBodyBytes   int64
}

func NewRouter(app *bootstrap.App) *gin.Engine {
	checks := make(map[string]handler.DependencyCheck, len(app.Checks))
	for name, check := range app.Checks {
		checks[name] = check
	}

	return NewRouterWithOptions(RouterOptions{
		GinMode:        app.Config.App.GinMode,
		AllowedOrigins: app.Config.HTTP.AllowedOrigins,
		Logger:         app.Logger,
		FeedService:    app.FeedService,
		SubmitTimeout:  app.Config.SubmitTimeout(),
		MaxBodyBytes:   app.Config.HTTP.MaxBodyBytes,
		HealthHandler: handler.NewHealthHandler(
			app.Config.App.Name,
			app.Config.App.Env,
			app.StartedAt,
			checks,
		),
	})
}

func NewRouterWithOptions(opts RouterOptions) *gin.Engine {
	gin.SetMode(opts.GinMode)
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(opts.Logger),
		gin.Recovery(),
		cors.New(corsConfig(opts.AllowedOrigins)),
	)

	router.GET("/", opts.HealthHandler.Index)
	router.GET("/health", opts.HealthHandler.Check)

	messageHandler := handler.NewMessageHandler(opts.FeedService, opts.SubmitTimeout, opts.MaxBodyBytes)
	api := router.Group("/api")
	api.GET("/messages", messageHandler.List)
	api.POST("/messages", messageHandler.Post)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, middleware.HeaderRequestID)
	cfg.ExposeHeaders = []string{middleware.HeaderRequestID}
	cfg.MaxAge = 12 * time.Hour

	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
