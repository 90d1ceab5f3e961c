package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"rideshare/internal/handler"
	"rideshare/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler         *handler.RideHandler
	PointsHandler       *handler.PointsHandler
	NotificationHandler *handler.NotificationHandler
	AuthHandler         *handler.AuthHandler
	Tokens              middleware.TokenParser
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
	AllowedOrigins      []string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins))

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", deps.AuthHandler.Register)
			auth.POST("/login", deps.AuthHandler.Login)
		}

		// Everything below requires a signed-in user.
		secured := v1.Group("")
		secured.Use(middleware.AuthMiddleware(deps.Tokens))
		secured.Use(middleware.NewRelicUserMiddleware())
		if deps.RedisClient != nil {
			secured.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
		}

		rides := secured.Group("/rides")
		{
			rides.POST("", deps.RideHandler.CreateRide)
			rides.GET("/offers", deps.RideHandler.GetOffers)
			rides.GET("/requests", deps.RideHandler.GetRequests)
			rides.GET("/accepted", deps.RideHandler.GetAccepted)
			rides.GET("/mine", deps.RideHandler.GetMine)
			rides.GET("/board", deps.RideHandler.GetBoard)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.PUT("/:id", deps.RideHandler.UpdateRide)
			rides.DELETE("/:id", deps.RideHandler.DeleteRide)
			rides.POST("/:id/accept", deps.RideHandler.AcceptRide)
			rides.POST("/:id/complete", deps.RideHandler.CompleteRide)
		}

		secured.GET("/points", deps.PointsHandler.GetBalance)

		if deps.NotificationHandler != nil {
			secured.GET("/notifications", deps.NotificationHandler.GetNotifications)
		}
	}

	return router
}
