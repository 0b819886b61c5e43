package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/handler"
	"github.com/atharavsawant52/NeoRide/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler    *handler.RideHandler
	DriverHandler  *handler.DriverHandler
	UserHandler    *handler.UserHandler
	PaymentHandler *handler.PaymentHandler
	Realtime       gin.HandlerFunc
	Verifier       middleware.TokenVerifier
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	anyActor := middleware.RequireActor(deps.Verifier)
	riderOnly := middleware.RequireActor(deps.Verifier, domain.ActorRider)
	driverOnly := middleware.RequireActor(deps.Verifier, domain.ActorDriver)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		v1.GET("/realtime", anyActor, deps.Realtime)

		// Rider routes.
		users := v1.Group("/users", riderOnly)
		{
			users.POST("/register", deps.UserHandler.Register)
			users.GET("/me", deps.UserHandler.Me)
		}

		// Captain routes.
		captains := v1.Group("/captains", driverOnly)
		{
			captains.POST("/register", deps.DriverHandler.Register)
			captains.GET("/stats", deps.DriverHandler.Stats)
			captains.POST("/location", deps.DriverHandler.UpdateLocation)
		}

		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", riderOnly, deps.RideHandler.CreateRide)
			rides.GET("/fare", riderOnly, deps.RideHandler.EstimateFare)
			rides.GET("/history", anyActor, deps.RideHandler.History)
			rides.GET("/:id", anyActor, deps.RideHandler.GetRide)
			rides.GET("/:id/receipt", anyActor, deps.RideHandler.Receipt)
			rides.POST("/:id/accept", driverOnly, deps.RideHandler.AcceptRide)
			rides.POST("/:id/start", driverOnly, deps.RideHandler.StartRide)
			rides.POST("/:id/complete", driverOnly, deps.RideHandler.CompleteRide)
			rides.POST("/:id/cancel", anyActor, deps.RideHandler.CancelRide)
			rides.POST("/:id/rate", riderOnly, deps.RideHandler.RateRide)
		}

		// Payment routes. The webhook authenticates by signature.
		payments := v1.Group("/payments")
		{
			payments.POST("/webhook", deps.PaymentHandler.Webhook)
			payments.POST("/order", riderOnly, deps.PaymentHandler.CreateOrder)
			payments.POST("/verify", riderOnly, deps.PaymentHandler.VerifyPayment)
			payments.POST("/cash-ack", driverOnly, deps.PaymentHandler.AcknowledgeCash)
		}
	}

	return router
}
