package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mise/internal/interfaces/http/handlers"
	"mise/internal/interfaces/http/middleware"
	"mise/internal/shared/config"
	"mise/internal/shared/logger"
)

// Router wires the middleware chain and the route table onto a gin engine.
type Router struct {
	engine          *gin.Engine
	paymentHandler  *handlers.PaymentHandler
	locationHandler *handlers.LocationHandler
	config          *config.ServerConfig
	logger          logger.Interface
}

func NewRouter(
	paymentHandler *handlers.PaymentHandler,
	locationHandler *handlers.LocationHandler,
	cfg *config.ServerConfig,
	log logger.Interface,
) *Router {
	return &Router{
		engine:          gin.New(),
		paymentHandler:  paymentHandler,
		locationHandler: locationHandler,
		config:          cfg,
		logger:          log,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.CORS(r.config.AllowedOrigins))

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api")

	payments := api.Group("/payments")
	{
		payments.POST("/preflight", r.paymentHandler.Preflight)
		payments.POST("/execute", r.paymentHandler.Execute)
	}

	locations := api.Group("/locations")
	{
		locations.GET("/:id/state", r.locationHandler.GetState)
		locations.PUT("/:id/state", r.locationHandler.PutState)
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
