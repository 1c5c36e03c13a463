package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/schedulo/practicum-api/internal/middleware"
)

// Handler registers a group of routes on the API router.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine *gin.Engine
}

type Config struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
}

// NewRouter wires the middleware chain and mounts every handler. Operational
// endpoints (health, metrics) sit outside the authenticated API group.
func NewRouter(
	auth *middleware.AuthMiddleware,
	config Config,
	operational []Handler,
	api []Handler,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())

	if config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	root := engine.Group("")
	for _, h := range operational {
		h.RegisterRoutes(root)
	}

	v1 := engine.Group("/api/v1")
	v1.Use(auth.Authenticate())
	for _, h := range api {
		h.RegisterRoutes(v1)
	}

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
