package router

import (
	"github.com/gin-gonic/gin"
	"github.com/quillbase/blogserver/config"
	"github.com/quillbase/blogserver/internal/handler"
	"github.com/quillbase/blogserver/internal/middleware"
)

type Router struct {
	authHandler   *handler.AuthHandler
	userHandler   *handler.UserHandler
	blogHandler   *handler.BlogHandler
	healthHandler *handler.HealthHandler

	jwtMw  *middleware.JWTMiddleware
	Config *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	user *handler.UserHandler,
	blog *handler.BlogHandler,
	health *handler.HealthHandler,
	jwtMw *middleware.JWTMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:   auth,
		userHandler:   user,
		blogHandler:   blog,
		healthHandler: health,
		jwtMw:         jwtMw,
		Config:        cfg,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if !r.Config.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestContext())
	router.Use(middleware.CORS())
	if r.Config.RateLimit.Enabled {
		router.Use(middleware.RateLimit(r.Config.RateLimit.MaxRequests, r.Config.RateLimit.Window))
	}

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.Live)

		v1 := api.Group("/v1")
		{
			v1.GET("/health", r.healthHandler.Health)
			r.authRoutes(v1)
			r.userRoutes(v1)
			r.blogRoutes(v1)
		}
	}

	return router
}
