package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/promptdeck/promptdeck/internal/auth"
	"github.com/promptdeck/promptdeck/internal/handlers"
	"github.com/promptdeck/promptdeck/internal/middleware"
	"github.com/promptdeck/promptdeck/internal/services"
)

// Services bundles the domain services the router depends on.
type Services struct {
	Users         *services.UserService
	Verifications *services.EmailVerificationService
	Prompts       *services.PromptService
	Categories    *services.CategoryService
	Follows       *services.FollowService
	Stats         *services.StatsService
}

func (s Services) validate() error {
	switch {
	case s.Users == nil:
		return fmt.Errorf("user service must be provided")
	case s.Verifications == nil:
		return fmt.Errorf("email verification service must be provided")
	case s.Prompts == nil:
		return fmt.Errorf("prompt service must be provided")
	case s.Categories == nil:
		return fmt.Errorf("category service must be provided")
	case s.Follows == nil:
		return fmt.Errorf("follow service must be provided")
	case s.Stats == nil:
		return fmt.Errorf("stats service must be provided")
	}
	return nil
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, sessions *iauth.SessionService, svcs Services) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if err := svcs.validate(); err != nil {
		return nil, err
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	// Basic rate limiting: 100 requests/minute per IP+path
	r.Use(middleware.RateLimit(100, time.Minute))

	r.GET("/health", handlers.Health(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.Auth(jwt)
	optionalAuth := middleware.OptionalAuth(jwt)

	api := r.Group("/api")
	api.Use(requireAuth)

	registerAuthRoutes(r, api, handlers.NewAuthHandler(svcs.Users, svcs.Verifications, sessions))
	registerPromptRoutes(r, api, optionalAuth, handlers.NewPromptHandler(svcs.Prompts))
	registerFollowRoutes(api, handlers.NewFollowHandler(svcs.Follows))

	categoryHandler := handlers.NewCategoryHandler(svcs.Categories)
	r.GET("/api/categories", categoryHandler.List)

	registerAdminRoutes(api, db, categoryHandler,
		handlers.NewAdminHandler(svcs.Users, svcs.Prompts, svcs.Stats))

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
