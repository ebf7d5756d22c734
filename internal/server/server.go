package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pollsapi/internal/config"
	"pollsapi/internal/database"
	"pollsapi/internal/handlers"
	"pollsapi/internal/middleware"
)

type Server struct {
	cfg     *config.Config
	db      database.Service
	handler *handlers.Handler
}

// New creates and configures a new server
func New(cfg *config.Config, db database.Service) *http.Server {
	// Create unified handler
	handler := handlers.NewHandler(db.GetDB(), cfg)

	newServer := &Server{
		cfg:     cfg,
		db:      db,
		handler: handler,
	}

	// Configure Gin router
	router := newServer.RegisterRoutes()

	return &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	secret := []byte(s.cfg.JWTSecret)

	// API routes
	api := r.Group("/api/v1")
	{
		// Auth routes (public)
		api.POST("/auth/register", s.handler.Auth.Register)
		api.POST("/auth/login", s.handler.Auth.Login)

		// User routes (public reads)
		api.GET("/users/:id", s.handler.User.GetUserProfile)

		// Poll reads resolve the caller when a token is present: private
		// polls are visible to their owners only.
		reads := api.Group("")
		reads.Use(middleware.OptionalAuth(secret))
		{
			reads.GET("/polls", s.handler.Poll.ListPolls)
			reads.GET("/polls/:id", s.handler.Poll.GetPoll)
		}

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.RequireAuth(secret))
		{
			protected.GET("/users/me", s.handler.Auth.GetMe)
			protected.PUT("/users/me", s.handler.User.UpdateMe)

			protected.GET("/polls/my-polls", s.handler.Poll.ListMyPolls)
			protected.POST("/polls", s.handler.Poll.CreatePoll)
			protected.PUT("/polls/:id", s.handler.Poll.UpdatePoll)
			protected.DELETE("/polls/:id", s.handler.Poll.DeletePoll)
			protected.POST("/polls/:id/options", s.handler.Poll.AddOption)
			protected.POST("/polls/:id/vote", s.handler.Poll.Vote)
		}
	}

	return r
}
