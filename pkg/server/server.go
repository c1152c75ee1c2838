// Package server exposes the concierge pipeline over HTTP. It provides
// a /chat endpoint for guest questions plus health and readiness
// checks, with permissive CORS so the hotel's web widget can call it
// from the browser.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	concierge "github.com/happyculture/soco-concierge"
	"github.com/happyculture/soco-concierge/pkg/config"
	"github.com/happyculture/soco-concierge/pkg/server/handlers"
	"github.com/happyculture/soco-concierge/pkg/store"
)

// Server is the HTTP front of the concierge.
type Server struct {
	cfg    *config.Config
	engine concierge.Engine
	index  store.Index
	router *gin.Engine
	http   *http.Server
}

// New creates a server around an engine and its knowledge store.
func New(cfg *config.Config, engine concierge.Engine, index store.Index) *Server {
	return &Server{
		cfg:    cfg,
		engine: engine,
		index:  index,
	}
}

// Setup configures routes and middleware.
func (s *Server) Setup() {
	gin.SetMode(s.cfg.Server.Mode)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	chat := handlers.NewChatHandler(s.engine)
	health := handlers.NewHealthHandler(s.index)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "soco-concierge",
			"message": "Bienvenue ! Posez votre question via POST /chat.",
		})
	})
	router.POST("/chat", chat.Chat)
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)

	s.router = router
	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Router exposes the configured routes, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start runs the HTTP server until Stop or a listener error.
func (s *Server) Start() error {
	if s.http == nil {
		return fmt.Errorf("server not set up")
	}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
