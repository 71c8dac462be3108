package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"concierge/config"
	"concierge/web/handlers"
	"concierge/web/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router  *gin.Engine
	turns   handlers.TurnResolver
	leads   handlers.LeadCapturer
	limiter *middleware.VisitorRateLimiter
	logger  *zap.Logger
	config  *config.Config
}

// NewServer wires the HTTP surface. leads may be nil, in which case the lead
// route is not registered.
func NewServer(turns handlers.TurnResolver, leads handlers.LeadCapturer, limiter *middleware.VisitorRateLimiter, logger *zap.Logger, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		c.Set("logger", logger)
		c.Next()
	})

	server := &Server{
		router:  router,
		turns:   turns,
		leads:   leads,
		limiter: limiter,
		logger:  logger,
		config:  cfg,
	}

	server.setupRoutes()
	return server
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", handlers.Health)

	api := s.router.Group("/api/:tenant")
	api.Use(middleware.VisitorMiddleware(s.config.SessionTTL, s.config.CookieSecure))

	chatHandler := handlers.NewChatHandler(s.turns, s.logger)
	if s.limiter != nil {
		api.POST("/chat", middleware.RateLimitMiddleware(s.limiter), chatHandler.SendMessage)
	} else {
		api.POST("/chat", chatHandler.SendMessage)
	}

	if s.leads != nil {
		leadHandler := handlers.NewLeadHandler(s.leads, s.logger)
		api.POST("/lead", leadHandler.CaptureLead)
	}
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
