package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sentinelstack/sentinel-agents/internal/models"
)

// CardServer is the second listener every agent runs: the static
// discovery card plus metrics and liveness. Independently lifecycled
// from the RPC listener; both stop together under the process
// lifecycle.
type CardServer struct {
	logger  *slog.Logger
	httpSrv *http.Server
}

func NewCardServer(addr string, card models.AgentCard, logger *slog.Logger) *CardServer {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/agent_card", func(c *gin.Context) {
		c.JSON(http.StatusOK, card)
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &CardServer{
		logger:  logger,
		httpSrv: &http.Server{Addr: addr, Handler: router},
	}
}

func (s *CardServer) Start() error {
	s.logger.Info("card server listening", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *CardServer) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *CardServer) Handler() http.Handler {
	return s.httpSrv.Handler
}
