package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sentinelstack/sentinel-agents/internal/metrics"
	"github.com/sentinelstack/sentinel-agents/internal/utils"
)

// RPCServer serves an agent's JSON-RPC surface on POST /rpc.
type RPCServer struct {
	agent     string
	methods   map[string]Method
	logger    *slog.Logger
	latencies *utils.LatencyTracker
	httpSrv   *http.Server
}

// NewRPCServer binds the method table to the configured address.
func NewRPCServer(agent, addr string, methods map[string]Method, logger *slog.Logger) *RPCServer {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &RPCServer{
		agent:     agent,
		methods:   methods,
		logger:    logger,
		latencies: utils.NewLatencyTracker(1024),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.POST("/rpc", s.handleRPC)

	s.httpSrv = &http.Server{Addr: addr, Handler: router}
	return s
}

func (s *RPCServer) handleRPC(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, errorResponse(nil, NewError(CodeParseError, "parse error: "+err.Error())))
		return
	}

	requestID := uuid.NewString()
	start := time.Now()

	method, ok := s.methods[req.Method]
	if !ok {
		metrics.ObserveRPC(s.agent, req.Method, time.Since(start), metrics.OutcomeError)
		c.JSON(http.StatusOK, errorResponse(req.ID, NewError(CodeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))))
		return
	}

	result, rpcErr := method(c.Request.Context(), req.Params)
	duration := time.Since(start)
	s.observe(req.Method, requestID, duration, rpcErr)

	if rpcErr != nil {
		c.JSON(http.StatusOK, errorResponse(req.ID, rpcErr))
		return
	}
	c.JSON(http.StatusOK, resultResponse(req.ID, result))
}

func (s *RPCServer) observe(method, requestID string, duration time.Duration, rpcErr *RPCError) {
	outcome := metrics.OutcomeSuccess
	if rpcErr != nil {
		outcome = metrics.OutcomeError
	}
	metrics.ObserveRPC(s.agent, method, duration, outcome)
	s.latencies.Observe(duration)

	attrs := []any{
		"agent", s.agent,
		"method", method,
		"request_id", requestID,
		"duration", duration,
		"outcome", outcome,
	}
	if s.latencies.Count()%100 == 0 {
		attrs = append(attrs, "p95", s.latencies.Percentile(95))
	}
	s.logger.Info("rpc_handled", attrs...)
}

// Start serves requests until Shutdown.
func (s *RPCServer) Start() error {
	s.logger.Info("rpc server listening", "agent", s.agent, "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *RPCServer) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *RPCServer) Handler() http.Handler {
	return s.httpSrv.Handler
}
