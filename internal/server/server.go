// Package server is the HTTP facade: two read-only routes over the portfolio
// views plus a health check.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Bravilogy/bittrex-bot/internal/portfolio"
)

// Portfolio is the slice of the aggregation service the facade consumes.
type Portfolio interface {
	OpenOrdersWithPrices(ctx context.Context) ([]portfolio.EnrichedOrder, error)
	BalancesWithPrices(ctx context.Context) ([]portfolio.EnrichedBalance, error)
}

// Server serves the portfolio views over HTTP.
type Server struct {
	portfolio Portfolio
	logger    logrus.FieldLogger
	httpSrv   *http.Server
}

// New creates a Server listening on addr.
func New(addr string, p Portfolio, logger logrus.FieldLogger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		portfolio: p,
		logger:    logger,
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.GET("/healthz", s.handleHealth)

	views := router.Group("/api")
	views.GET("/open-orders", s.handleOpenOrders)
	views.GET("/balances", s.handleBalances)

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpSrv.Addr).Info("http facade listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleOpenOrders(c *gin.Context) {
	orders, err := s.portfolio.OpenOrdersWithPrices(c.Request.Context())
	if err != nil {
		s.fail(c, "failed to compute open orders view", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}

func (s *Server) handleBalances(c *gin.Context) {
	balances, err := s.portfolio.BalancesWithPrices(c.Request.Context())
	if err != nil {
		s.fail(c, "failed to compute balances view", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": balances})
}

// fail logs the underlying error and answers 502: every failure here is some
// upstream exchange call going wrong, not a client mistake.
func (s *Server) fail(c *gin.Context, msg string, err error) {
	s.logger.WithError(err).Error(msg)
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("request handled")
	}
}
