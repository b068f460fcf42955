/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package server exposes the ledger over HTTP. Every route except the root,
// health and metrics endpoints lives under the configured API prefix.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"x402-agent-market-go/internal/api"
	"x402-agent-market-go/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	ledger *api.LedgerService
	cfg    models.ServerConfig
	router *gin.Engine
}

func NewServer(ledger *api.LedgerService, cfg models.ServerConfig) *Server {
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	s := &Server{ledger: ledger, cfg: cfg}
	s.router = s.routes()
	return s
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(), ErrorHandlingMiddleware())

	router.GET("/", s.Root)
	router.GET("/health", s.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group(s.cfg.APIPrefix)

	v1.POST("/users", s.CreateUser)
	v1.GET("/users/:wallet_address", s.GetUser)
	v1.GET("/users/:wallet_address/agents", s.ListUserAgents)

	v1.POST("/agents", s.CreateAgent)
	v1.GET("/agents/:id", s.GetAgent)
	v1.GET("/agents/:id/transactions", s.ListAgentTransactions)
	v1.POST("/agents/:id/transactions", s.RecordTrade)
	v1.GET("/agents/:id/stats", s.AgentStats)
	v1.GET("/agents/:id/chain-balance", s.AgentChainBalance)
	v1.PATCH("/transactions/:tx_hash/status", s.UpdateTradeStatus)

	v1.POST("/services", s.CreateService)
	v1.GET("/services", s.ListCatalogServices)
	v1.GET("/services/:id", s.GetService)
	v1.GET("/market/services", s.ListMarketServices)
	v1.GET("/market/services/:id", s.GetMarketService)

	v1.GET("/payments", s.ListPayments)
	v1.POST("/payments", s.RecordPayment)
	v1.GET("/payments/:payment_id", s.GetPayment)
	v1.POST("/payments/:payment_id/verify", s.VerifyPayment)
	v1.PATCH("/payments/:payment_id/status", s.UpdatePaymentStatus)

	v1.GET("/chain/transactions/:tx_hash", s.ChainTransaction)

	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests within the shutdown timeout
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("HTTP server listening",
			zap.String("addr", s.cfg.Addr),
			zap.String("prefix", s.cfg.APIPrefix))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("Shutting down HTTP server", zap.Duration("timeout", s.cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	zap.L().Info("HTTP server stopped")
	return nil
}

func (s *Server) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    s.cfg.ProjectName,
		"version": s.cfg.Version,
		"status":  "running",
	})
}

func (s *Server) Health(c *gin.Context) {
	chainStatus := "not_configured"
	if s.ledger.ChainConfigured() {
		chainStatus = "configured"
	}

	if err := s.ledger.HealthCheck(c.Request.Context()); err != nil {
		zap.L().Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "unreachable",
			"chain":    chainStatus,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
		"chain":    chainStatus,
	})
}

// createdStatus is 201 for a new row and 200 when an existing one is returned
func createdStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}
