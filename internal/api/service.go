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

package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"x402-agent-market-go/internal/models"
	"x402-agent-market-go/internal/store"

	"github.com/shopspring/decimal"
)

const (
	defaultVerifyTimeout = 5 * time.Second
	defaultPageSize      = 20
	maxPageSize          = 100
)

// ErrChainUnavailable is returned by chain lookups when no chain client is configured
var ErrChainUnavailable = errors.New("chain client not configured")

// ChainReader is the read-only chain collaborator
type ChainReader interface {
	GetBalance(ctx context.Context, address, token string) (decimal.Decimal, error)
	GetTransaction(ctx context.Context, hash string) (*models.ChainTransaction, error)
	IsPaymentProcessed(ctx context.Context, paymentId string) (bool, error)
}

// LedgerService owns payment consistency rules and the listing/stat reads over the entity store
type LedgerService struct {
	store   store.EntityStore
	chain   ChainReader
	cfg     models.LedgerConfig
	metrics *ledgerMetrics
}

// NewLedgerService wires the store and an optional chain reader. A nil reader
// makes verification purely local.
func NewLedgerService(st store.EntityStore, reader ChainReader, cfg models.LedgerConfig) *LedgerService {
	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = defaultVerifyTimeout
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = defaultPageSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = maxPageSize
	}
	if cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = cfg.MaxPageSize
	}

	return &LedgerService{
		store:   st,
		chain:   reader,
		cfg:     cfg,
		metrics: metrics(),
	}
}

func (s *LedgerService) HealthCheck(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// ChainConfigured reports whether verification can fall back to the chain
func (s *LedgerService) ChainConfigured() bool {
	return s.chain != nil
}

// page clamps limit to [1, MaxPageSize], using the default page size when unset
func (s *LedgerService) page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
