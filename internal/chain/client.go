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

// Package chain is a read-only EVM client for balances, transactions and
// x402 payment settlement.
package chain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"x402-agent-market-go/internal/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/time/rate"
)

var (
	ErrInvalidAddress        = errors.New("invalid address")
	ErrInvalidPaymentID      = errors.New("payment id is not a hex bytes32 value")
	ErrContractNotConfigured = errors.New("x402 payment contract not configured")
	ErrTransactionNotFound   = errors.New("transaction not found")
)

type Client struct {
	eth             *ethclient.Client
	chainId         int64
	explorerURL     string
	paymentContract string
	limiter         *rate.Limiter
}

// IsValidAddress reports whether address is a 20-byte hex address
func IsValidAddress(address string) bool {
	return common.IsHexAddress(address)
}

// NewClient prepares an ethclient over the HTTP/2-capable transport. Nothing is
// sent to the node until the first call.
func NewClient(ctx context.Context, cfg models.ChainConfig) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("chain rpc url is required")
	}

	paymentContract := cfg.Contracts.X402Payment
	if paymentContract != "" && !IsValidAddress(paymentContract) {
		return nil, fmt.Errorf("%w: x402 payment contract %q", ErrInvalidAddress, paymentContract)
	}

	httpClient, err := createCustomHttpClient(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	rpcClient, err := rpc.DialOptions(ctx, cfg.RPCURL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to dial chain rpc: %w", err)
	}

	limit := rate.Inf
	burst := 1
	if cfg.MaxRPS > 0 {
		limit = rate.Limit(cfg.MaxRPS)
		burst = cfg.MaxRPS
	}

	zap.L().Info("Chain client configured",
		zap.String("rpc_url", cfg.RPCURL),
		zap.Int64("chain_id", cfg.ChainID),
		zap.String("explorer_url", cfg.ExplorerURL),
		zap.String("contracts_file", cfg.ContractsFile),
		zap.String("x402_payment_contract", paymentContract),
		zap.Int("max_rps", cfg.MaxRPS))

	return &Client{
		eth:             ethclient.NewClient(rpcClient),
		chainId:         cfg.ChainID,
		explorerURL:     strings.TrimRight(cfg.ExplorerURL, "/"),
		paymentContract: paymentContract,
		limiter:         rate.NewLimiter(limit, burst),
	}, nil
}

func createCustomHttpClient(timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	tr := &http.Transport{
		ResponseHeaderTimeout: timeout,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, err
	}

	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}

func (c *Client) Close() {
	c.eth.Close()
}

// wait applies the client-side request budget before each node call
func (c *Client) wait(ctx context.Context, method string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", method, err)
	}
	return nil
}

// ChainId returns the node's chain id, used to catch a misconfigured RPC URL at startup
func (c *Client) ChainId(ctx context.Context) (int64, error) {
	if err := c.wait(ctx, "eth_chainId"); err != nil {
		return 0, err
	}
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("unable to get chain id: %w", err)
	}
	return id.Int64(), nil
}

// CheckChainId warns when the node's chain differs from the configured one
func (c *Client) CheckChainId(ctx context.Context) error {
	actual, err := c.ChainId(ctx)
	if err != nil {
		return err
	}
	if c.chainId != 0 && actual != c.chainId {
		zap.L().Warn("Chain id mismatch",
			zap.Int64("configured", c.chainId),
			zap.Int64("node", actual))
		return fmt.Errorf("configured chain id %d but node reports %d", c.chainId, actual)
	}
	return nil
}

// explorerLink is empty when no explorer is configured
func (c *Client) explorerLink(hash string) string {
	if c.explorerURL == "" {
		return ""
	}
	return c.explorerURL + "/tx/" + hash
}
