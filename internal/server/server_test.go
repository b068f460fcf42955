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

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"x402-agent-market-go/internal/api"
	"x402-agent-market-go/internal/chain"
	"x402-agent-market-go/internal/database"
	"x402-agent-market-go/internal/models"
	"x402-agent-market-go/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChain struct {
	processed bool
	err       error
	calls     atomic.Int32
}

func (s *stubChain) GetBalance(ctx context.Context, address, token string) (decimal.Decimal, error) {
	s.calls.Add(1)
	return decimal.RequireFromString("3.5"), s.err
}

func (s *stubChain) GetTransaction(ctx context.Context, hash string) (*models.ChainTransaction, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &models.ChainTransaction{Hash: hash, Status: 1, BlockNumber: 42, Value: decimal.RequireFromString("0.1")}, nil
}

func (s *stubChain) IsPaymentProcessed(ctx context.Context, paymentId string) (bool, error) {
	s.calls.Add(1)
	return s.processed, s.err
}

func newTestServer(t *testing.T, reader api.ChainReader) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Driver:       database.DriverSQLite,
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ledger := api.NewLedgerService(db, reader, models.LedgerConfig{})
	return NewServer(ledger, models.ServerConfig{
		APIPrefix:   "/api/v1",
		ProjectName: "x402 Agent Market",
		Version:     "test",
	})
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createAgentViaAPI(t *testing.T, srv *Server, contract string) map[string]any {
	t.Helper()
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/agents", gin.H{
		"user_wallet_address": "0xowner",
		"contract_address":    contract,
		"name":                "agent " + contract,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]any](t, rec)
}

func TestRootAndHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(t, srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	root := decode[map[string]string](t, rec)
	assert.Equal(t, "x402 Agent Market", root["name"])
	assert.Equal(t, "running", root["status"])
	assert.NotEmpty(t, rec.Header().Get(requestIdHeader))

	rec = doRequest(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]string](t, rec)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "not_configured", health["chain"])
}

func TestRequestIdIsEchoed(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIdHeader, "req-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(requestIdHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/payments", gin.H{
		"payment_id": "pay_metrics", "tx_hash": "0xmetrics", "amount": "1", "payment_type": "service_call",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "x402_payments_recorded_total")
}

func TestUsers(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/users", gin.H{"wallet_address": "0xabc"})
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decode[map[string]any](t, rec)
	assert.Equal(t, "0xabc", first["wallet_address"])
	assert.NotEmpty(t, first["created_at"])

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/users", gin.H{"wallet_address": "0xabc"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first["id"], decode[map[string]any](t, rec)["id"])

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/users/0xabc", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/users/0xmissing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode[errorResponse](t, rec).Detail)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/users/0xmissing/agents", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/users", gin.H{"wallet_address": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "wallet_address", decode[errorResponse](t, rec).Field)

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/users", "not an object")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "body", decode[errorResponse](t, rec).Field)
}

func TestAgents(t *testing.T) {
	srv := newTestServer(t, nil)
	agent := createAgentViaAPI(t, srv, "0xAA01")
	agentId := agent["id"].(string)
	assert.Equal(t, "0", agent["balance"])
	assert.Equal(t, "active", agent["status"])

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/agents", gin.H{
		"user_wallet_address": "0xowner",
		"contract_address":    "0xAA01",
		"name":                "renamed",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "agent 0xAA01", decode[map[string]any](t, rec)["name"])

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/users/0xowner/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summaries := decode[[]map[string]string](t, rec)
	require.Len(t, summaries, 1)
	assert.Equal(t, agentId, summaries[0]["id"])
	assert.Equal(t, "0xAA01", summaries[0]["contract_address"])

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/agents/"+agentId, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/agents/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Agent not found", decode[errorResponse](t, rec).Detail)
}

func TestTradesAndStats(t *testing.T) {
	srv := newTestServer(t, nil)
	agentId := createAgentViaAPI(t, srv, "0xAA02")["id"].(string)
	path := "/api/v1/agents/" + agentId + "/transactions"

	statuses := []string{"success", "failed", "success", "pending", "success"}
	for i, status := range statuses {
		rec := doRequest(t, srv, http.MethodPost, path, gin.H{
			"tx_hash":          fmt.Sprintf("0xtrade%d", i),
			"transaction_type": "buy",
			"token_address":    "0xtoken",
			"amount":           1.25,
			"price":            "100.5",
			"status":           status,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := doRequest(t, srv, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	trades := decode[[]map[string]any](t, rec)
	require.Len(t, trades, 5)
	assert.Equal(t, "0xtrade0", trades[0]["tx_hash"])
	assert.Equal(t, "1.25", trades[0]["amount"])
	assert.Equal(t, "100.5", trades[0]["price"])

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/agents/"+agentId+"/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	assert.Equal(t, float64(5), stats["total_trades"])
	assert.Equal(t, float64(3), stats["successful_trades"])

	rec = doRequest(t, srv, http.MethodPatch, "/api/v1/transactions/0xtrade3/status", gin.H{"status": "success", "block_number": 7})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/agents/"+agentId+"/stats", nil)
	assert.Equal(t, float64(4), decode[map[string]any](t, rec)["successful_trades"])

	rec = doRequest(t, srv, http.MethodPatch, "/api/v1/transactions/0xunknown/status", gin.H{"status": "success"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Transaction not found", decode[errorResponse](t, rec).Detail)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/agents/nope/stats", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServices(t *testing.T) {
	srv := newTestServer(t, nil)

	create := func(contract, serviceType string) map[string]any {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/services", gin.H{
			"provider_address": "0xprovider",
			"contract_address": contract,
			"name":             "svc " + contract,
			"service_type":     serviceType,
			"price":            "0.000000000000000001",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		return decode[map[string]any](t, rec)
	}

	strategy := create("0xS1", "strategy")
	create("0xS2", "data_source")
	assert.Equal(t, "0.000000000000000001", strategy["price"])
	assert.Equal(t, "pay_per_use", strategy["pricing_model"])
	assert.Equal(t, "0", strategy["rating"])

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/services", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	catalog := decode[[]map[string]any](t, rec)
	require.Len(t, catalog, 2)
	assert.Equal(t, "0xS1", catalog[0]["contract_address"])

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/market/services?service_type=strategy", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	market := decode[[]map[string]any](t, rec)
	require.Len(t, market, 1)
	assert.Equal(t, strategy["id"], market[0]["id"])
	assert.NotContains(t, market[0], "status")

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/market/services/"+strategy["id"].(string), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/services/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Service not found", decode[errorResponse](t, rec).Detail)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/services?service_type=arbitrage", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "service_type", decode[errorResponse](t, rec).Field)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/services?limit=ten", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/services", gin.H{
		"provider_address": "0xprovider",
		"contract_address": "0xS3",
		"name":             "bad",
		"service_type":     "strategy",
		"price":            "-1",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "price", decode[errorResponse](t, rec).Field)
}

func TestPaymentLifecycle(t *testing.T) {
	chainStub := &stubChain{}
	srv := newTestServer(t, chainStub)

	body := gin.H{
		"payment_id":   "pay_000001",
		"tx_hash":      "0xdead",
		"amount":       "50.0",
		"payment_type": "service_call",
		"metadata":     gin.H{"endpoint": "/signal"},
	}
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/payments", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "50", created["amount"])

	rec = doRequest(t, srv, http.MethodPatch, "/api/v1/payments/pay_000001/status", gin.H{"status": "confirmed", "block_number": 123})
	require.Equal(t, http.StatusOK, rec.Code)

	// replayed record answers with the stored row
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/payments", body)
	require.Equal(t, http.StatusOK, rec.Code)
	replayed := decode[map[string]any](t, rec)
	assert.Equal(t, created["id"], replayed["id"])
	assert.Equal(t, "confirmed", replayed["status"])
	assert.Equal(t, float64(123), replayed["block_number"])

	// same tx hash under another payment id is a conflict, not a replay
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/payments", gin.H{
		"payment_id":   "pay_000002",
		"tx_hash":      "0xdead",
		"amount":       "1",
		"payment_type": "service_call",
	})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Equal(t, "tx_hash", decode[errorResponse](t, rec).Field)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/payments/pay_000002", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/payments/pay_000001/verify", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	verify := decode[models.VerifyPaymentResponse](t, rec)
	assert.True(t, verify.Verified)
	assert.Equal(t, int32(0), chainStub.calls.Load())

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/payments/pay_000001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/signal", decode[map[string]any](t, rec)["metadata"].(map[string]any)["endpoint"])

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/payments/pay_missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Payment not found", decode[errorResponse](t, rec).Detail)

	rec = doRequest(t, srv, http.MethodPatch, "/api/v1/payments/pay_missing/status", gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodPatch, "/api/v1/payments/pay_000001/status", gin.H{"status": "done"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status", decode[errorResponse](t, rec).Field)
}

func TestPaymentValidationAndReferences(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/payments", gin.H{
		"payment_id": "pay_x", "tx_hash": "0x1", "amount": "abc", "payment_type": "service_call",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "amount", decode[errorResponse](t, rec).Field)

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/payments", gin.H{
		"payment_id": "pay_x", "tx_hash": "0x1", "amount": "1", "payment_type": "service_call",
		"agent_id": "01890000-0000-7000-8000-000000000000",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPayments(t *testing.T) {
	srv := newTestServer(t, nil)
	agentId := createAgentViaAPI(t, srv, "0xAA03")["id"].(string)

	for i := 0; i < 3; i++ {
		body := gin.H{
			"payment_id":   fmt.Sprintf("pay_%d", i),
			"tx_hash":      fmt.Sprintf("0x%d", i),
			"amount":       "1",
			"payment_type": "subscription",
		}
		if i > 0 {
			body["agent_id"] = agentId
		}
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/payments", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/payments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]map[string]any](t, rec)
	require.Len(t, all, 3)
	assert.Equal(t, "pay_2", all[0]["payment_id"])

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/payments?agent_id="+agentId+"&limit=1&offset=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[[]map[string]any](t, rec)
	require.Len(t, page, 1)
	assert.Equal(t, "pay_1", page[0]["payment_id"])
}

func TestChainEndpoints(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		srv := newTestServer(t, nil)
		agentId := createAgentViaAPI(t, srv, "0xAA04")["id"].(string)

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/agents/"+agentId+"/chain-balance", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		rec = doRequest(t, srv, http.MethodGet, "/api/v1/chain/transactions/0xabc", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		rec = doRequest(t, srv, http.MethodPost, "/api/v1/payments/pay_1/verify", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decode[models.VerifyPaymentResponse](t, rec).Verified)
	})

	t.Run("configured", func(t *testing.T) {
		srv := newTestServer(t, &stubChain{processed: true})
		agentId := createAgentViaAPI(t, srv, "0xAA05")["id"].(string)

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/agents/"+agentId+"/chain-balance?token=0xtoken", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		balance := decode[map[string]string](t, rec)
		assert.Equal(t, "3.5", balance["balance"])
		assert.Equal(t, "0xAA05", balance["address"])

		rec = doRequest(t, srv, http.MethodGet, "/api/v1/chain/transactions/0xabc", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "0xabc", decode[map[string]any](t, rec)["hash"])

		rec = doRequest(t, srv, http.MethodPost, "/api/v1/payments/pay_chain/verify", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode[models.VerifyPaymentResponse](t, rec).Verified)
	})

	t.Run("upstream failures", func(t *testing.T) {
		srv := newTestServer(t, &stubChain{err: errors.New("dial tcp: connection refused")})

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/chain/transactions/0xabc", nil)
		require.Equal(t, http.StatusBadGateway, rec.Code)
		assert.True(t, strings.HasPrefix(decode[errorResponse](t, rec).Detail, "chain request failed"))

		rec = doRequest(t, srv, http.MethodPost, "/api/v1/payments/pay_1/verify", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decode[models.VerifyPaymentResponse](t, rec).Verified)
	})

	t.Run("transaction not found", func(t *testing.T) {
		srv := newTestServer(t, &stubChain{err: chain.ErrTransactionNotFound})

		rec := doRequest(t, srv, http.MethodGet, "/api/v1/chain/transactions/0xabc", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Transaction not found", decode[errorResponse](t, rec).Detail)
	})
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
		field  string
	}{
		{"validation", models.NewValidationError("amount", "required"), http.StatusBadRequest, "", "amount"},
		{"not found", &entityError{entity: "Agent", err: store.ErrNotFound}, http.StatusNotFound, "Agent not found", ""},
		{"duplicate", &entityError{entity: "Transaction", err: fmt.Errorf("insert: %w", store.ErrDuplicateKey)}, http.StatusConflict, "Transaction already exists", ""},
		{"conflict", &conflictError{field: "tx_hash", err: store.ErrDuplicateKey}, http.StatusConflict, "tx_hash already recorded", "tx_hash"},
		{"invalid reference", store.ErrInvalidReference, http.StatusBadRequest, "", ""},
		{"chain unavailable", api.ErrChainUnavailable, http.StatusServiceUnavailable, "Chain client not configured", ""},
		{"upstream", &upstreamError{err: errors.New("timeout")}, http.StatusBadGateway, "chain request failed: timeout", ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payload := mapError(tt.err)
			assert.Equal(t, tt.status, status)
			if tt.detail != "" {
				assert.Equal(t, tt.detail, payload.Detail)
			}
			assert.Equal(t, tt.field, payload.Field)
		})
	}
}
