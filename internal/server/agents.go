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
	"errors"
	"net/http"
	"strings"

	"x402-agent-market-go/internal/api"
	"x402-agent-market-go/internal/chain"
	"x402-agent-market-go/internal/models"
	"x402-agent-market-go/internal/store"

	"github.com/gin-gonic/gin"
)

type createAgentRequest struct {
	UserWalletAddress string  `json:"user_wallet_address"`
	ContractAddress   string  `json:"contract_address"`
	Name              string  `json:"name"`
	Description       *string `json:"description"`
}

// recordTradeRequest accepts amounts either as JSON strings or numbers
type recordTradeRequest struct {
	TxHash          string        `json:"tx_hash"`
	TransactionType string        `json:"transaction_type"`
	TokenAddress    string        `json:"token_address"`
	Amount          decimalField  `json:"amount"`
	Price           *decimalField `json:"price"`
	Status          string        `json:"status"`
	BlockNumber     *int64        `json:"block_number"`
}

type statusUpdateRequest struct {
	Status      string `json:"status"`
	BlockNumber *int64 `json:"block_number"`
}

func (s *Server) CreateAgent(c *gin.Context) {
	var req createAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidBody)
		return
	}

	agent, created, err := s.ledger.CreateAgent(c.Request.Context(), api.CreateAgentParams{
		UserWalletAddress: req.UserWalletAddress,
		ContractAddress:   req.ContractAddress,
		Name:              req.Name,
		Description:       req.Description,
	})
	if err != nil {
		abortWithEntity(c, "Agent", err)
		return
	}

	c.JSON(createdStatus(created), models.NewAgentResponse(agent))
}

func (s *Server) GetAgent(c *gin.Context) {
	agent, err := s.ledger.GetAgent(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithEntity(c, "Agent", err)
		return
	}

	c.JSON(http.StatusOK, models.NewAgentResponse(agent))
}

func (s *Server) ListAgentTransactions(c *gin.Context) {
	txs, err := s.ledger.ListAgentTransactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithEntity(c, "Agent", err)
		return
	}

	resp := make([]models.TransactionResponse, 0, len(txs))
	for i := range txs {
		resp = append(resp, models.NewTransactionResponse(&txs[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) RecordTrade(c *gin.Context) {
	var req recordTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidBody)
		return
	}

	var price *string
	if req.Price != nil {
		p := req.Price.String()
		price = &p
	}

	tx, created, err := s.ledger.RecordTrade(c.Request.Context(), api.RecordTradeParams{
		AgentId:         c.Param("id"),
		TxHash:          req.TxHash,
		TransactionType: req.TransactionType,
		TokenAddress:    req.TokenAddress,
		Amount:          req.Amount.String(),
		Price:           price,
		Status:          req.Status,
		BlockNumber:     req.BlockNumber,
	})
	if err != nil {
		abortWithEntity(c, "Agent", err)
		return
	}

	c.JSON(createdStatus(created), models.NewTransactionResponse(tx))
}

func (s *Server) UpdateTradeStatus(c *gin.Context) {
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidBody)
		return
	}

	txHash := c.Param("tx_hash")
	if err := s.ledger.UpdateTradeStatus(c.Request.Context(), txHash, req.Status, req.BlockNumber); err != nil {
		abortWithEntity(c, "Transaction", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tx_hash": txHash, "status": strings.TrimSpace(req.Status)})
}

func (s *Server) AgentStats(c *gin.Context) {
	stats, err := s.ledger.AgentStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithEntity(c, "Agent", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) AgentChainBalance(c *gin.Context) {
	balance, err := s.ledger.AgentChainBalance(c.Request.Context(), c.Param("id"), strings.TrimSpace(c.Query("token")))
	if err != nil {
		abortWithEntity(c, "Agent", chainFailure(err))
		return
	}

	c.JSON(http.StatusOK, balance)
}

// chainFailure marks errors that did not come from local state as upstream failures
func chainFailure(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, api.ErrChainUnavailable),
		errors.Is(err, chain.ErrTransactionNotFound),
		errors.Is(err, chain.ErrInvalidAddress):
		return err
	}
	return &upstreamError{err: err}
}
