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
	"x402-agent-market-go/internal/models"
	"x402-agent-market-go/internal/store"

	"github.com/gin-gonic/gin"
)

type recordPaymentRequest struct {
	PaymentId   string          `json:"payment_id"`
	TxHash      string          `json:"tx_hash"`
	Amount      decimalField    `json:"amount"`
	PaymentType string          `json:"payment_type"`
	AgentId     *string         `json:"agent_id"`
	ServiceId   *string         `json:"service_id"`
	Metadata    models.Metadata `json:"metadata"`
}

type paymentListQuery struct {
	AgentId   string `form:"agent_id"`
	ServiceId string `form:"service_id"`
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
}

func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidBody)
		return
	}

	ctx := c.Request.Context()
	payment, err := s.ledger.RecordPayment(ctx, api.RecordPaymentParams{
		PaymentId:   req.PaymentId,
		TxHash:      req.TxHash,
		Amount:      req.Amount.String(),
		PaymentType: req.PaymentType,
		AgentId:     req.AgentId,
		ServiceId:   req.ServiceId,
		Metadata:    req.Metadata,
	})
	if errors.Is(err, store.ErrDuplicateKey) {
		paymentId := strings.TrimSpace(req.PaymentId)
		existing, lookupErr := s.ledger.FindRecordedPayment(ctx, paymentId, strings.TrimSpace(req.TxHash))
		if lookupErr != nil {
			abortWithEntity(c, "Payment", lookupErr)
			return
		}
		// the tx hash settles a different payment
		if existing.PaymentId != paymentId {
			AbortWithError(c, &conflictError{field: "tx_hash", err: err})
			return
		}
		c.JSON(http.StatusOK, models.NewPaymentResponse(existing))
		return
	}
	if err != nil {
		abortWithEntity(c, "Payment", err)
		return
	}

	c.JSON(http.StatusCreated, models.NewPaymentResponse(payment))
}

func (s *Server) GetPayment(c *gin.Context) {
	payment, err := s.ledger.GetPayment(c.Request.Context(), c.Param("payment_id"))
	if err != nil {
		abortWithEntity(c, "Payment", err)
		return
	}

	c.JSON(http.StatusOK, models.NewPaymentResponse(payment))
}

func (s *Server) ListPayments(c *gin.Context) {
	var query paymentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, errInvalidQuery)
		return
	}

	payments, err := s.ledger.ListPayments(c.Request.Context(), api.PaymentFilter{
		AgentId:   strings.TrimSpace(query.AgentId),
		ServiceId: strings.TrimSpace(query.ServiceId),
		Limit:     query.Limit,
		Offset:    query.Offset,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		resp = append(resp, models.NewPaymentResponse(&payments[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) VerifyPayment(c *gin.Context) {
	paymentId := c.Param("payment_id")
	verified, err := s.ledger.VerifyPayment(c.Request.Context(), paymentId)
	if err != nil {
		abortWithEntity(c, "Payment", err)
		return
	}

	c.JSON(http.StatusOK, models.VerifyPaymentResponse{PaymentId: paymentId, Verified: verified})
}

// UpdatePaymentStatus answers 200 even for unknown payments; chain events may precede the record
func (s *Server) UpdatePaymentStatus(c *gin.Context) {
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidBody)
		return
	}

	paymentId := c.Param("payment_id")
	if err := s.ledger.UpdatePaymentStatus(c.Request.Context(), paymentId, req.Status, req.BlockNumber); err != nil {
		abortWithEntity(c, "Payment", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_id": paymentId, "status": strings.TrimSpace(req.Status)})
}

func (s *Server) ChainTransaction(c *gin.Context) {
	tx, err := s.ledger.ChainTransaction(c.Request.Context(), c.Param("tx_hash"))
	if err != nil {
		abortWithEntity(c, "Transaction", chainFailure(err))
		return
	}

	c.JSON(http.StatusOK, tx)
}
