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

	"x402-agent-market-go/internal/api"
	"x402-agent-market-go/internal/chain"
	"x402-agent-market-go/internal/models"
	"x402-agent-market-go/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	errInvalidBody  = models.NewValidationError("body", "invalid request body")
	errInvalidQuery = models.NewValidationError("query", "limit and offset must be integers")
)

type errorResponse struct {
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

// entityError names the entity a handler was addressing so a 404 can say which one is missing
type entityError struct {
	entity string
	err    error
}

func (e *entityError) Error() string { return e.entity + ": " + e.err.Error() }

func (e *entityError) Unwrap() error { return e.err }

// conflictError names the unique field a write collided on
type conflictError struct {
	field string
	err   error
}

func (e *conflictError) Error() string { return e.field + " already recorded: " + e.err.Error() }

func (e *conflictError) Unwrap() error { return e.err }

// upstreamError marks a failure of the chain node
type upstreamError struct {
	err error
}

func (e *upstreamError) Error() string { return "chain request failed: " + e.err.Error() }

func (e *upstreamError) Unwrap() error { return e.err }

// ErrorHandlingMiddleware renders the last handler error once the chain has run
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		if status >= http.StatusInternalServerError {
			zap.L().Error("Request failed",
				zap.String("request_id", models.RequestIdFromContext(c.Request.Context())),
				zap.String("route", c.FullPath()),
				zap.Error(lastErr.Err))
		}
		c.AbortWithStatusJSON(status, payload)
	}
}

// AbortWithError records err for ErrorHandlingMiddleware and stops the handler chain
func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func abortWithEntity(c *gin.Context, entity string, err error) {
	AbortWithError(c, &entityError{entity: entity, err: err})
}

func mapError(err error) (int, errorResponse) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, errorResponse{Detail: validationErr.Error(), Field: validationErr.Field}
	}

	var conflict *conflictError
	if errors.As(err, &conflict) {
		return http.StatusConflict, errorResponse{Detail: conflict.field + " already recorded", Field: conflict.field}
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, errorResponse{Detail: entityName(err) + " not found"}
	case errors.Is(err, store.ErrDuplicateKey):
		return http.StatusConflict, errorResponse{Detail: entityName(err) + " already exists"}
	case errors.Is(err, store.ErrInvalidReference):
		return http.StatusBadRequest, errorResponse{Detail: "referenced agent, user or service does not exist"}
	case errors.Is(err, chain.ErrTransactionNotFound):
		return http.StatusNotFound, errorResponse{Detail: "Transaction not found"}
	case errors.Is(err, chain.ErrInvalidAddress):
		return http.StatusBadRequest, errorResponse{Detail: err.Error(), Field: "token"}
	case errors.Is(err, api.ErrChainUnavailable):
		return http.StatusServiceUnavailable, errorResponse{Detail: "Chain client not configured"}
	}

	var upstream *upstreamError
	if errors.As(err, &upstream) {
		return http.StatusBadGateway, errorResponse{Detail: upstream.Error()}
	}

	return http.StatusInternalServerError, errorResponse{Detail: "Internal server error"}
}

func entityName(err error) string {
	var named *entityError
	if errors.As(err, &named) {
		return named.entity
	}
	return "Resource"
}
