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
	"net/http"

	"x402-agent-market-go/internal/models"

	"github.com/gin-gonic/gin"
)

type createUserRequest struct {
	WalletAddress string `json:"wallet_address"`
}

func (s *Server) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidBody)
		return
	}

	user, created, err := s.ledger.CreateUser(c.Request.Context(), req.WalletAddress)
	if err != nil {
		abortWithEntity(c, "User", err)
		return
	}

	c.JSON(createdStatus(created), models.NewUserResponse(user))
}

func (s *Server) GetUser(c *gin.Context) {
	user, err := s.ledger.GetUser(c.Request.Context(), c.Param("wallet_address"))
	if err != nil {
		abortWithEntity(c, "User", err)
		return
	}

	c.JSON(http.StatusOK, models.NewUserResponse(user))
}

func (s *Server) ListUserAgents(c *gin.Context) {
	agents, err := s.ledger.ListUserAgents(c.Request.Context(), c.Param("wallet_address"))
	if err != nil {
		abortWithEntity(c, "User", err)
		return
	}

	resp := make([]models.AgentSummary, 0, len(agents))
	for _, a := range agents {
		resp = append(resp, models.AgentSummary{
			Id:              a.Id,
			Name:            a.Name,
			ContractAddress: a.ContractAddress,
		})
	}
	c.JSON(http.StatusOK, resp)
}
