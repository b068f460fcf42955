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

	"x402-agent-market-go/internal/api"
	"x402-agent-market-go/internal/models"

	"github.com/gin-gonic/gin"
)

type createServiceRequest struct {
	ProviderAddress string       `json:"provider_address"`
	ContractAddress string       `json:"contract_address"`
	Name            string       `json:"name"`
	Description     *string      `json:"description"`
	ServiceType     string       `json:"service_type"`
	Price           decimalField `json:"price"`
	PricingModel    string       `json:"pricing_model"`
}

type serviceListQuery struct {
	ServiceType string `form:"service_type"`
	Status      string `form:"status"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}

func (s *Server) CreateService(c *gin.Context) {
	var req createServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidBody)
		return
	}

	svc, created, err := s.ledger.CreateService(c.Request.Context(), api.CreateServiceParams{
		ProviderAddress: req.ProviderAddress,
		ContractAddress: req.ContractAddress,
		Name:            req.Name,
		Description:     req.Description,
		ServiceType:     req.ServiceType,
		Price:           req.Price.String(),
		PricingModel:    req.PricingModel,
	})
	if err != nil {
		abortWithEntity(c, "Service", err)
		return
	}

	c.JSON(createdStatus(created), models.NewServiceResponse(svc))
}

func (s *Server) GetService(c *gin.Context) {
	svc, err := s.ledger.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithEntity(c, "Service", err)
		return
	}

	c.JSON(http.StatusOK, models.NewServiceResponse(svc))
}

func (s *Server) ListCatalogServices(c *gin.Context) {
	filter, ok := bindServiceFilter(c)
	if !ok {
		return
	}

	services, err := s.ledger.ListCatalogServices(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := make([]models.ServiceResponse, 0, len(services))
	for i := range services {
		resp = append(resp, models.NewServiceResponse(&services[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListMarketServices(c *gin.Context) {
	filter, ok := bindServiceFilter(c)
	if !ok {
		return
	}

	services, err := s.ledger.ListMarketServices(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := make([]models.MarketServiceResponse, 0, len(services))
	for i := range services {
		resp = append(resp, models.NewMarketServiceResponse(&services[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetMarketService returns the market view of a service in any status so links stay valid after delisting
func (s *Server) GetMarketService(c *gin.Context) {
	svc, err := s.ledger.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithEntity(c, "Service", err)
		return
	}

	c.JSON(http.StatusOK, models.NewMarketServiceResponse(svc))
}

func bindServiceFilter(c *gin.Context) (api.ServiceFilter, bool) {
	var query serviceListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, errInvalidQuery)
		return api.ServiceFilter{}, false
	}

	return api.ServiceFilter{
		ServiceType: query.ServiceType,
		Status:      query.Status,
		Limit:       query.Limit,
		Offset:      query.Offset,
	}, true
}
