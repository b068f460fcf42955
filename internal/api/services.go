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

	"x402-agent-market-go/internal/models"
	"x402-agent-market-go/internal/store"
)

type CreateServiceParams struct {
	ProviderAddress string
	ContractAddress string
	Name            string
	Description     *string
	ServiceType     string
	Price           string
	PricingModel    string
}

// ServiceFilter is the query of both service listings. Empty strings mean unset.
type ServiceFilter struct {
	ServiceType string
	Status      string
	Limit       int
	Offset      int
}

func (s *LedgerService) CreateService(ctx context.Context, params CreateServiceParams) (*models.Service, bool, error) {
	var (
		create store.CreateServiceParams
		err    error
	)

	if create.ProviderAddress, err = models.RequireString("provider_address", params.ProviderAddress); err != nil {
		return nil, false, err
	}
	if create.ContractAddress, err = models.RequireString("contract_address", params.ContractAddress); err != nil {
		return nil, false, err
	}
	if create.Name, err = models.RequireString("name", params.Name); err != nil {
		return nil, false, err
	}
	if create.ServiceType, err = models.ParseServiceType(params.ServiceType); err != nil {
		return nil, false, err
	}
	if create.Price, err = models.ParseNonNegativeMonetary("price", params.Price); err != nil {
		return nil, false, err
	}
	create.PricingModel = models.PricingModelPayPerUse
	if params.PricingModel != "" {
		if create.PricingModel, err = models.ParsePricingModel(params.PricingModel); err != nil {
			return nil, false, err
		}
	}
	create.Description = params.Description

	return s.store.UpsertService(ctx, create)
}

func (s *LedgerService) GetService(ctx context.Context, serviceId string) (*models.Service, error) {
	return s.store.GetService(ctx, serviceId)
}

// ListCatalogServices is the internal catalog: status defaults to active, insertion order
func (s *LedgerService) ListCatalogServices(ctx context.Context, filter ServiceFilter) ([]models.Service, error) {
	query, err := s.serviceQuery(filter)
	if err != nil {
		return nil, err
	}
	query.OrderBy = store.OrderByInsertion
	return s.store.ListServices(ctx, query)
}

// ListMarketServices is the public market: active services only, highest rated first
func (s *LedgerService) ListMarketServices(ctx context.Context, filter ServiceFilter) ([]models.Service, error) {
	filter.Status = ""
	query, err := s.serviceQuery(filter)
	if err != nil {
		return nil, err
	}
	query.OrderBy = store.OrderByRatingDesc
	return s.store.ListServices(ctx, query)
}

func (s *LedgerService) serviceQuery(filter ServiceFilter) (store.ServiceQuery, error) {
	query := store.ServiceQuery{Status: models.ServiceStatusActive}
	var err error

	if filter.ServiceType != "" {
		if query.ServiceType, err = models.ParseServiceType(filter.ServiceType); err != nil {
			return query, err
		}
	}
	if filter.Status != "" {
		if query.Status, err = models.ParseServiceStatus(filter.Status); err != nil {
			return query, err
		}
	}
	query.Limit, query.Offset = s.page(filter.Limit, filter.Offset)
	return query, nil
}
