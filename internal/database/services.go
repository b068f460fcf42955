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

package database

import (
	"context"
	"fmt"
	"strings"

	"x402-agent-market-go/internal/models"
	"x402-agent-market-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Service) UpsertService(ctx context.Context, params store.CreateServiceParams) (*models.Service, bool, error) {
	key := naturalKey{table: "services", columns: serviceColumns, column: "contract_address", value: params.ContractAddress}

	service, created, err := upsertByUniqueField(ctx, s, key, func(ctx context.Context) (*models.Service, error) {
		return s.insertService(ctx, params)
	})
	if err != nil {
		zap.L().Error("Failed to upsert service",
			zap.String("contract_address", params.ContractAddress),
			zap.Error(err))
		return nil, false, fmt.Errorf("unable to upsert service: %w", err)
	}

	if created {
		zap.L().Info("Created service",
			zap.String("id", service.Id),
			zap.String("contract_address", service.ContractAddress),
			zap.String("service_type", string(service.ServiceType)),
			zap.String("price", service.Price.String()))
	}
	return service, created, nil
}

func (s *Service) insertService(ctx context.Context, params store.CreateServiceParams) (*models.Service, error) {
	id, err := newId()
	if err != nil {
		return nil, err
	}
	ts := now()

	pricingModel := params.PricingModel
	if pricingModel == "" {
		pricingModel = models.PricingModelPayPerUse
	}

	service := &models.Service{
		Id:              id,
		ProviderAddress: params.ProviderAddress,
		ContractAddress: params.ContractAddress,
		Name:            params.Name,
		Description:     params.Description,
		ServiceType:     params.ServiceType,
		Price:           params.Price,
		PricingModel:    pricingModel,
		Rating:          decimal.Zero,
		CallCount:       0,
		Status:          models.ServiceStatusActive,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	if err := s.insertRow(ctx, queryInsertService, service); err != nil {
		return nil, err
	}
	return service, nil
}

func (s *Service) GetService(ctx context.Context, serviceId string) (*models.Service, error) {
	zap.L().Debug("Querying service by ID", zap.String("service_id", serviceId))

	var service models.Service
	if err := s.db.GetContext(ctx, &service, s.db.Rebind(queryGetServiceById), serviceId); err != nil {
		return nil, fmt.Errorf("service %s: %w", serviceId, classifyError(err))
	}
	return &service, nil
}

// ListServices filters by status and type when set. Insertion order is
// (created_at, id); the rating order breaks ties the same way.
func (s *Service) ListServices(ctx context.Context, query store.ServiceQuery) ([]models.Service, error) {
	var (
		conditions []string
		args       []any
	)
	if query.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, query.Status)
	}
	if query.ServiceType != "" {
		conditions = append(conditions, "service_type = ?")
		args = append(args, query.ServiceType)
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + serviceColumns + " FROM services")
	if len(conditions) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	switch query.OrderBy {
	case store.OrderByRatingDesc:
		sb.WriteString(" ORDER BY " + s.dialect.ratingOrder + ", created_at, id")
	default:
		sb.WriteString(" ORDER BY created_at, id")
	}
	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, query.Limit, query.Offset)

	var services []models.Service
	if err := s.db.SelectContext(ctx, &services, s.db.Rebind(sb.String()), args...); err != nil {
		zap.L().Error("Failed to query services", zap.Error(err))
		return nil, fmt.Errorf("unable to query services: %w", err)
	}

	zap.L().Debug("Retrieved services",
		zap.String("service_type", string(query.ServiceType)),
		zap.String("status", string(query.Status)),
		zap.Int("count", len(services)))
	return services, nil
}
