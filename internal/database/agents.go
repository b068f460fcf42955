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

	"x402-agent-market-go/internal/models"
	"x402-agent-market-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Service) UpsertAgent(ctx context.Context, params store.CreateAgentParams) (*models.Agent, bool, error) {
	key := naturalKey{table: "agents", columns: agentColumns, column: "contract_address", value: params.ContractAddress}

	agent, created, err := upsertByUniqueField(ctx, s, key, func(ctx context.Context) (*models.Agent, error) {
		return s.insertAgent(ctx, params)
	})
	if err != nil {
		zap.L().Error("Failed to upsert agent",
			zap.String("contract_address", params.ContractAddress),
			zap.String("user_id", params.UserId),
			zap.Error(err))
		return nil, false, fmt.Errorf("unable to upsert agent: %w", err)
	}

	if created {
		zap.L().Info("Created agent",
			zap.String("id", agent.Id),
			zap.String("user_id", agent.UserId),
			zap.String("contract_address", agent.ContractAddress),
			zap.String("name", agent.Name))
	}
	return agent, created, nil
}

func (s *Service) insertAgent(ctx context.Context, params store.CreateAgentParams) (*models.Agent, error) {
	id, err := newId()
	if err != nil {
		return nil, err
	}
	ts := now()

	agent := &models.Agent{
		Id:              id,
		UserId:          params.UserId,
		ContractAddress: params.ContractAddress,
		Name:            params.Name,
		Description:     params.Description,
		Balance:         decimal.Zero,
		Status:          models.AgentStatusActive,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	if err := s.insertRow(ctx, queryInsertAgent, agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func (s *Service) GetAgent(ctx context.Context, agentId string) (*models.Agent, error) {
	zap.L().Debug("Querying agent by ID", zap.String("agent_id", agentId))

	var agent models.Agent
	if err := s.db.GetContext(ctx, &agent, s.db.Rebind(queryGetAgentById), agentId); err != nil {
		return nil, fmt.Errorf("agent %s: %w", agentId, classifyError(err))
	}
	return &agent, nil
}

func (s *Service) ListUserAgents(ctx context.Context, userId string) ([]models.Agent, error) {
	var agents []models.Agent
	if err := s.db.SelectContext(ctx, &agents, s.db.Rebind(queryListUserAgents), userId); err != nil {
		zap.L().Error("Failed to query user agents", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query agents for user %s: %w", userId, err)
	}

	zap.L().Debug("Retrieved user agents", zap.String("user_id", userId), zap.Int("count", len(agents)))
	return agents, nil
}
