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
	"errors"
	"fmt"
	"strings"

	"x402-agent-market-go/internal/models"
	"x402-agent-market-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreateAgentParams struct {
	UserWalletAddress string
	ContractAddress   string
	Name              string
	Description       *string
}

// RecordTradeParams is a trade reported by an agent runtime. Decimal fields are strings
// so precision survives from the wire to the store.
type RecordTradeParams struct {
	AgentId         string
	TxHash          string
	TransactionType string
	TokenAddress    string
	Amount          string
	Price           *string
	Status          string
	BlockNumber     *int64
}

// CreateAgent upserts the owning user, then the agent keyed by contract address.
// A repeated contract address returns the first agent unchanged.
func (s *LedgerService) CreateAgent(ctx context.Context, params CreateAgentParams) (*models.Agent, bool, error) {
	wallet, err := models.RequireString("user_wallet_address", params.UserWalletAddress)
	if err != nil {
		return nil, false, err
	}
	contract, err := models.RequireString("contract_address", params.ContractAddress)
	if err != nil {
		return nil, false, err
	}
	name, err := models.RequireString("name", params.Name)
	if err != nil {
		return nil, false, err
	}

	user, _, err := s.store.UpsertUser(ctx, wallet)
	if err != nil {
		return nil, false, err
	}

	return s.store.UpsertAgent(ctx, store.CreateAgentParams{
		UserId:          user.Id,
		ContractAddress: contract,
		Name:            name,
		Description:     params.Description,
	})
}

func (s *LedgerService) GetAgent(ctx context.Context, agentId string) (*models.Agent, error) {
	return s.store.GetAgent(ctx, agentId)
}

func (s *LedgerService) ListAgentTransactions(ctx context.Context, agentId string) ([]models.Transaction, error) {
	if _, err := s.store.GetAgent(ctx, agentId); err != nil {
		return nil, err
	}
	return s.store.ListAgentTransactions(ctx, agentId)
}

// AgentStats is recomputed from the agent's transactions on every call
func (s *LedgerService) AgentStats(ctx context.Context, agentId string) (*models.AgentStats, error) {
	agent, err := s.store.GetAgent(ctx, agentId)
	if err != nil {
		return nil, err
	}

	total, successful, err := s.store.CountAgentTrades(ctx, agentId)
	if err != nil {
		return nil, err
	}

	return &models.AgentStats{
		TotalTrades:      total,
		SuccessfulTrades: successful,
		Balance:          agent.Balance,
		Status:           agent.Status,
	}, nil
}

// RecordTrade appends a trade for an agent. A tx hash that is already recorded
// returns the existing row with created=false.
func (s *LedgerService) RecordTrade(ctx context.Context, params RecordTradeParams) (*models.Transaction, bool, error) {
	insert, err := validateTrade(params)
	if err != nil {
		return nil, false, err
	}

	if _, err := s.store.GetAgent(ctx, insert.AgentId); err != nil {
		return nil, false, err
	}

	tx, err := s.store.InsertTransaction(ctx, insert)
	if err == nil {
		return tx, true, nil
	}
	if !errors.Is(err, store.ErrDuplicateKey) {
		return nil, false, err
	}

	existing, lookupErr := s.store.GetTransactionByHash(ctx, insert.TxHash)
	if lookupErr != nil {
		return nil, false, fmt.Errorf("unable to load recorded trade %s: %w", insert.TxHash, lookupErr)
	}
	if existing.AgentId != insert.AgentId {
		return nil, false, models.NewValidationError("tx_hash", "already recorded for another agent")
	}

	zap.L().Info("Trade already recorded",
		zap.String("agent_id", insert.AgentId),
		zap.String("tx_hash", insert.TxHash))
	return existing, false, nil
}

func validateTrade(params RecordTradeParams) (store.InsertTransactionParams, error) {
	var insert store.InsertTransactionParams
	var err error

	if insert.AgentId, err = models.RequireString("agent_id", params.AgentId); err != nil {
		return insert, err
	}
	if insert.TxHash, err = models.RequireString("tx_hash", params.TxHash); err != nil {
		return insert, err
	}
	if insert.TransactionType, err = models.ParseTransactionType(params.TransactionType); err != nil {
		return insert, err
	}
	if insert.TokenAddress, err = models.RequireString("token_address", params.TokenAddress); err != nil {
		return insert, err
	}
	if insert.Amount, err = models.ParseMonetary("amount", params.Amount); err != nil {
		return insert, err
	}
	if params.Price != nil && strings.TrimSpace(*params.Price) != "" {
		price, err := models.ParseNonNegativeMonetary("price", *params.Price)
		if err != nil {
			return insert, err
		}
		insert.Price = decimal.NewNullDecimal(price)
	}

	insert.Status = models.TransactionStatusPending
	if params.Status != "" {
		if insert.Status, err = models.ParseTransactionStatus(params.Status); err != nil {
			return insert, err
		}
	}
	if params.BlockNumber != nil && *params.BlockNumber < 0 {
		return insert, models.NewValidationError("block_number", "must not be negative")
	}
	insert.BlockNumber = params.BlockNumber
	return insert, nil
}

// UpdateTradeStatus records the settled outcome of a trade. Unknown hashes are ErrNotFound.
func (s *LedgerService) UpdateTradeStatus(ctx context.Context, txHash, status string, blockNumber *int64) error {
	parsed, err := models.ParseTransactionStatus(status)
	if err != nil {
		return err
	}
	if blockNumber, err = blockNumberUpdate(blockNumber); err != nil {
		return err
	}
	return s.store.UpdateTransactionStatus(ctx, txHash, parsed, blockNumber)
}

// AgentChainBalance reads the on-chain balance held by the agent's contract
func (s *LedgerService) AgentChainBalance(ctx context.Context, agentId, token string) (*models.ChainBalanceResponse, error) {
	agent, err := s.store.GetAgent(ctx, agentId)
	if err != nil {
		return nil, err
	}
	if s.chain == nil {
		return nil, ErrChainUnavailable
	}

	balance, err := s.chain.GetBalance(ctx, agent.ContractAddress, token)
	if err != nil {
		return nil, fmt.Errorf("unable to read chain balance of agent %s: %w", agentId, err)
	}

	return &models.ChainBalanceResponse{
		Address: agent.ContractAddress,
		Token:   token,
		Balance: balance,
	}, nil
}
