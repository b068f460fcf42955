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

	"go.uber.org/zap"
)

func (s *Service) InsertTransaction(ctx context.Context, params store.InsertTransactionParams) (*models.Transaction, error) {
	id, err := newId()
	if err != nil {
		return nil, err
	}

	status := params.Status
	if status == "" {
		status = models.TransactionStatusPending
	}

	tx := &models.Transaction{
		Id:              id,
		AgentId:         params.AgentId,
		TxHash:          params.TxHash,
		TransactionType: params.TransactionType,
		TokenAddress:    params.TokenAddress,
		Amount:          params.Amount,
		Price:           params.Price,
		Status:          status,
		BlockNumber:     params.BlockNumber,
		CreatedAt:       now(),
	}
	if err := s.insertRow(ctx, queryInsertTransaction, tx); err != nil {
		zap.L().Warn("Failed to insert transaction",
			zap.String("agent_id", params.AgentId),
			zap.String("tx_hash", params.TxHash),
			zap.Error(err))
		return nil, fmt.Errorf("unable to insert transaction %s: %w", params.TxHash, err)
	}

	zap.L().Info("Recorded transaction",
		zap.String("id", tx.Id),
		zap.String("agent_id", tx.AgentId),
		zap.String("tx_hash", tx.TxHash),
		zap.String("type", string(tx.TransactionType)),
		zap.String("amount", tx.Amount.String()))
	return tx, nil
}

func (s *Service) GetTransactionByHash(ctx context.Context, txHash string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.db.GetContext(ctx, &tx, s.db.Rebind(queryGetTransactionByHash), txHash); err != nil {
		return nil, fmt.Errorf("transaction %s: %w", txHash, classifyError(err))
	}
	return &tx, nil
}

func (s *Service) ListAgentTransactions(ctx context.Context, agentId string) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := s.db.SelectContext(ctx, &txs, s.db.Rebind(queryListAgentTransactions), agentId); err != nil {
		zap.L().Error("Failed to query agent transactions", zap.String("agent_id", agentId), zap.Error(err))
		return nil, fmt.Errorf("unable to query transactions for agent %s: %w", agentId, err)
	}
	return txs, nil
}

func (s *Service) CountAgentTrades(ctx context.Context, agentId string) (int64, int64, error) {
	var counts struct {
		Total      int64 `db:"total"`
		Successful int64 `db:"successful"`
	}
	if err := s.db.GetContext(ctx, &counts, s.db.Rebind(queryCountAgentTrades), agentId); err != nil {
		zap.L().Error("Failed to count agent trades", zap.String("agent_id", agentId), zap.Error(err))
		return 0, 0, fmt.Errorf("unable to count trades for agent %s: %w", agentId, err)
	}
	return counts.Total, counts.Successful, nil
}

func (s *Service) UpdateTransactionStatus(ctx context.Context, txHash string, status models.TransactionStatus, blockNumber *int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(queryUpdateTransactionStatus), status, blockNumber, txHash)
	if err != nil {
		zap.L().Error("Failed to update transaction status", zap.String("tx_hash", txHash), zap.Error(err))
		return fmt.Errorf("unable to update transaction %s: %w", txHash, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("transaction %s: %w", txHash, store.ErrNotFound)
	}

	zap.L().Info("Updated transaction status", zap.String("tx_hash", txHash), zap.String("status", string(status)))
	return nil
}
