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

	"go.uber.org/zap"
)

// InsertPayment appends a payment in pending state. A repeated payment_id or
// tx_hash fails with store.ErrDuplicateKey and leaves the existing row untouched.
func (s *Service) InsertPayment(ctx context.Context, params store.InsertPaymentParams) (*models.Payment, error) {
	id, err := newId()
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		Id:          id,
		AgentId:     params.AgentId,
		ServiceId:   params.ServiceId,
		TxHash:      params.TxHash,
		PaymentId:   params.PaymentId,
		Amount:      params.Amount,
		PaymentType: params.PaymentType,
		Status:      models.PaymentStatusPending,
		Metadata:    params.Metadata,
		CreatedAt:   now(),
	}
	if err := s.insertRow(ctx, queryInsertPayment, payment); err != nil {
		return nil, fmt.Errorf("unable to insert payment %s: %w", params.PaymentId, err)
	}

	zap.L().Info("Inserted payment",
		zap.String("id", payment.Id),
		zap.String("payment_id", payment.PaymentId),
		zap.String("tx_hash", payment.TxHash),
		zap.String("amount", payment.Amount.String()))
	return payment, nil
}

func (s *Service) GetPaymentByPaymentId(ctx context.Context, paymentId string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.GetContext(ctx, &payment, s.db.Rebind(queryGetPaymentByPaymentId), paymentId); err != nil {
		return nil, fmt.Errorf("payment %s: %w", paymentId, classifyError(err))
	}
	return &payment, nil
}

func (s *Service) GetPaymentByTxHash(ctx context.Context, txHash string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.GetContext(ctx, &payment, s.db.Rebind(queryGetPaymentByTxHash), txHash); err != nil {
		return nil, fmt.Errorf("payment with tx %s: %w", txHash, classifyError(err))
	}
	return &payment, nil
}

// ListPayments returns the most recent payments first.
func (s *Service) ListPayments(ctx context.Context, query store.PaymentQuery) ([]models.Payment, error) {
	var (
		conditions []string
		args       []any
	)
	if query.AgentId != "" {
		conditions = append(conditions, "agent_id = ?")
		args = append(args, query.AgentId)
	}
	if query.ServiceId != "" {
		conditions = append(conditions, "service_id = ?")
		args = append(args, query.ServiceId)
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + paymentColumns + " FROM payments")
	if len(conditions) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")
	args = append(args, query.Limit, query.Offset)

	var payments []models.Payment
	if err := s.db.SelectContext(ctx, &payments, s.db.Rebind(sb.String()), args...); err != nil {
		zap.L().Error("Failed to query payments", zap.Error(err))
		return nil, fmt.Errorf("unable to query payments: %w", err)
	}
	return payments, nil
}

// UpdatePaymentStatus reads the previous status and applies the new one in a
// single transaction so the returned status is the one actually overwritten.
func (s *Service) UpdatePaymentStatus(
	ctx context.Context,
	paymentId string,
	status models.PaymentStatus,
	blockNumber *int64,
) (models.PaymentStatus, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("unable to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var previous models.PaymentStatus
	if err := tx.GetContext(ctx, &previous, tx.Rebind(queryGetPaymentStatus), paymentId); err != nil {
		return "", fmt.Errorf("payment %s: %w", paymentId, classifyError(err))
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(queryUpdatePaymentStatus), status, blockNumber, paymentId); err != nil {
		zap.L().Error("Failed to update payment status", zap.String("payment_id", paymentId), zap.Error(err))
		return "", fmt.Errorf("unable to update payment %s: %w", paymentId, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("unable to commit payment status update: %w", err)
	}

	zap.L().Info("Updated payment status",
		zap.String("payment_id", paymentId),
		zap.String("from", string(previous)),
		zap.String("to", string(status)))
	return previous, nil
}
