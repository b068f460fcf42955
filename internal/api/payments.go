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

	"go.uber.org/zap"
)

type RecordPaymentParams struct {
	PaymentId   string
	TxHash      string
	Amount      string
	PaymentType string
	AgentId     *string
	ServiceId   *string
	Metadata    models.Metadata
}

type PaymentFilter struct {
	AgentId   string
	ServiceId string
	Limit     int
	Offset    int
}

// RecordPayment stores a new payment in pending state. A payment_id or tx_hash
// that is already recorded fails with a wrapped store.ErrDuplicateKey and the
// existing row is left as it was; callers treat that as "already recorded".
func (s *LedgerService) RecordPayment(ctx context.Context, params RecordPaymentParams) (*models.Payment, error) {
	insert, err := validatePayment(params)
	if err != nil {
		s.metrics.paymentsRecorded.WithLabelValues(recordResultError).Inc()
		return nil, err
	}

	payment, err := s.store.InsertPayment(ctx, insert)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			s.metrics.paymentsRecorded.WithLabelValues(recordResultDuplicate).Inc()
			zap.L().Info("Payment already recorded",
				zap.String("payment_id", insert.PaymentId),
				zap.String("tx_hash", insert.TxHash))
			return nil, fmt.Errorf("payment %s: %w", insert.PaymentId, err)
		}
		s.metrics.paymentsRecorded.WithLabelValues(recordResultError).Inc()
		zap.L().Error("Failed to record payment",
			zap.String("payment_id", insert.PaymentId),
			zap.Error(err))
		return nil, err
	}

	s.metrics.paymentsRecorded.WithLabelValues(recordResultCreated).Inc()
	return payment, nil
}

func validatePayment(params RecordPaymentParams) (store.InsertPaymentParams, error) {
	var insert store.InsertPaymentParams
	var err error

	if insert.PaymentId, err = models.RequireString("payment_id", params.PaymentId); err != nil {
		return insert, err
	}
	if insert.TxHash, err = models.RequireString("tx_hash", params.TxHash); err != nil {
		return insert, err
	}
	if insert.Amount, err = models.ParseMonetary("amount", params.Amount); err != nil {
		return insert, err
	}
	if insert.PaymentType, err = models.ParsePaymentType(params.PaymentType); err != nil {
		return insert, err
	}
	insert.AgentId = optionalId(params.AgentId)
	insert.ServiceId = optionalId(params.ServiceId)
	insert.Metadata = params.Metadata
	return insert, nil
}

// optionalId treats a blank reference like an absent one
func optionalId(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// FindRecordedPayment returns the payment that holds either key, payment_id first
func (s *LedgerService) FindRecordedPayment(ctx context.Context, paymentId, txHash string) (*models.Payment, error) {
	payment, err := s.store.GetPaymentByPaymentId(ctx, paymentId)
	if err == nil || !errors.Is(err, store.ErrNotFound) {
		return payment, err
	}
	return s.store.GetPaymentByTxHash(ctx, txHash)
}

// VerifyPayment is true when the local row is confirmed, otherwise whatever the
// chain reports. Chain failures and a missing chain client both read as
// unverified, never as an error. Local state is only touched when confirmation
// persistence is enabled and a pending local row exists.
func (s *LedgerService) VerifyPayment(ctx context.Context, paymentId string) (bool, error) {
	local, err := s.store.GetPaymentByPaymentId(ctx, paymentId)
	switch {
	case err == nil && local.Status == models.PaymentStatusConfirmed:
		s.metrics.paymentVerifications.WithLabelValues(verifySourceLocal).Inc()
		return true, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return false, err
	case err != nil:
		local = nil
	}

	if s.chain == nil {
		s.metrics.paymentVerifications.WithLabelValues(verifySourceUnverified).Inc()
		return false, nil
	}

	chainCtx, cancel := context.WithTimeout(ctx, s.cfg.VerifyTimeout)
	defer cancel()

	processed, err := s.chain.IsPaymentProcessed(chainCtx, paymentId)
	if err != nil {
		s.metrics.paymentVerifications.WithLabelValues(verifySourceUnverified).Inc()
		zap.L().Warn("Chain verification unavailable, treating payment as unverified",
			zap.String("payment_id", paymentId),
			zap.Error(err))
		return false, nil
	}
	if !processed {
		s.metrics.paymentVerifications.WithLabelValues(verifySourceUnverified).Inc()
		return false, nil
	}

	s.metrics.paymentVerifications.WithLabelValues(verifySourceChain).Inc()
	if s.cfg.PersistChainConfirmations && local != nil && local.Status == models.PaymentStatusPending {
		if _, err := s.store.UpdatePaymentStatus(ctx, paymentId, models.PaymentStatusConfirmed, nil); err != nil {
			zap.L().Warn("Unable to persist chain confirmation",
				zap.String("payment_id", paymentId),
				zap.Error(err))
		} else {
			zap.L().Info("Persisted chain confirmation", zap.String("payment_id", paymentId))
		}
	}
	return true, nil
}

// UpdatePaymentStatus overwrites a payment's status and, when given, its block
// number. An unknown payment is a no-op since chain events may arrive before the
// payment is recorded. Leaving a terminal state is allowed for reorg corrections
// but logged as a data-integrity warning.
func (s *LedgerService) UpdatePaymentStatus(ctx context.Context, paymentId, status string, blockNumber *int64) error {
	id, err := models.RequireString("payment_id", paymentId)
	if err != nil {
		return err
	}
	parsed, err := models.ParsePaymentStatus(status)
	if err != nil {
		return err
	}
	if blockNumber, err = blockNumberUpdate(blockNumber); err != nil {
		return err
	}

	previous, err := s.store.UpdatePaymentStatus(ctx, id, parsed, blockNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.paymentStatusUpdates.WithLabelValues(string(parsed), updateOutcomeMissing).Inc()
			zap.L().Debug("Status update for unknown payment ignored",
				zap.String("payment_id", id),
				zap.String("status", string(parsed)))
			return nil
		}
		return err
	}

	if previous.IsTerminal() && previous != parsed {
		s.metrics.paymentStatusUpdates.WithLabelValues(string(parsed), updateOutcomeOverwritten).Inc()
		zap.L().Warn("Payment status overwritten after terminal state",
			zap.String("payment_id", id),
			zap.String("from", string(previous)),
			zap.String("to", string(parsed)))
		return nil
	}

	s.metrics.paymentStatusUpdates.WithLabelValues(string(parsed), updateOutcomeApplied).Inc()
	return nil
}

// blockNumberUpdate validates an optional block number. Block 0 never settles
// anything, so it keeps the stored value like an absent one.
func blockNumberUpdate(blockNumber *int64) (*int64, error) {
	if blockNumber == nil || *blockNumber == 0 {
		return nil, nil
	}
	if *blockNumber < 0 {
		return nil, models.NewValidationError("block_number", "must not be negative")
	}
	return blockNumber, nil
}

func (s *LedgerService) GetPayment(ctx context.Context, paymentId string) (*models.Payment, error) {
	return s.store.GetPaymentByPaymentId(ctx, paymentId)
}

// ListPayments returns the newest payments first
func (s *LedgerService) ListPayments(ctx context.Context, filter PaymentFilter) ([]models.Payment, error) {
	limit, offset := s.page(filter.Limit, filter.Offset)
	return s.store.ListPayments(ctx, store.PaymentQuery{
		AgentId:   filter.AgentId,
		ServiceId: filter.ServiceId,
		Limit:     limit,
		Offset:    offset,
	})
}

// ChainTransaction looks a transaction up on chain
func (s *LedgerService) ChainTransaction(ctx context.Context, hash string) (*models.ChainTransaction, error) {
	if s.chain == nil {
		return nil, ErrChainUnavailable
	}
	return s.chain.GetTransaction(ctx, hash)
}
