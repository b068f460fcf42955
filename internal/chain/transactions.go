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

package chain

import (
	"context"
	"errors"
	"fmt"

	"x402-agent-market-go/internal/models"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetTransaction merges the transaction with its receipt. A transaction that
// is not yet mined has no receipt and reports status 0 and block 0.
func (c *Client) GetTransaction(ctx context.Context, hash string) (*models.ChainTransaction, error) {
	raw, err := hexutil.Decode(hash)
	if err != nil || len(raw) != common.HashLength {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, hash)
	}
	txHash := common.BytesToHash(raw)

	if err := c.wait(ctx, "eth_getTransactionByHash"); err != nil {
		return nil, err
	}
	tx, _, err := c.eth.TransactionByHash(ctx, txHash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to get transaction %s: %w", hash, err)
	}

	result := &models.ChainTransaction{
		Hash:        txHash.Hex(),
		From:        senderOf(tx),
		Value:       decimal.NewFromBigInt(tx.Value(), -nativeDecimals),
		ExplorerURL: c.explorerLink(txHash.Hex()),
	}
	if to := tx.To(); to != nil {
		result.To = to.Hex()
	}

	if err := c.wait(ctx, "eth_getTransactionReceipt"); err != nil {
		return nil, err
	}
	receipt, err := c.eth.TransactionReceipt(ctx, txHash)
	if errors.Is(err, ethereum.NotFound) {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to get receipt of %s: %w", hash, err)
	}

	result.Status = receipt.Status
	result.GasUsed = receipt.GasUsed
	if receipt.BlockNumber != nil {
		result.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return result, nil
}

// senderOf recovers the signer; unknown transaction types leave it empty
func senderOf(tx *types.Transaction) string {
	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		zap.L().Debug("Unable to recover transaction sender", zap.String("hash", tx.Hash().Hex()), zap.Error(err))
		return ""
	}
	return from.Hex()
}
