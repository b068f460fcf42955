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
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// paymentIdWord right-pads a 0x-prefixed hex id of at most 32 bytes, as Solidity does for bytes32
func paymentIdWord(paymentId string) ([32]byte, error) {
	var word [32]byte
	raw, err := hexutil.Decode(paymentId)
	if err != nil || len(raw) == 0 || len(raw) > len(word) {
		return word, fmt.Errorf("%w: %q", ErrInvalidPaymentID, paymentId)
	}
	copy(word[:], raw)
	return word, nil
}

// IsPaymentProcessed asks the x402 payment contract whether paymentId has settled
func (c *Client) IsPaymentProcessed(ctx context.Context, paymentId string) (bool, error) {
	if c.paymentContract == "" {
		return false, ErrContractNotConfigured
	}

	word, err := paymentIdWord(paymentId)
	if err != nil {
		return false, err
	}

	out, err := c.callContract(ctx, common.HexToAddress(c.paymentContract), "isPaymentProcessed", func() ([]byte, error) {
		return x402PaymentABI.Pack("isPaymentProcessed", word)
	})
	if err != nil {
		return false, fmt.Errorf("unable to check payment %s: %w", paymentId, err)
	}

	values, err := x402PaymentABI.Unpack("isPaymentProcessed", out)
	if err != nil {
		return false, fmt.Errorf("unable to decode payment %s status: %w", paymentId, err)
	}
	processed, ok := values[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected isPaymentProcessed result type %T", values[0])
	}

	zap.L().Debug("Checked payment on chain",
		zap.String("payment_id", paymentId),
		zap.Bool("processed", processed))
	return processed, nil
}
