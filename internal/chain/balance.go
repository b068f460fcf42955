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
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const nativeDecimals = 18

// GetBalance returns the native balance of address when token is empty,
// otherwise its ERC-20 balance of token, scaled by the token's decimals.
func (c *Client) GetBalance(ctx context.Context, address, token string) (decimal.Decimal, error) {
	if !IsValidAddress(address) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	account := common.HexToAddress(address)

	if token == "" {
		if err := c.wait(ctx, "eth_getBalance"); err != nil {
			return decimal.Zero, err
		}
		wei, err := c.eth.BalanceAt(ctx, account, nil)
		if err != nil {
			return decimal.Zero, fmt.Errorf("unable to get balance of %s: %w", address, err)
		}
		return decimal.NewFromBigInt(wei, -nativeDecimals), nil
	}

	if !IsValidAddress(token) {
		return decimal.Zero, fmt.Errorf("%w: token %q", ErrInvalidAddress, token)
	}
	tokenAddress := common.HexToAddress(token)

	out, err := c.callContract(ctx, tokenAddress, "balanceOf", func() ([]byte, error) {
		return erc20ABI.Pack("balanceOf", account)
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to get %s balance of %s: %w", token, address, err)
	}
	values, err := erc20ABI.Unpack("balanceOf", out)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to decode %s balance of %s: %w", token, address, err)
	}
	units, ok := values[0].(*big.Int)
	if !ok {
		return decimal.Zero, fmt.Errorf("unexpected balanceOf result type %T", values[0])
	}

	decimals := c.tokenDecimals(ctx, tokenAddress)
	return decimal.NewFromBigInt(units, -decimals), nil
}

// tokenDecimals falls back to 18 for tokens that do not implement decimals()
func (c *Client) tokenDecimals(ctx context.Context, token common.Address) int32 {
	out, err := c.callContract(ctx, token, "decimals", func() ([]byte, error) {
		return erc20ABI.Pack("decimals")
	})
	if err == nil {
		var values []any
		if values, err = erc20ABI.Unpack("decimals", out); err == nil {
			if d, ok := values[0].(uint8); ok {
				return int32(d)
			}
		}
	}
	zap.L().Debug("Token decimals unavailable, assuming 18", zap.String("token", token.Hex()), zap.Error(err))
	return nativeDecimals
}

// callContract packs the call data and runs a read-only eth_call at the latest block
func (c *Client) callContract(ctx context.Context, to common.Address, method string, pack func() ([]byte, error)) ([]byte, error) {
	data, err := pack()
	if err != nil {
		return nil, fmt.Errorf("unable to encode %s call: %w", method, err)
	}
	if err := c.wait(ctx, "eth_call"); err != nil {
		return nil, err
	}
	return c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
}
