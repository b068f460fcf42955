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

package common

import (
	"context"
	"fmt"

	"x402-agent-market-go/internal/models"
	"x402-agent-market-go/internal/store"

	"go.uber.org/zap"
)

// SelectUsers returns the user owning walletFilter, or every user when the filter is empty
func SelectUsers(ctx context.Context, entityStore store.EntityStore, walletFilter string, logger *zap.Logger) ([]models.User, error) {
	if walletFilter != "" {
		logger.Info("Looking up user by wallet", zap.String("wallet_address", walletFilter))
		user, err := entityStore.GetUserByWallet(ctx, walletFilter)
		if err != nil {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return []models.User{*user}, nil
	}

	users, err := entityStore.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	logger.Info("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}
