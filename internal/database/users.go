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

	"go.uber.org/zap"
)

func userKey(walletAddress string) naturalKey {
	return naturalKey{table: "users", columns: userColumns, column: "wallet_address", value: walletAddress}
}

func (s *Service) UpsertUser(ctx context.Context, walletAddress string) (*models.User, bool, error) {
	user, created, err := upsertByUniqueField(ctx, s, userKey(walletAddress), func(ctx context.Context) (*models.User, error) {
		return s.insertUser(ctx, walletAddress)
	})
	if err != nil {
		zap.L().Error("Failed to upsert user", zap.String("wallet_address", walletAddress), zap.Error(err))
		return nil, false, fmt.Errorf("unable to upsert user: %w", err)
	}

	if created {
		zap.L().Info("Created user", zap.String("id", user.Id), zap.String("wallet_address", walletAddress))
	}
	return user, created, nil
}

func (s *Service) insertUser(ctx context.Context, walletAddress string) (*models.User, error) {
	id, err := newId()
	if err != nil {
		return nil, err
	}
	ts := now()

	user := &models.User{Id: id, WalletAddress: walletAddress, CreatedAt: ts, UpdatedAt: ts}
	if err := s.insertRow(ctx, queryInsertUser, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	zap.L().Debug("Querying user by wallet", zap.String("wallet_address", walletAddress))

	user, err := findByUniqueField[models.User](ctx, s, userKey(walletAddress))
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", walletAddress, err)
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.SelectContext(ctx, &users, s.db.Rebind(queryListUsers)); err != nil {
		zap.L().Error("Failed to query users", zap.Error(err))
		return nil, fmt.Errorf("unable to query users: %w", err)
	}

	zap.L().Debug("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}
