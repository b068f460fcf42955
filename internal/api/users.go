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
	"fmt"

	"x402-agent-market-go/internal/models"
)

// CreateUser upserts a user on first sighting of a wallet address
func (s *LedgerService) CreateUser(ctx context.Context, walletAddress string) (*models.User, bool, error) {
	wallet, err := models.RequireString("wallet_address", walletAddress)
	if err != nil {
		return nil, false, err
	}
	return s.store.UpsertUser(ctx, wallet)
}

func (s *LedgerService) GetUser(ctx context.Context, walletAddress string) (*models.User, error) {
	return s.store.GetUserByWallet(ctx, walletAddress)
}

func (s *LedgerService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

// ListUserAgents returns the agents of a wallet; an unknown wallet is ErrNotFound
func (s *LedgerService) ListUserAgents(ctx context.Context, walletAddress string) ([]models.Agent, error) {
	user, err := s.store.GetUserByWallet(ctx, walletAddress)
	if err != nil {
		return nil, err
	}

	agents, err := s.store.ListUserAgents(ctx, user.Id)
	if err != nil {
		return nil, fmt.Errorf("unable to list agents of %s: %w", walletAddress, err)
	}
	return agents, nil
}
