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

package main

import (
	"context"
	"flag"
	"fmt"

	"x402-agent-market-go/internal/api"
	"x402-agent-market-go/internal/common"
	"x402-agent-market-go/internal/config"
	"x402-agent-market-go/internal/models"

	"go.uber.org/zap"
)

type reportStats struct {
	totalUsers      int
	usersWithAgents int
	totalAgents     int
	totalTrades     int64
}

func printAgent(agent models.Agent, stats *models.AgentStats, isLast bool) {
	fmt.Printf("%s %-24s %-12s balance: %20s  trades: %d (%d successful)\n",
		common.BoxPrefix(isLast),
		agent.Name,
		stats.Status,
		stats.Balance.String(),
		stats.TotalTrades,
		stats.SuccessfulTrades)
}

func printUserHeader(user models.User, agentCount int) {
	fmt.Printf("\n┌─ Wallet: %s\n", user.WalletAddress)
	fmt.Printf("│  ID: %s\n", user.Id)
	fmt.Printf("│  Agents: %d\n", agentCount)
	common.PrintBoxSeparator(common.WideWidth - 2)
}

func processUser(ctx context.Context, ledger *api.LedgerService, user models.User, stats *reportStats) error {
	agents, err := ledger.ListUserAgents(ctx, user.WalletAddress)
	if err != nil {
		return fmt.Errorf("failed to list agents: %w", err)
	}
	if len(agents) == 0 {
		return nil
	}

	printUserHeader(user, len(agents))
	for i, agent := range agents {
		agentStats, err := ledger.AgentStats(ctx, agent.Id)
		if err != nil {
			return fmt.Errorf("failed to compute stats of agent %s: %w", agent.Id, err)
		}
		printAgent(agent, agentStats, i == len(agents)-1)
		stats.totalTrades += agentStats.TotalTrades
	}

	stats.usersWithAgents++
	stats.totalAgents += len(agents)
	return nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	walletFlag := flag.String("wallet", "", "Filter by specific user wallet address (optional)")
	flag.Parse()

	logger.Info("Starting agent report")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	users, err := common.SelectUsers(ctx, dbService, *walletFlag, logger)
	if err != nil {
		logger.Fatal("Failed to select users", zap.Error(err))
	}

	ledger := api.NewLedgerService(dbService, nil, cfg.Ledger)

	common.PrintHeader("AGENT REPORT", common.WideWidth)

	stats := reportStats{}
	for _, user := range users {
		stats.totalUsers++
		if err := processUser(ctx, ledger, user, &stats); err != nil {
			logger.Error("Failed to process user",
				zap.String("user_id", user.Id),
				zap.String("wallet_address", user.WalletAddress),
				zap.Error(err))
		}
	}

	summary := fmt.Sprintf("SUMMARY: %d agents across %d of %d users, %d trades recorded",
		stats.totalAgents, stats.usersWithAgents, stats.totalUsers, stats.totalTrades)
	common.PrintFooter(summary, common.WideWidth)

	logger.Info("Agent report completed",
		zap.Int("users_queried", stats.totalUsers),
		zap.Int("agents", stats.totalAgents),
		zap.Int64("trades", stats.totalTrades))
}
