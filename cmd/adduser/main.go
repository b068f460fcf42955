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
	"strings"

	"x402-agent-market-go/internal/api"
	"x402-agent-market-go/internal/chain"
	"x402-agent-market-go/internal/common"
	"x402-agent-market-go/internal/config"

	"go.uber.org/zap"
)

func validateWallet(wallet string) error {
	if wallet == "" {
		return fmt.Errorf("wallet cannot be empty")
	}
	if !chain.IsValidAddress(wallet) {
		return fmt.Errorf("invalid wallet address: %s", wallet)
	}
	return nil
}

func validateAgentFlags(contract, name string) error {
	if contract == "" && name == "" {
		return nil
	}
	if !chain.IsValidAddress(contract) {
		return fmt.Errorf("invalid agent contract address: %q", contract)
	}
	if len(strings.TrimSpace(name)) < 2 {
		return fmt.Errorf("agent name must be at least 2 characters")
	}
	return nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	walletFlag := flag.String("wallet", "", "User's wallet address (required)")
	contractFlag := flag.String("agent-contract", "", "Contract address of an agent to register for the user (optional)")
	agentNameFlag := flag.String("agent-name", "", "Name of the agent (required with --agent-contract)")
	descriptionFlag := flag.String("agent-description", "", "Description of the agent (optional)")
	flag.Parse()

	if err := validateWallet(*walletFlag); err != nil {
		zap.L().Fatal("Invalid wallet", zap.Error(err))
	}
	if err := validateAgentFlags(*contractFlag, *agentNameFlag); err != nil {
		zap.L().Fatal("Invalid agent", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	ledger := api.NewLedgerService(dbService, nil, cfg.Ledger)

	user, created, err := ledger.CreateUser(ctx, *walletFlag)
	if err != nil {
		zap.L().Fatal("Failed to create user", zap.Error(err))
	}

	title := "USER CREATED"
	if !created {
		title = "USER ALREADY EXISTS"
	}
	common.PrintHeader(title, common.DefaultWidth)
	fmt.Printf("ID:      %s\n", user.Id)
	fmt.Printf("Wallet:  %s\n", user.WalletAddress)
	fmt.Printf("Created: %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
	common.PrintSeparator("=", common.DefaultWidth)

	if *contractFlag == "" {
		return
	}

	var description *string
	if *descriptionFlag != "" {
		description = descriptionFlag
	}

	agent, created, err := ledger.CreateAgent(ctx, api.CreateAgentParams{
		UserWalletAddress: user.WalletAddress,
		ContractAddress:   *contractFlag,
		Name:              *agentNameFlag,
		Description:       description,
	})
	if err != nil {
		zap.L().Fatal("Failed to create agent", zap.Error(err))
	}

	if !created && agent.UserId != user.Id {
		zap.L().Warn("Agent contract already registered to another user",
			zap.String("contract_address", agent.ContractAddress),
			zap.String("owner_id", agent.UserId))
	}

	title = "AGENT REGISTERED"
	if !created {
		title = "AGENT ALREADY REGISTERED"
	}
	common.PrintHeader(title, common.DefaultWidth)
	fmt.Printf("ID:       %s\n", agent.Id)
	fmt.Printf("Name:     %s\n", agent.Name)
	fmt.Printf("Contract: %s\n", agent.ContractAddress)
	fmt.Printf("Status:   %s\n", agent.Status)
	common.PrintSeparator("=", common.DefaultWidth)

	zap.L().Info("User setup completed",
		zap.String("user_id", user.Id),
		zap.String("agent_id", agent.Id),
		zap.Bool("agent_created", created))
}
