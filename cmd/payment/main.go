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
	"os"

	"x402-agent-market-go/internal/common"
	"x402-agent-market-go/internal/config"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	paymentIdFlag := flag.String("id", "", "Payment id (required)")
	verifyFlag := flag.Bool("verify", false, "Verify the payment locally, then against the x402 contract")
	statusFlag := flag.String("status", "", "Set the payment status: pending, confirmed or failed")
	blockFlag := flag.Int64("block", -1, "Block number recorded with --status (optional)")
	flag.Parse()

	if *paymentIdFlag == "" {
		zap.L().Fatal("--id is required")
	}
	if !*verifyFlag && *statusFlag == "" {
		fmt.Println("Nothing to do: pass --verify and/or --status")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if *statusFlag != "" {
		var block *int64
		if *blockFlag >= 0 {
			block = blockFlag
		}
		if err := services.Ledger.UpdatePaymentStatus(ctx, *paymentIdFlag, *statusFlag, block); err != nil {
			zap.L().Fatal("Failed to update payment status", zap.Error(err))
		}
		zap.L().Info("Payment status update submitted",
			zap.String("payment_id", *paymentIdFlag),
			zap.String("status", *statusFlag))
	}

	common.PrintHeader("PAYMENT "+*paymentIdFlag, common.DefaultWidth)

	payment, err := services.Ledger.GetPayment(ctx, *paymentIdFlag)
	if err != nil {
		fmt.Println("Not recorded locally")
	} else {
		fmt.Printf("Tx:       %s\n", common.ShortHash(payment.TxHash))
		fmt.Printf("Amount:   %s (%s)\n", payment.Amount.String(), payment.PaymentType)
		fmt.Printf("Status:   %s\n", payment.Status)
		fmt.Printf("Block:    %s\n", common.OptionalBlock(payment.BlockNumber))
		fmt.Printf("Recorded: %s\n", payment.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	if *verifyFlag {
		verified, err := services.Ledger.VerifyPayment(ctx, *paymentIdFlag)
		if err != nil {
			zap.L().Fatal("Failed to verify payment", zap.Error(err))
		}
		fmt.Printf("Verified: %t (chain configured: %t)\n", verified, services.Ledger.ChainConfigured())
	}

	common.PrintSeparator("=", common.DefaultWidth)
}
