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

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"x402-agent-market-go/internal/models"
)

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	readTimeout, err := getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	writeTimeout, err := getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	chainTimeout, err := getEnvDuration("CHAIN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	verifyTimeout, err := getEnvDuration("LEDGER_VERIFY_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	contractsFile := getEnvString("CONTRACTS_FILE", "")
	contracts, err := LoadContracts(contractsFile)
	if err != nil {
		return nil, err
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Driver:          getEnvString("DB_DRIVER", "sqlite3"),
			Path:            getEnvString("DATABASE_PATH", "x402_market.db"),
			URL:             getEnvString("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
		},
		Server: models.ServerConfig{
			Addr:            getEnvString("SERVER_ADDR", ":8000"),
			APIPrefix:       getEnvString("API_PREFIX", "/api/v1"),
			ProjectName:     getEnvString("PROJECT_NAME", "x402 AI Agent Trading Platform"),
			Version:         getEnvString("VERSION", "0.1.0"),
			GinMode:         getEnvString("GIN_MODE", "release"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
		Chain: models.ChainConfig{
			RPCURL:        getEnvString("MONAD_RPC_URL", ""),
			ChainID:       getEnvInt64("MONAD_CHAIN_ID", 10143),
			ExplorerURL:   getEnvString("MONAD_EXPLORER_URL", "https://testnet.monadexplorer.com"),
			Timeout:       chainTimeout,
			MaxRPS:        getEnvInt("CHAIN_MAX_RPS", 10),
			ContractsFile: contractsFile,
			Contracts:     contracts,
		},
		Ledger: models.LedgerConfig{
			VerifyTimeout:             verifyTimeout,
			PersistChainConfirmations: getEnvBool("LEDGER_PERSIST_CHAIN_CONFIRMATIONS", false),
			DefaultPageSize:           getEnvInt("LEDGER_DEFAULT_PAGE_SIZE", 20),
			MaxPageSize:               getEnvInt("LEDGER_MAX_PAGE_SIZE", 100),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
