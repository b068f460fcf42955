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
	"fmt"
	"net/url"
	"strings"

	"x402-agent-market-go/internal/models"
)

// dialect holds everything that differs between the SQLite and PostgreSQL backends.
// Queries themselves are written once with '?' placeholders and rebound by sqlx.
type dialect struct {
	driver      string
	schema      []string
	ratingOrder string
	dsn         func(cfg models.DatabaseConfig) (string, error)
	describe    func(cfg models.DatabaseConfig) string
}

func dialectFor(driver string) (dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", DriverSQLite:
		return sqliteDialect, nil
	case "postgresql", DriverPostgres:
		return postgresDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// SQLite stores decimals as TEXT: NUMERIC affinity would coerce them to REAL
// and lose precision beyond 15 significant digits.
var sqliteDialect = dialect{
	driver:      DriverSQLite,
	ratingOrder: "CAST(rating AS REAL) DESC",
	dsn: func(cfg models.DatabaseConfig) (string, error) {
		if cfg.Path == "" {
			return "", fmt.Errorf("database path is required for sqlite")
		}
		return cfg.Path + "?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_foreign_keys=on", nil
	},
	describe: func(cfg models.DatabaseConfig) string {
		return cfg.Path
	},
	schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			wallet_address TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS agents (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			contract_address TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT,
			balance TEXT NOT NULL DEFAULT '0',
			status TEXT NOT NULL DEFAULT 'active'
				CHECK (status IN ('active', 'paused', 'insufficient_balance')),
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_agents_user_id ON agents(user_id)`,

		`CREATE TABLE IF NOT EXISTS services (
			id TEXT PRIMARY KEY,
			provider_address TEXT NOT NULL,
			contract_address TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT,
			service_type TEXT NOT NULL
				CHECK (service_type IN ('strategy', 'risk_control', 'data_source', 'other')),
			price TEXT NOT NULL,
			pricing_model TEXT NOT NULL DEFAULT 'pay_per_use'
				CHECK (pricing_model IN ('pay_per_use', 'subscription')),
			rating TEXT NOT NULL DEFAULT '0',
			call_count INTEGER NOT NULL DEFAULT 0 CHECK (call_count >= 0),
			status TEXT NOT NULL DEFAULT 'active'
				CHECK (status IN ('active', 'paused', 'delisted')),
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_services_status_type ON services(status, service_type)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL REFERENCES agents(id),
			tx_hash TEXT NOT NULL UNIQUE,
			transaction_type TEXT NOT NULL CHECK (transaction_type IN ('buy', 'sell')),
			token_address TEXT NOT NULL,
			amount TEXT NOT NULL,
			price TEXT,
			status TEXT NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'success', 'failed')),
			block_number INTEGER,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_agent_id ON transactions(agent_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			agent_id TEXT REFERENCES agents(id),
			service_id TEXT REFERENCES services(id),
			tx_hash TEXT NOT NULL UNIQUE,
			payment_id TEXT NOT NULL UNIQUE,
			amount TEXT NOT NULL,
			payment_type TEXT NOT NULL CHECK (payment_type IN ('service_call', 'subscription')),
			status TEXT NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'confirmed', 'failed')),
			block_number INTEGER,
			metadata TEXT,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_payments_agent_id ON payments(agent_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_service_id ON payments(service_id, created_at)`,
	},
}

var postgresDialect = dialect{
	driver:      DriverPostgres,
	ratingOrder: "rating DESC",
	dsn: func(cfg models.DatabaseConfig) (string, error) {
		if cfg.URL == "" {
			return "", fmt.Errorf("database url is required for postgres")
		}
		return cfg.URL, nil
	},
	describe: func(cfg models.DatabaseConfig) string {
		u, err := url.Parse(cfg.URL)
		if err != nil {
			return "postgres"
		}
		return u.Redacted()
	},
	schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			wallet_address VARCHAR(255) NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS agents (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id),
			contract_address VARCHAR(255) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			balance NUMERIC(36, 18) NOT NULL DEFAULT 0,
			status VARCHAR(32) NOT NULL DEFAULT 'active'
				CHECK (status IN ('active', 'paused', 'insufficient_balance')),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_agents_user_id ON agents(user_id)`,

		`CREATE TABLE IF NOT EXISTS services (
			id VARCHAR(36) PRIMARY KEY,
			provider_address VARCHAR(255) NOT NULL,
			contract_address VARCHAR(255) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			service_type VARCHAR(32) NOT NULL
				CHECK (service_type IN ('strategy', 'risk_control', 'data_source', 'other')),
			price NUMERIC(36, 18) NOT NULL,
			pricing_model VARCHAR(32) NOT NULL DEFAULT 'pay_per_use'
				CHECK (pricing_model IN ('pay_per_use', 'subscription')),
			rating NUMERIC(3, 2) NOT NULL DEFAULT 0,
			call_count BIGINT NOT NULL DEFAULT 0 CHECK (call_count >= 0),
			status VARCHAR(32) NOT NULL DEFAULT 'active'
				CHECK (status IN ('active', 'paused', 'delisted')),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_services_status_type ON services(status, service_type)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id VARCHAR(36) PRIMARY KEY,
			agent_id VARCHAR(36) NOT NULL REFERENCES agents(id),
			tx_hash VARCHAR(255) NOT NULL UNIQUE,
			transaction_type VARCHAR(16) NOT NULL CHECK (transaction_type IN ('buy', 'sell')),
			token_address VARCHAR(255) NOT NULL,
			amount NUMERIC(36, 18) NOT NULL,
			price NUMERIC(36, 18),
			status VARCHAR(16) NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'success', 'failed')),
			block_number BIGINT,
			created_at TIMESTAMPTZ NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_agent_id ON transactions(agent_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS payments (
			id VARCHAR(36) PRIMARY KEY,
			agent_id VARCHAR(36) REFERENCES agents(id),
			service_id VARCHAR(36) REFERENCES services(id),
			tx_hash VARCHAR(255) NOT NULL UNIQUE,
			payment_id VARCHAR(255) NOT NULL UNIQUE,
			amount NUMERIC(36, 18) NOT NULL,
			payment_type VARCHAR(32) NOT NULL CHECK (payment_type IN ('service_call', 'subscription')),
			status VARCHAR(16) NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'confirmed', 'failed')),
			block_number BIGINT,
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_payments_agent_id ON payments(agent_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_service_id ON payments(service_id, created_at)`,
	},
}
