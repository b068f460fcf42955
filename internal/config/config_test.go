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
	"os"
	"path/filepath"
	"testing"
	"time"
)

var configEnv = []string{
	"DB_DRIVER", "DATABASE_PATH", "DATABASE_URL", "DB_PING_TIMEOUT", "SERVER_ADDR",
	"MONAD_RPC_URL", "MONAD_CHAIN_ID", "CHAIN_MAX_RPS", "CONTRACTS_FILE",
	"LEDGER_VERIFY_TIMEOUT", "LEDGER_PERSIST_CHAIN_CONFIRMATIONS", "LEDGER_MAX_PAGE_SIZE",
	"AGENT_CONTRACT_ADDRESS", "SERVICE_CONTRACT_ADDRESS", "MARKET_CONTRACT_ADDRESS", "X402_PAYMENT_CONTRACT",
}

// clearEnv blanks every variable Load reads so a developer's .env cannot leak into the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("Expected sqlite3 driver, got %q", cfg.Database.Driver)
	}
	if cfg.Database.Path != "x402_market.db" {
		t.Errorf("Unexpected database path %q", cfg.Database.Path)
	}
	if cfg.Server.APIPrefix != "/api/v1" {
		t.Errorf("Unexpected API prefix %q", cfg.Server.APIPrefix)
	}
	if cfg.Chain.RPCURL != "" {
		t.Errorf("Expected chain to be disabled by default, got %q", cfg.Chain.RPCURL)
	}
	if cfg.Chain.ChainID != 10143 {
		t.Errorf("Expected chain id 10143, got %d", cfg.Chain.ChainID)
	}
	if cfg.Ledger.VerifyTimeout != 5*time.Second {
		t.Errorf("Expected 5s verify timeout, got %v", cfg.Ledger.VerifyTimeout)
	}
	if cfg.Ledger.PersistChainConfirmations {
		t.Error("Chain confirmations must not be persisted by default")
	}
	if cfg.Ledger.DefaultPageSize != 20 || cfg.Ledger.MaxPageSize != 100 {
		t.Errorf("Unexpected page sizes %d/%d", cfg.Ledger.DefaultPageSize, cfg.Ledger.MaxPageSize)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x402")
	t.Setenv("MONAD_RPC_URL", "https://rpc.example")
	t.Setenv("MONAD_CHAIN_ID", "143")
	t.Setenv("LEDGER_VERIFY_TIMEOUT", "750ms")
	t.Setenv("LEDGER_PERSIST_CHAIN_CONFIRMATIONS", "true")
	t.Setenv("LEDGER_MAX_PAGE_SIZE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Driver != "postgres" || cfg.Database.URL != "postgres://u:p@db:5432/x402" {
		t.Errorf("Database overrides not applied: %+v", cfg.Database)
	}
	if cfg.Chain.RPCURL != "https://rpc.example" || cfg.Chain.ChainID != 143 {
		t.Errorf("Chain overrides not applied: %+v", cfg.Chain)
	}
	if cfg.Ledger.VerifyTimeout != 750*time.Millisecond {
		t.Errorf("Expected 750ms verify timeout, got %v", cfg.Ledger.VerifyTimeout)
	}
	if !cfg.Ledger.PersistChainConfirmations {
		t.Error("Expected chain confirmations to be persisted")
	}
	// unparsable ints fall back to the default
	if cfg.Ledger.MaxPageSize != 100 {
		t.Errorf("Expected default max page size, got %d", cfg.Ledger.MaxPageSize)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PING_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for invalid duration")
	}
}

func TestLoadContracts_FileAndEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "contracts.yaml")
	content := `contracts:
  agent: "0x1111111111111111111111111111111111111111"
  service: "0x2222222222222222222222222222222222222222"
  x402_payment: "0x3333333333333333333333333333333333333333"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write contracts file: %v", err)
	}
	t.Setenv("X402_PAYMENT_CONTRACT", "0x4444444444444444444444444444444444444444")

	contracts, err := LoadContracts(path)
	if err != nil {
		t.Fatalf("LoadContracts failed: %v", err)
	}

	if contracts.Agent != "0x1111111111111111111111111111111111111111" {
		t.Errorf("Unexpected agent contract %q", contracts.Agent)
	}
	if contracts.Service != "0x2222222222222222222222222222222222222222" {
		t.Errorf("Unexpected service contract %q", contracts.Service)
	}
	if contracts.Market != "" {
		t.Errorf("Expected no market contract, got %q", contracts.Market)
	}
	if contracts.X402Payment != "0x4444444444444444444444444444444444444444" {
		t.Errorf("Env override not applied, got %q", contracts.X402Payment)
	}
}

func TestLoadContracts_Errors(t *testing.T) {
	clearEnv(t)

	if _, err := LoadContracts(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("contracts: [unclosed"), 0o600); err != nil {
		t.Fatalf("Failed to write contracts file: %v", err)
	}
	if _, err := LoadContracts(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}
