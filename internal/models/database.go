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

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// User is the owner of agents, keyed by wallet address
type User struct {
	Id            string    `db:"id"`
	WalletAddress string    `db:"wallet_address"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Agent is an automated trading bot owned by a user
type Agent struct {
	Id              string          `db:"id"`
	UserId          string          `db:"user_id"`
	ContractAddress string          `db:"contract_address"`
	Name            string          `db:"name"`
	Description     *string         `db:"description"`
	Balance         decimal.Decimal `db:"balance"`
	Status          AgentStatus     `db:"status"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// Service is a third-party capability agents can pay for
type Service struct {
	Id              string          `db:"id"`
	ProviderAddress string          `db:"provider_address"`
	ContractAddress string          `db:"contract_address"`
	Name            string          `db:"name"`
	Description     *string         `db:"description"`
	ServiceType     ServiceType     `db:"service_type"`
	Price           decimal.Decimal `db:"price"`
	PricingModel    PricingModel    `db:"pricing_model"`
	Rating          decimal.Decimal `db:"rating"`
	CallCount       int64           `db:"call_count"`
	Status          ServiceStatus   `db:"status"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// Transaction is an on-chain trade executed by an agent (append-only, status mutable)
type Transaction struct {
	Id              string              `db:"id"`
	AgentId         string              `db:"agent_id"`
	TxHash          string              `db:"tx_hash"`
	TransactionType TransactionType     `db:"transaction_type"`
	TokenAddress    string              `db:"token_address"`
	Amount          decimal.Decimal     `db:"amount"`
	Price           decimal.NullDecimal `db:"price"`
	Status          TransactionStatus   `db:"status"`
	BlockNumber     *int64              `db:"block_number"`
	CreatedAt       time.Time           `db:"created_at"`
}

// Payment correlates an x402 payment event to a local ledger row
type Payment struct {
	Id          string          `db:"id"`
	AgentId     *string         `db:"agent_id"`
	ServiceId   *string         `db:"service_id"`
	TxHash      string          `db:"tx_hash"`
	PaymentId   string          `db:"payment_id"`
	Amount      decimal.Decimal `db:"amount"`
	PaymentType PaymentType     `db:"payment_type"`
	Status      PaymentStatus   `db:"status"`
	BlockNumber *int64          `db:"block_number"`
	Metadata    Metadata        `db:"metadata"`
	CreatedAt   time.Time       `db:"created_at"`
}

// Metadata is an opaque JSON object stored alongside a payment
type Metadata map[string]any

// Value stores metadata as JSON text so both SQLite TEXT and PostgreSQL JSONB accept it
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal metadata: %w", err)
	}
	return string(b), nil
}

func (m *Metadata) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata type %T", src)
	}
	if len(raw) == 0 {
		*m = nil
		return nil
	}
	decoded := Metadata{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("unable to unmarshal metadata: %w", err)
	}
	*m = decoded
	return nil
}
