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

// Queries use '?' placeholders and go through sqlx Rebind before execution.
// Inserts use named parameters bound from the model struct.

const (
	userColumns        = "id, wallet_address, created_at, updated_at"
	agentColumns       = "id, user_id, contract_address, name, description, balance, status, created_at, updated_at"
	serviceColumns     = "id, provider_address, contract_address, name, description, service_type, price, pricing_model, rating, call_count, status, created_at, updated_at"
	transactionColumns = "id, agent_id, tx_hash, transaction_type, token_address, amount, price, status, block_number, created_at"
	paymentColumns     = "id, agent_id, service_id, tx_hash, payment_id, amount, payment_type, status, block_number, metadata, created_at"
)

const (
	// User queries
	queryInsertUser = `
		INSERT INTO users (id, wallet_address, created_at, updated_at)
		VALUES (:id, :wallet_address, :created_at, :updated_at)`

	queryListUsers = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at, id`

	// Agent queries
	queryInsertAgent = `
		INSERT INTO agents (id, user_id, contract_address, name, description, balance, status, created_at, updated_at)
		VALUES (:id, :user_id, :contract_address, :name, :description, :balance, :status, :created_at, :updated_at)`

	queryGetAgentById = `
		SELECT ` + agentColumns + `
		FROM agents
		WHERE id = ?`

	queryListUserAgents = `
		SELECT ` + agentColumns + `
		FROM agents
		WHERE user_id = ?
		ORDER BY created_at, id`

	// Service queries
	queryInsertService = `
		INSERT INTO services (id, provider_address, contract_address, name, description, service_type,
		                      price, pricing_model, rating, call_count, status, created_at, updated_at)
		VALUES (:id, :provider_address, :contract_address, :name, :description, :service_type,
		        :price, :pricing_model, :rating, :call_count, :status, :created_at, :updated_at)`

	queryGetServiceById = `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE id = ?`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (id, agent_id, tx_hash, transaction_type, token_address, amount, price, status, block_number, created_at)
		VALUES (:id, :agent_id, :tx_hash, :transaction_type, :token_address, :amount, :price, :status, :block_number, :created_at)`

	queryGetTransactionByHash = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE tx_hash = ?`

	queryListAgentTransactions = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE agent_id = ?
		ORDER BY created_at, id`

	queryCountAgentTrades = `
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0) AS successful
		FROM transactions
		WHERE agent_id = ?`

	queryUpdateTransactionStatus = `
		UPDATE transactions
		SET status = ?, block_number = COALESCE(?, block_number)
		WHERE tx_hash = ?`

	// Payment queries
	queryInsertPayment = `
		INSERT INTO payments (id, agent_id, service_id, tx_hash, payment_id, amount, payment_type, status, block_number, metadata, created_at)
		VALUES (:id, :agent_id, :service_id, :tx_hash, :payment_id, :amount, :payment_type, :status, :block_number, :metadata, :created_at)`

	queryGetPaymentByPaymentId = `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE payment_id = ?`

	queryGetPaymentByTxHash = `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE tx_hash = ?`

	queryGetPaymentStatus = `
		SELECT status
		FROM payments
		WHERE payment_id = ?`

	queryUpdatePaymentStatus = `
		UPDATE payments
		SET status = ?, block_number = COALESCE(?, block_number)
		WHERE payment_id = ?`
)
