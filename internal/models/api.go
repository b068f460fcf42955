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
	"time"

	"github.com/shopspring/decimal"
)

// UserResponse is the public view of a user
type UserResponse struct {
	Id            string    `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		Id:            u.Id,
		WalletAddress: u.WalletAddress,
		CreatedAt:     u.CreatedAt,
	}
}

// AgentSummary is the compact agent entry listed under a user
type AgentSummary struct {
	Id              string `json:"id"`
	Name            string `json:"name"`
	ContractAddress string `json:"contract_address"`
}

type AgentResponse struct {
	Id              string          `json:"id"`
	UserId          string          `json:"user_id"`
	ContractAddress string          `json:"contract_address"`
	Name            string          `json:"name"`
	Description     *string         `json:"description"`
	Balance         decimal.Decimal `json:"balance"`
	Status          AgentStatus     `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

func NewAgentResponse(a *Agent) AgentResponse {
	return AgentResponse{
		Id:              a.Id,
		UserId:          a.UserId,
		ContractAddress: a.ContractAddress,
		Name:            a.Name,
		Description:     a.Description,
		Balance:         a.Balance,
		Status:          a.Status,
		CreatedAt:       a.CreatedAt,
	}
}

// AgentStats is recomputed from the agent's transactions on every request
type AgentStats struct {
	TotalTrades      int64           `json:"total_trades"`
	SuccessfulTrades int64           `json:"successful_trades"`
	Balance          decimal.Decimal `json:"balance"`
	Status           AgentStatus     `json:"status"`
}

type TransactionResponse struct {
	Id              string              `json:"id"`
	TxHash          string              `json:"tx_hash"`
	TransactionType TransactionType     `json:"transaction_type"`
	TokenAddress    string              `json:"token_address"`
	Amount          decimal.Decimal     `json:"amount"`
	Price           decimal.NullDecimal `json:"price"`
	Status          TransactionStatus   `json:"status"`
	BlockNumber     *int64              `json:"block_number"`
	CreatedAt       time.Time           `json:"created_at"`
}

func NewTransactionResponse(t *Transaction) TransactionResponse {
	return TransactionResponse{
		Id:              t.Id,
		TxHash:          t.TxHash,
		TransactionType: t.TransactionType,
		TokenAddress:    t.TokenAddress,
		Amount:          t.Amount,
		Price:           t.Price,
		Status:          t.Status,
		BlockNumber:     t.BlockNumber,
		CreatedAt:       t.CreatedAt,
	}
}

// ServiceResponse is the catalog view of a service
type ServiceResponse struct {
	Id              string          `json:"id"`
	ProviderAddress string          `json:"provider_address"`
	ContractAddress string          `json:"contract_address"`
	Name            string          `json:"name"`
	Description     *string         `json:"description"`
	ServiceType     ServiceType     `json:"service_type"`
	Price           decimal.Decimal `json:"price"`
	PricingModel    PricingModel    `json:"pricing_model"`
	Rating          decimal.Decimal `json:"rating"`
	CallCount       int64           `json:"call_count"`
	Status          ServiceStatus   `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

func NewServiceResponse(s *Service) ServiceResponse {
	return ServiceResponse{
		Id:              s.Id,
		ProviderAddress: s.ProviderAddress,
		ContractAddress: s.ContractAddress,
		Name:            s.Name,
		Description:     s.Description,
		ServiceType:     s.ServiceType,
		Price:           s.Price,
		PricingModel:    s.PricingModel,
		Rating:          s.Rating,
		CallCount:       s.CallCount,
		Status:          s.Status,
		CreatedAt:       s.CreatedAt,
	}
}

// MarketServiceResponse is the market-facing view; it omits lifecycle fields
type MarketServiceResponse struct {
	Id              string          `json:"id"`
	ContractAddress string          `json:"contract_address"`
	Name            string          `json:"name"`
	Description     *string         `json:"description"`
	ServiceType     ServiceType     `json:"service_type"`
	Price           decimal.Decimal `json:"price"`
	PricingModel    PricingModel    `json:"pricing_model"`
	Rating          decimal.Decimal `json:"rating"`
	CallCount       int64           `json:"call_count"`
	ProviderAddress string          `json:"provider_address"`
}

func NewMarketServiceResponse(s *Service) MarketServiceResponse {
	return MarketServiceResponse{
		Id:              s.Id,
		ContractAddress: s.ContractAddress,
		Name:            s.Name,
		Description:     s.Description,
		ServiceType:     s.ServiceType,
		Price:           s.Price,
		PricingModel:    s.PricingModel,
		Rating:          s.Rating,
		CallCount:       s.CallCount,
		ProviderAddress: s.ProviderAddress,
	}
}

type PaymentResponse struct {
	Id          string          `json:"id"`
	PaymentId   string          `json:"payment_id"`
	TxHash      string          `json:"tx_hash"`
	AgentId     *string         `json:"agent_id"`
	ServiceId   *string         `json:"service_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentType PaymentType     `json:"payment_type"`
	Status      PaymentStatus   `json:"status"`
	BlockNumber *int64          `json:"block_number"`
	Metadata    Metadata        `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func NewPaymentResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		Id:          p.Id,
		PaymentId:   p.PaymentId,
		TxHash:      p.TxHash,
		AgentId:     p.AgentId,
		ServiceId:   p.ServiceId,
		Amount:      p.Amount,
		PaymentType: p.PaymentType,
		Status:      p.Status,
		BlockNumber: p.BlockNumber,
		Metadata:    p.Metadata,
		CreatedAt:   p.CreatedAt,
	}
}

type VerifyPaymentResponse struct {
	PaymentId string `json:"payment_id"`
	Verified  bool   `json:"verified"`
}

type ChainBalanceResponse struct {
	Address string          `json:"address"`
	Token   string          `json:"token,omitempty"`
	Balance decimal.Decimal `json:"balance"`
}
