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

import "strings"

type AgentStatus string

const (
	AgentStatusActive              AgentStatus = "active"
	AgentStatusPaused              AgentStatus = "paused"
	AgentStatusInsufficientBalance AgentStatus = "insufficient_balance"
)

func (s AgentStatus) Valid() bool {
	switch s {
	case AgentStatusActive, AgentStatusPaused, AgentStatusInsufficientBalance:
		return true
	}
	return false
}

type ServiceType string

const (
	ServiceTypeStrategy    ServiceType = "strategy"
	ServiceTypeRiskControl ServiceType = "risk_control"
	ServiceTypeDataSource  ServiceType = "data_source"
	ServiceTypeOther       ServiceType = "other"
)

func (t ServiceType) Valid() bool {
	switch t {
	case ServiceTypeStrategy, ServiceTypeRiskControl, ServiceTypeDataSource, ServiceTypeOther:
		return true
	}
	return false
}

type PricingModel string

const (
	PricingModelPayPerUse    PricingModel = "pay_per_use"
	PricingModelSubscription PricingModel = "subscription"
)

func (p PricingModel) Valid() bool {
	return p == PricingModelPayPerUse || p == PricingModelSubscription
}

type ServiceStatus string

const (
	ServiceStatusActive   ServiceStatus = "active"
	ServiceStatusPaused   ServiceStatus = "paused"
	ServiceStatusDelisted ServiceStatus = "delisted"
)

func (s ServiceStatus) Valid() bool {
	switch s {
	case ServiceStatusActive, ServiceStatusPaused, ServiceStatusDelisted:
		return true
	}
	return false
}

type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "buy"
	TransactionTypeSell TransactionType = "sell"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeBuy || t == TransactionTypeSell
}

type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusSuccess, TransactionStatusFailed:
		return true
	}
	return false
}

type PaymentType string

const (
	PaymentTypeServiceCall  PaymentType = "service_call"
	PaymentTypeSubscription PaymentType = "subscription"
)

func (t PaymentType) Valid() bool {
	return t == PaymentTypeServiceCall || t == PaymentTypeSubscription
}

// PaymentStatus moves pending -> confirmed|failed. Terminal states are not
// locked: a chain reorg may legitimately rewrite them.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusConfirmed, PaymentStatusFailed:
		return true
	}
	return false
}

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusConfirmed || s == PaymentStatusFailed
}

// normalizeEnum trims surrounding whitespace only; enum values are case-sensitive
func normalizeEnum(value string) string {
	return strings.TrimSpace(value)
}

func ParseAgentStatus(value string) (AgentStatus, error) {
	s := AgentStatus(normalizeEnum(value))
	if !s.Valid() {
		return "", NewValidationError("status", "must be one of active, paused, insufficient_balance")
	}
	return s, nil
}

func ParseServiceType(value string) (ServiceType, error) {
	t := ServiceType(normalizeEnum(value))
	if !t.Valid() {
		return "", NewValidationError("service_type", "must be one of strategy, risk_control, data_source, other")
	}
	return t, nil
}

func ParsePricingModel(value string) (PricingModel, error) {
	p := PricingModel(normalizeEnum(value))
	if !p.Valid() {
		return "", NewValidationError("pricing_model", "must be one of pay_per_use, subscription")
	}
	return p, nil
}

func ParseServiceStatus(value string) (ServiceStatus, error) {
	s := ServiceStatus(normalizeEnum(value))
	if !s.Valid() {
		return "", NewValidationError("status", "must be one of active, paused, delisted")
	}
	return s, nil
}

func ParseTransactionType(value string) (TransactionType, error) {
	t := TransactionType(normalizeEnum(value))
	if !t.Valid() {
		return "", NewValidationError("transaction_type", "must be one of buy, sell")
	}
	return t, nil
}

func ParseTransactionStatus(value string) (TransactionStatus, error) {
	s := TransactionStatus(normalizeEnum(value))
	if !s.Valid() {
		return "", NewValidationError("status", "must be one of pending, success, failed")
	}
	return s, nil
}

func ParsePaymentType(value string) (PaymentType, error) {
	t := PaymentType(normalizeEnum(value))
	if !t.Valid() {
		return "", NewValidationError("payment_type", "must be one of service_call, subscription")
	}
	return t, nil
}

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	s := PaymentStatus(normalizeEnum(value))
	if !s.Valid() {
		return "", NewValidationError("status", "must be one of pending, confirmed, failed")
	}
	return s, nil
}
