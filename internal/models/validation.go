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
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MonetaryScale matches on-chain token precision (NUMERIC(36,18))
	MonetaryScale = 18
	// MonetaryPrecision is the total number of significant digits a monetary value may carry
	MonetaryPrecision = 36
)

var (
	maxMonetary = decimal.New(1, MonetaryPrecision-MonetaryScale)
	maxRating   = decimal.NewFromInt(5)
)

// ValidationError reports a malformed or missing request field
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// RequireString returns the trimmed value or a validation error when it is empty
func RequireString(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", NewValidationError(field, "is required")
	}
	return trimmed, nil
}

// ParseMonetary parses a decimal string into a NUMERIC(36,18) compatible value.
// Fractional digits beyond 18 are rounded; values needing more than 18
// integer digits are rejected.
func ParseMonetary(field, value string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, NewValidationError(field, "is required")
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, NewValidationError(field, fmt.Sprintf("%q is not a decimal number", value))
	}

	d = d.Round(MonetaryScale)
	if d.Abs().GreaterThanOrEqual(maxMonetary) {
		return decimal.Zero, NewValidationError(field, "exceeds 36 digits of precision")
	}
	return d, nil
}

// ParseNonNegativeMonetary is ParseMonetary that also rejects negative values
func ParseNonNegativeMonetary(field, value string) (decimal.Decimal, error) {
	d, err := ParseMonetary(field, value)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, NewValidationError(field, "must not be negative")
	}
	return d, nil
}

// ParseRating parses a 0-5 rating with two fractional digits
func ParseRating(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, NewValidationError("rating", fmt.Sprintf("%q is not a decimal number", value))
	}
	d = d.Round(2)
	if d.IsNegative() || d.GreaterThan(maxRating) {
		return decimal.Zero, NewValidationError("rating", "must be between 0 and 5")
	}
	return d, nil
}
