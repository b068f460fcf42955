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
	"context"
	"errors"
	"fmt"

	"x402-agent-market-go/internal/store"

	"go.uber.org/zap"
)

// naturalKey identifies a row by a business-meaningful unique column
type naturalKey struct {
	table   string
	columns string
	column  string
	value   string
}

func (k naturalKey) selectQuery() string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", k.columns, k.table, k.column)
}

func findByUniqueField[T any](ctx context.Context, s *Service, key naturalKey) (*T, error) {
	var row T
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(key.selectQuery()), key.value); err != nil {
		return nil, classifyError(err)
	}
	return &row, nil
}

// upsertByUniqueField returns the row holding key unchanged when it exists,
// otherwise runs insert. A concurrent insert that wins the unique constraint
// makes ours fail with ErrDuplicateKey, in which case the winner's row is
// re-fetched and returned. The bool reports whether this call created the row.
func upsertByUniqueField[T any](
	ctx context.Context,
	s *Service,
	key naturalKey,
	insert func(ctx context.Context) (*T, error),
) (*T, bool, error) {
	existing, err := findByUniqueField[T](ctx, s, key)
	if err == nil {
		zap.L().Debug("Found existing row by natural key",
			zap.String("table", key.table), zap.String(key.column, key.value))
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("unable to look up %s by %s: %w", key.table, key.column, err)
	}

	created, insertErr := insert(ctx)
	if insertErr == nil {
		return created, true, nil
	}
	if !errors.Is(insertErr, store.ErrDuplicateKey) {
		return nil, false, insertErr
	}

	zap.L().Info("Concurrent insert won the unique constraint, re-fetching",
		zap.String("table", key.table), zap.String(key.column, key.value))

	existing, err = findByUniqueField[T](ctx, s, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// the duplicate was on a different unique column
			return nil, false, insertErr
		}
		return nil, false, fmt.Errorf("unable to re-fetch %s by %s: %w", key.table, key.column, err)
	}
	return existing, false, nil
}
