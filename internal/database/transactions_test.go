package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"x402-agent-market-go/internal/models"
	"x402-agent-market-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestCountAgentTrades(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	agent := createTestAgent(t, service, "0xowner", "0xagent")
	other := createTestAgent(t, service, "0xowner", "0xother")

	statuses := []models.TransactionStatus{
		models.TransactionStatusSuccess,
		models.TransactionStatusFailed,
		models.TransactionStatusSuccess,
		models.TransactionStatusPending,
		models.TransactionStatusSuccess,
	}
	for i, status := range statuses {
		_, err := service.InsertTransaction(ctx, store.InsertTransactionParams{
			AgentId:         agent.Id,
			TxHash:          fmt.Sprintf("0xtx%d", i),
			TransactionType: models.TransactionTypeBuy,
			TokenAddress:    "0xtoken",
			Amount:          decimal.NewFromInt(int64(i + 1)),
			Status:          status,
		})
		if err != nil {
			t.Fatalf("InsertTransaction %d failed: %v", i, err)
		}
	}
	_, err := service.InsertTransaction(ctx, store.InsertTransactionParams{
		AgentId:         other.Id,
		TxHash:          "0xothertx",
		TransactionType: models.TransactionTypeSell,
		TokenAddress:    "0xtoken",
		Amount:          decimal.NewFromInt(1),
		Status:          models.TransactionStatusSuccess,
	})
	if err != nil {
		t.Fatalf("InsertTransaction failed: %v", err)
	}

	total, successful, err := service.CountAgentTrades(ctx, agent.Id)
	if err != nil {
		t.Fatalf("CountAgentTrades failed: %v", err)
	}
	if total != 5 || successful != 3 {
		t.Errorf("Expected 5 total and 3 successful, got %d and %d", total, successful)
	}

	total, successful, err = service.CountAgentTrades(ctx, "no-trades")
	if err != nil {
		t.Fatalf("CountAgentTrades failed: %v", err)
	}
	if total != 0 || successful != 0 {
		t.Errorf("Expected zero counts, got %d and %d", total, successful)
	}
}

func TestInsertTransaction(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	agent := createTestAgent(t, service, "0xowner", "0xagent")

	price := decimal.NewNullDecimal(decimal.RequireFromString("1234.500000000000000001"))
	tx, err := service.InsertTransaction(ctx, store.InsertTransactionParams{
		AgentId:         agent.Id,
		TxHash:          "0xabc",
		TransactionType: models.TransactionTypeSell,
		TokenAddress:    "0xtoken",
		Amount:          decimal.RequireFromString("0.5"),
		Price:           price,
	})
	if err != nil {
		t.Fatalf("InsertTransaction failed: %v", err)
	}
	if tx.Status != models.TransactionStatusPending {
		t.Errorf("Expected default status pending, got %s", tx.Status)
	}

	stored, err := service.GetTransactionByHash(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetTransactionByHash failed: %v", err)
	}
	if !stored.Price.Valid || !stored.Price.Decimal.Equal(price.Decimal) {
		t.Errorf("Expected price %s, got %v", price.Decimal, stored.Price)
	}

	// Duplicate hash
	_, err = service.InsertTransaction(ctx, store.InsertTransactionParams{
		AgentId:         agent.Id,
		TxHash:          "0xabc",
		TransactionType: models.TransactionTypeBuy,
		TokenAddress:    "0xtoken",
		Amount:          decimal.NewFromInt(1),
	})
	if !errors.Is(err, store.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Unknown agent
	_, err = service.InsertTransaction(ctx, store.InsertTransactionParams{
		AgentId:         "missing",
		TxHash:          "0xdef",
		TransactionType: models.TransactionTypeBuy,
		TokenAddress:    "0xtoken",
		Amount:          decimal.NewFromInt(1),
	})
	if !errors.Is(err, store.ErrInvalidReference) {
		t.Errorf("Expected ErrInvalidReference, got %v", err)
	}
}

func TestListAgentTransactions_InsertionOrder(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	agent := createTestAgent(t, service, "0xowner", "0xagent")

	for i := 0; i < 3; i++ {
		_, err := service.InsertTransaction(ctx, store.InsertTransactionParams{
			AgentId:         agent.Id,
			TxHash:          fmt.Sprintf("0x%d", i),
			TransactionType: models.TransactionTypeBuy,
			TokenAddress:    "0xtoken",
			Amount:          decimal.NewFromInt(1),
		})
		if err != nil {
			t.Fatalf("InsertTransaction failed: %v", err)
		}
	}

	txs, err := service.ListAgentTransactions(ctx, agent.Id)
	if err != nil {
		t.Fatalf("ListAgentTransactions failed: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("Expected 3 transactions, got %d", len(txs))
	}
	for i, tx := range txs {
		if tx.TxHash != fmt.Sprintf("0x%d", i) {
			t.Errorf("Expected 0x%d at position %d, got %s", i, i, tx.TxHash)
		}
	}
}

func TestUpdateTransactionStatus(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	agent := createTestAgent(t, service, "0xowner", "0xagent")
	_, err := service.InsertTransaction(ctx, store.InsertTransactionParams{
		AgentId:         agent.Id,
		TxHash:          "0xabc",
		TransactionType: models.TransactionTypeBuy,
		TokenAddress:    "0xtoken",
		Amount:          decimal.NewFromInt(1),
	})
	if err != nil {
		t.Fatalf("InsertTransaction failed: %v", err)
	}

	if err := service.UpdateTransactionStatus(ctx, "0xabc", models.TransactionStatusSuccess, int64Ptr(42)); err != nil {
		t.Fatalf("UpdateTransactionStatus failed: %v", err)
	}
	tx, err := service.GetTransactionByHash(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetTransactionByHash failed: %v", err)
	}
	if tx.Status != models.TransactionStatusSuccess || tx.BlockNumber == nil || *tx.BlockNumber != 42 {
		t.Errorf("Unexpected transaction after update: status=%s block=%v", tx.Status, tx.BlockNumber)
	}

	err = service.UpdateTransactionStatus(ctx, "0xmissing", models.TransactionStatusFailed, nil)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
