package common

import (
	"context"
	"log"
	"strings"
	"time"

	"x402-agent-market-go/internal/api"
	"x402-agent-market-go/internal/chain"
	"x402-agent-market-go/internal/database"
	"x402-agent-market-go/internal/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const chainCheckTimeout = 5 * time.Second

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService   *database.Service
	ChainClient *chain.Client
	Ledger      *api.LedgerService
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices opens the store and, when an RPC URL is configured, the
// chain client. A node that cannot be reached at startup is only logged;
// verification degrades to local state until it recovers.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Chain.RPCURL == "" {
		zap.L().Warn("MONAD_RPC_URL not set, payment verification will use local state only")
		return &Services{
			DbService: dbService,
			Ledger:    api.NewLedgerService(dbService, nil, cfg.Ledger),
		}, nil
	}

	chainClient, err := chain.NewClient(ctx, cfg.Chain)
	if err != nil {
		dbService.Close()
		return nil, err
	}

	checkCtx, cancel := context.WithTimeout(ctx, chainCheckTimeout)
	defer cancel()
	if err := chainClient.CheckChainId(checkCtx); err != nil {
		zap.L().Warn("Chain node check failed", zap.Error(err))
	}

	return &Services{
		DbService:   dbService,
		ChainClient: chainClient,
		Ledger:      api.NewLedgerService(dbService, chainClient, cfg.Ledger),
	}, nil
}

// InitializeDatabaseOnly initializes just the database service without the chain client
// Useful for read-only operations like stats reports
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

func (cs *Services) Close() {
	if cs.ChainClient != nil {
		cs.ChainClient.Close()
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
