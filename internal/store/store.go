package store

import (
	"context"
	"errors"

	"x402-agent-market-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateKey     = errors.New("already exists")
	ErrInvalidReference = errors.New("referenced entity does not exist")
)

// ServiceOrder selects between the two service listings.
type ServiceOrder int

const (
	// OrderByInsertion is used by the internal catalog listing
	OrderByInsertion ServiceOrder = iota
	// OrderByRatingDesc is used by the public market listing
	OrderByRatingDesc
)

// CreateAgentParams contains the parameters for creating an agent.
type CreateAgentParams struct {
	UserId          string
	ContractAddress string
	Name            string
	Description     *string
}

// CreateServiceParams contains the parameters for creating a service.
type CreateServiceParams struct {
	ProviderAddress string
	ContractAddress string
	Name            string
	Description     *string
	ServiceType     models.ServiceType
	Price           decimal.Decimal
	PricingModel    models.PricingModel
}

// InsertTransactionParams captures an agent trade as reported by the agent runtime.
type InsertTransactionParams struct {
	AgentId         string
	TxHash          string
	TransactionType models.TransactionType
	TokenAddress    string
	Amount          decimal.Decimal
	Price           decimal.NullDecimal
	Status          models.TransactionStatus
	BlockNumber     *int64
}

// InsertPaymentParams captures an x402 payment event. AgentId and ServiceId are optional.
type InsertPaymentParams struct {
	PaymentId   string
	TxHash      string
	Amount      decimal.Decimal
	PaymentType models.PaymentType
	AgentId     *string
	ServiceId   *string
	Metadata    models.Metadata
}

// ServiceQuery filters and pages the service collection.
type ServiceQuery struct {
	ServiceType models.ServiceType // empty means any
	Status      models.ServiceStatus
	OrderBy     ServiceOrder
	Limit       int
	Offset      int
}

// PaymentQuery filters and pages the payment collection, newest first.
type PaymentQuery struct {
	AgentId   string
	ServiceId string
	Limit     int
	Offset    int
}

// EntityStore defines the contract every storage backend (SQLite, PostgreSQL) must satisfy.
//
// Upsert* methods are idempotent on the entity's natural key: they return the
// existing row unchanged when present, and report whether a row was created.
type EntityStore interface {
	// --- Users ---
	UpsertUser(ctx context.Context, walletAddress string) (*models.User, bool, error)
	GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	// --- Agents ---
	UpsertAgent(ctx context.Context, params CreateAgentParams) (*models.Agent, bool, error)
	GetAgent(ctx context.Context, agentId string) (*models.Agent, error)
	ListUserAgents(ctx context.Context, userId string) ([]models.Agent, error)

	// --- Services ---
	UpsertService(ctx context.Context, params CreateServiceParams) (*models.Service, bool, error)
	GetService(ctx context.Context, serviceId string) (*models.Service, error)
	ListServices(ctx context.Context, query ServiceQuery) ([]models.Service, error)

	// --- Transactions ---
	InsertTransaction(ctx context.Context, params InsertTransactionParams) (*models.Transaction, error)
	GetTransactionByHash(ctx context.Context, txHash string) (*models.Transaction, error)
	ListAgentTransactions(ctx context.Context, agentId string) ([]models.Transaction, error)
	CountAgentTrades(ctx context.Context, agentId string) (total int64, successful int64, err error)
	UpdateTransactionStatus(ctx context.Context, txHash string, status models.TransactionStatus, blockNumber *int64) error

	// --- Payments ---
	InsertPayment(ctx context.Context, params InsertPaymentParams) (*models.Payment, error)
	GetPaymentByPaymentId(ctx context.Context, paymentId string) (*models.Payment, error)
	GetPaymentByTxHash(ctx context.Context, txHash string) (*models.Payment, error)
	ListPayments(ctx context.Context, query PaymentQuery) ([]models.Payment, error)
	// UpdatePaymentStatus overwrites status (and block number when non-nil) and
	// returns the status the row held before. ErrNotFound if no such payment.
	UpdatePaymentStatus(ctx context.Context, paymentId string, status models.PaymentStatus, blockNumber *int64) (models.PaymentStatus, error)

	// --- Lifecycle ---
	Ping(ctx context.Context) error
	Close()
}
