package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Chain    ChainConfig
	Ledger   LedgerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // "sqlite3" or "postgres"
	Path            string // SQLite file path
	URL             string // PostgreSQL connection string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr            string
	APIPrefix       string
	ProjectName     string
	Version         string
	GinMode         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ChainConfig holds the read-only chain RPC settings
type ChainConfig struct {
	RPCURL        string
	ChainID       int64
	ExplorerURL   string
	Timeout       time.Duration
	MaxRPS        int
	ContractsFile string
	Contracts     ContractsConfig
}

// ContractsConfig lists deployed contract addresses, loaded from YAML and overridable by env
type ContractsConfig struct {
	Agent       string `yaml:"agent"`
	Service     string `yaml:"service"`
	Market      string `yaml:"market"`
	X402Payment string `yaml:"x402_payment"`
}

// LedgerConfig controls payment verification and listing behavior
type LedgerConfig struct {
	VerifyTimeout             time.Duration
	PersistChainConfirmations bool
	DefaultPageSize           int
	MaxPageSize               int
}
