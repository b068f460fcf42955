package models

import "github.com/shopspring/decimal"

// ChainTransaction is a transaction as reported by the chain node (tx + receipt)
type ChainTransaction struct {
	Hash        string          `json:"hash"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	Value       decimal.Decimal `json:"value"`
	Status      uint64          `json:"status"`
	BlockNumber uint64          `json:"block_number"`
	GasUsed     uint64          `json:"gas_used"`
	ExplorerURL string          `json:"explorer_url,omitempty"`
}

// Confirmed reports whether the receipt status is 1 (success)
func (t *ChainTransaction) Confirmed() bool {
	return t.Status == 1
}
