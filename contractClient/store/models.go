// Package store contains GORM-backed SQLite models used by the contract client.
//
// Database Structure (database file: ticketctl.db):
//
//	deployed_contracts
//	transaction_records
package store

import (
	"gorm.io/gorm"
)

// DeployedContract is one address book entry: where a named contract lives
// on one chain.
type DeployedContract struct {
	gorm.Model
	Contract string `gorm:"uniqueIndex:idx_contract_chain;not null"` // Binding name, e.g. "RegisterContract"
	ChainID  uint64 `gorm:"uniqueIndex:idx_contract_chain;not null"`
	Address  string `gorm:"not null"` // Checksummed hex address
	TxHash   string // Deployment transaction hash, empty when registered by hand
}

// TransactionRecord journals a submitted write and its latest lifecycle state.
type TransactionRecord struct {
	gorm.Model
	TxHash       string `gorm:"uniqueIndex;not null"`
	From         string `gorm:"index"`
	To           string // Empty for contract creation
	Nonce        uint64
	State        string `gorm:"index"` // "submitted", "receipted", "reverted", "timed_out"
	GasUsed      uint64
	BlockNumber  uint64
	RevertReason string `gorm:"type:text"`
}
