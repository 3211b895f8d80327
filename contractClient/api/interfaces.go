package api

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/store"
)

// AddressSource lists the deployments the server reports.
type AddressSource interface {
	Contract() string
	Entries() map[uint64]common.Address
}

// TxSource reads journaled transactions. *db.TxJournal implements it.
type TxSource interface {
	Get(ctx context.Context, hash string) (*store.TransactionRecord, error)
	List(ctx context.Context, state string) ([]store.TransactionRecord, error)
}
