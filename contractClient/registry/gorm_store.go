package registry

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm/clause"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/db"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/store"
)

// GormStore keeps address book entries in the deployed_contracts table.
type GormStore struct {
	db *db.DB
}

// NewGormStore creates a store over an opened, migrated database.
func NewGormStore(database *db.DB) *GormStore {
	return &GormStore{db: database}
}

// Save upserts the entry for (contract, chain id).
func (s *GormStore) Save(contract string, e Entry) error {
	row := store.DeployedContract{
		Contract: contract,
		ChainID:  e.ChainID,
		Address:  e.Address.Hex(),
	}
	if e.TxHash != (common.Hash{}) {
		row.TxHash = e.TxHash.Hex()
	}

	err := s.db.Client().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "contract"}, {Name: "chain_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"address", "tx_hash", "updated_at"}),
	}).Create(&row).Error
	return errors.Wrapf(err, "failed to save %s address for chain %d", contract, e.ChainID)
}

// Load returns every saved entry of contract.
func (s *GormStore) Load(contract string) ([]Entry, error) {
	var rows []store.DeployedContract
	if err := s.db.Client().Where("contract = ?", contract).Find(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to load %s addresses", contract)
	}

	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		e := Entry{ChainID: r.ChainID, Address: common.HexToAddress(r.Address)}
		if r.TxHash != "" {
			e.TxHash = common.HexToHash(r.TxHash)
		}
		out = append(out, e)
	}
	return out, nil
}

// NewPersistentBook opens the address book of contract backed by database.
func NewPersistentBook(contract string, database *db.DB, logger zerolog.Logger) (*AddressBook, error) {
	return NewBackedAddressBook(contract, NewGormStore(database), logger)
}
