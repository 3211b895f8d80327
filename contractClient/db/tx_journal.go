package db

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm/clause"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/store"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/txmanager"
)

// TxJournal records every write transition in transaction_records. Register
// it on a txmanager.Manager with txmanager.WithListener(journal.Listener()).
type TxJournal struct {
	db     *DB
	logger zerolog.Logger
}

// NewTxJournal creates a journal over db.
func NewTxJournal(db *DB, logger zerolog.Logger) *TxJournal {
	return &TxJournal{
		db:     db,
		logger: logger.With().Str("component", "tx_journal").Logger(),
	}
}

// Listener returns the manager hook that feeds the journal.
func (j *TxJournal) Listener() txmanager.EventListener {
	return txmanager.SelectiveListener{OnTransitionCb: j.Record}
}

// Record upserts the row for t.Hash with the new state. Reads carry no hash
// and are skipped. Failures are logged; the journal never fails a transaction.
func (j *TxJournal) Record(t txmanager.Transition) {
	if t.Hash == (common.Hash{}) {
		return
	}
	rec := store.TransactionRecord{
		TxHash:       t.Hash.Hex(),
		From:         t.From.Hex(),
		Nonce:        t.Nonce,
		State:        t.State.String(),
		GasUsed:      t.GasUsed,
		BlockNumber:  t.BlockNumber,
		RevertReason: t.RevertReason,
	}
	if t.To != nil {
		rec.To = t.To.Hex()
	}

	err := j.db.Client().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tx_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "gas_used", "block_number", "revert_reason", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		j.logger.Error().Err(err).Str("tx_hash", rec.TxHash).Str("state", rec.State).Msg("failed to record transaction")
	}
}

// Get returns the journal row for hash.
func (j *TxJournal) Get(ctx context.Context, hash string) (*store.TransactionRecord, error) {
	var rec store.TransactionRecord
	if err := j.db.Client().WithContext(ctx).Where("tx_hash = ?", hash).First(&rec).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to load transaction %s", hash)
	}
	return &rec, nil
}

// List returns rows in submission order, optionally filtered by state.
func (j *TxJournal) List(ctx context.Context, state string) ([]store.TransactionRecord, error) {
	q := j.db.Client().WithContext(ctx).Order("id ASC")
	if state != "" {
		q = q.Where("state = ?", state)
	}
	var out []store.TransactionRecord
	if err := q.Find(&out).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list transactions")
	}
	return out, nil
}
