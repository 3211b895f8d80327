// Package db keeps the client's SQLite database: deployed contract addresses
// and the journal of submitted transactions.
package db

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/store"
)

const (
	memoryDSN = ":memory:"

	// fileOptions lets a query server read while a command writes.
	fileOptions = "?_journal_mode=WAL&_busy_timeout=5000"

	dataDirMode = 0o750
)

// DB is an open database with the schema of every store model applied.
type DB struct {
	client *gorm.DB
}

// OpenFileDB opens dir/filename, creating dir when it is missing.
func OpenFileDB(dir, filename string) (*DB, error) {
	if err := os.MkdirAll(dir, dataDirMode); err != nil {
		return nil, errors.Wrapf(err, "failed to create data directory %s", dir)
	}
	return open(filepath.Join(dir, filename) + fileOptions)
}

// OpenInMemoryDB opens a database that lives as long as the returned DB.
func OpenInMemoryDB() (*DB, error) {
	return open(memoryDSN)
}

func open(dsn string) (*DB, error) {
	client, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// Every pooled connection to :memory: would see its own empty database.
	sqlDB, err := client.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to access connection pool")
	}
	sqlDB.SetMaxOpenConns(1)

	if err := client.AutoMigrate(&store.DeployedContract{}, &store.TransactionRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "failed to migrate schema")
	}
	return &DB{client: client}, nil
}

// Client returns the gorm handle for queries.
func (d *DB) Client() *gorm.DB {
	return d.client
}

func (d *DB) Close() error {
	sqlDB, err := d.client.DB()
	if err != nil {
		return errors.Wrap(err, "failed to access connection pool")
	}
	return errors.Wrap(sqlDB.Close(), "failed to close database")
}
