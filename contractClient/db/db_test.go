package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/store"
)

func TestDB_OpenModes(t *testing.T) {
	t.Run("in-memory alias", func(t *testing.T) {
		db, err := OpenInMemoryDB()
		require.NoError(t, err)
		require.NotNil(t, db)

		runSampleInsertSelectTest(t, db)
		assert.NoError(t, db.Close())
	})

	t.Run("file-based DB", func(t *testing.T) {
		dir := t.TempDir()
		dbName := "test.db"

		db, err := OpenFileDB(dir, dbName)
		require.NoError(t, err)
		require.NotNil(t, db)

		assert.FileExists(t, filepath.Join(dir, dbName))

		runSampleInsertSelectTest(t, db)

		assert.NoError(t, db.Close())

		t.Run("close twice", func(t *testing.T) {
			assert.NoError(t, db.Close())
		})
	})

	t.Run("file-based DB survives reopen", func(t *testing.T) {
		dir := t.TempDir()

		db, err := OpenFileDB(dir, "reopen.db")
		require.NoError(t, err)
		runSampleInsertSelectTest(t, db)
		require.NoError(t, db.Close())

		db, err = OpenFileDB(dir, "reopen.db")
		require.NoError(t, err)
		defer db.Close()

		var count int64
		require.NoError(t, db.Client().Model(&store.DeployedContract{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "data")
		db, err := OpenFileDB(dir, "db.db")
		require.NoError(t, err)
		defer db.Close()
		assert.DirExists(t, dir)
	})
}

func runSampleInsertSelectTest(t *testing.T, db *DB) {
	entry := store.DeployedContract{
		Contract: "RegisterContract",
		ChainID:  1337,
		Address:  "0x5FbDB2315678afecb367f032d93F642f64180aa3",
	}

	err := db.Client().Create(&entry).Error
	require.NoError(t, err)

	var result store.DeployedContract
	err = db.Client().First(&result).Error
	require.NoError(t, err)
	assert.Equal(t, uint64(1337), result.ChainID)
	assert.Equal(t, entry.Address, result.Address)
}
