package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/db"
	cerrors "github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/errors"
)

var (
	addrA = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	addrB = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
)

func TestAddressBook_Resolve(t *testing.T) {
	book := NewAddressBook("RegisterContract", zerolog.Nop())
	require.NoError(t, book.Register(1337, addrA))

	tests := []struct {
		name      string
		networkID uint64
		want      common.Address
		wantErr   bool
	}{
		{name: "registered", networkID: 1337, want: addrA},
		{name: "unknown network", networkID: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := book.Resolve(tt.networkID)
			if tt.wantErr {
				assert.ErrorIs(t, err, cerrors.ErrUnknownNetwork)
				assert.True(t, cerrors.IsCode(err, cerrors.ErrCodeUnknownNetwork))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := book.Resolve(tt.networkID)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestAddressBook_RegisterReplaces(t *testing.T) {
	book := NewAddressBook("RegisterContract", zerolog.Nop())
	require.NoError(t, book.Register(5, addrA))
	require.NoError(t, book.Register(5, addrB))

	got, err := book.Resolve(5)
	require.NoError(t, err)
	assert.Equal(t, addrB, got)

	assert.Error(t, book.Register(5, common.Address{}))
}

func TestAddressBook_LoadKeepsRegistered(t *testing.T) {
	book := NewAddressBook("RegisterContract", zerolog.Nop())
	require.NoError(t, book.Register(1, addrA))
	book.Load(map[uint64]common.Address{1: addrB, 11155111: addrB})

	assert.Equal(t, map[uint64]common.Address{1: addrA, 11155111: addrB}, book.Entries())
	assert.Equal(t, []uint64{1, 11155111}, book.ChainIDs())
}

func TestAddressBook_EntriesIsSnapshot(t *testing.T) {
	book := NewAddressBook("RegisterContract", zerolog.Nop())
	require.NoError(t, book.Register(1, addrA))

	snap := book.Entries()
	snap[2] = addrB
	_, err := book.Resolve(2)
	assert.Error(t, err)
}

func TestAddressBook_ConcurrentAccess(t *testing.T) {
	book := NewAddressBook("RegisterContract", zerolog.Nop())
	var wg sync.WaitGroup
	for i := uint64(1); i <= 20; i++ {
		wg.Add(2)
		go func(id uint64) {
			defer wg.Done()
			assert.NoError(t, book.Register(id, addrA))
		}(i)
		go func(id uint64) {
			defer wg.Done()
			_, _ = book.Resolve(id)
		}(i)
	}
	wg.Wait()
	assert.Len(t, book.Entries(), 20)
}

type failingStore struct{}

func (failingStore) Save(string, Entry) error     { return errors.New("disk full") }
func (failingStore) Load(string) ([]Entry, error) { return nil, nil }

func TestAddressBook_StoreFailureLeavesBookUnchanged(t *testing.T) {
	book, err := NewBackedAddressBook("RegisterContract", failingStore{}, zerolog.Nop())
	require.NoError(t, err)

	assert.EqualError(t, book.Register(1, addrA), "disk full")
	_, err = book.Resolve(1)
	assert.ErrorIs(t, err, cerrors.ErrUnknownNetwork)
}

func TestPersistentBook_Reload(t *testing.T) {
	dir := t.TempDir()
	database, err := db.OpenFileDB(dir, "book.db")
	require.NoError(t, err)

	book, err := NewPersistentBook("RegisterContract", database, zerolog.Nop())
	require.NoError(t, err)
	deployTx := common.HexToHash("0xdeadbeef")
	require.NoError(t, book.RegisterDeployment(1337, addrA, deployTx))
	require.NoError(t, book.Register(1337, addrB))
	require.NoError(t, book.Register(5, addrA))

	other, err := NewPersistentBook("TicketContract", database, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, other.Register(1337, addrA))
	require.NoError(t, database.Close())

	database, err = db.OpenFileDB(dir, "book.db")
	require.NoError(t, err)
	defer database.Close()

	reloaded, err := NewPersistentBook("RegisterContract", database, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, map[uint64]common.Address{1337: addrB, 5: addrA}, reloaded.Entries())

	entry, ok := reloaded.Lookup(1337)
	require.True(t, ok)
	assert.Equal(t, common.Hash{}, entry.TxHash)
}
