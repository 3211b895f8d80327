// Package registry keeps track of where contracts are deployed and deploys
// new instances.
package registry

import (
	"sort"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	cerrors "github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/errors"
)

// Entry is one deployment of a contract.
type Entry struct {
	ChainID uint64
	Address common.Address
	// TxHash is the creation transaction, zero when registered by hand.
	TxHash common.Hash
}

// Store persists address book entries.
type Store interface {
	Save(contract string, e Entry) error
	Load(contract string) ([]Entry, error)
}

// AddressBook maps chain ids to the address of one contract. Lookups may
// run concurrently with each other; registrations are serialized.
type AddressBook struct {
	contract string
	store    Store
	logger   zerolog.Logger

	mu      sync.RWMutex
	entries map[uint64]Entry
}

// NewAddressBook creates an in-memory book for contract.
func NewAddressBook(contract string, logger zerolog.Logger) *AddressBook {
	return &AddressBook{
		contract: contract,
		entries:  make(map[uint64]Entry),
		logger: logger.With().
			Str("component", "address_book").
			Str("contract", contract).
			Logger(),
	}
}

// NewBackedAddressBook creates a book that writes through to store and
// starts with everything store already holds.
func NewBackedAddressBook(contract string, store Store, logger zerolog.Logger) (*AddressBook, error) {
	b := NewAddressBook(contract, logger)
	b.store = store

	saved, err := store.Load(contract)
	if err != nil {
		return nil, err
	}
	for _, e := range saved {
		b.entries[e.ChainID] = e
	}
	b.logger.Debug().Int("entries", len(saved)).Msg("loaded address book")
	return b, nil
}

// Contract returns the name the book was created for.
func (b *AddressBook) Contract() string {
	return b.contract
}

// Resolve returns the address registered for networkID.
func (b *AddressBook) Resolve(networkID uint64) (common.Address, error) {
	b.mu.RLock()
	e, ok := b.entries[networkID]
	b.mu.RUnlock()
	if !ok {
		return common.Address{}, cerrors.NewUnknownNetworkError(b.contract, strconv.FormatUint(networkID, 10))
	}
	return e.Address, nil
}

// Lookup returns the full entry for networkID.
func (b *AddressBook) Lookup(networkID uint64) (Entry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[networkID]
	return e, ok
}

// Register records addr for networkID, replacing any earlier address.
func (b *AddressBook) Register(networkID uint64, addr common.Address) error {
	return b.put(Entry{ChainID: networkID, Address: addr})
}

// RegisterDeployment records a contract created by txHash.
func (b *AddressBook) RegisterDeployment(networkID uint64, addr common.Address, txHash common.Hash) error {
	return b.put(Entry{ChainID: networkID, Address: addr, TxHash: txHash})
}

func (b *AddressBook) put(e Entry) error {
	if e.Address == (common.Address{}) {
		return cerrors.NewValidationError("cannot register the zero address")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.store != nil {
		if err := b.store.Save(b.contract, e); err != nil {
			return err
		}
	}
	b.entries[e.ChainID] = e

	b.logger.Info().
		Uint64("chain_id", e.ChainID).
		Str("address", e.Address.Hex()).
		Msg("registered contract address")
	return nil
}

// Load merges addresses into the book without persisting them. It is meant
// for addresses that come from configuration.
func (b *AddressBook) Load(addresses map[uint64]common.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, addr := range addresses {
		if _, ok := b.entries[id]; !ok {
			b.entries[id] = Entry{ChainID: id, Address: addr}
		}
	}
}

// Entries returns a snapshot of the book.
func (b *AddressBook) Entries() map[uint64]common.Address {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[uint64]common.Address, len(b.entries))
	for id, e := range b.entries {
		out[id] = e.Address
	}
	return out
}

// ChainIDs returns the registered chain ids in ascending order.
func (b *AddressBook) ChainIDs() []uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]uint64, 0, len(b.entries))
	for id := range b.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
