package txmanager

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/abi"
)

//go:generate mockgen -destination=./mocks/mock_txmanager.go -package=mocks github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/txmanager Transport,Signer,GasPolicy

// State is a step of the request lifecycle.
type State int

const (
	StateBuilt State = iota
	StateSimulated
	StateSubmitted
	StateReceipted
	StateReverted
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateSimulated:
		return "simulated"
	case StateSubmitted:
		return "submitted"
	case StateReceipted:
		return "receipted"
	case StateReverted:
		return "reverted"
	case StateTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateReceipted || s == StateReverted || s == StateTimedOut
}

// Transport is the network collaborator.
type Transport interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// Signer signs transactions for one account and owns its nonce sequence.
// Implementations must hand out each nonce once even under concurrent use.
type Signer interface {
	Address() common.Address
	NextNonce(ctx context.Context) (uint64, error)
	SignTx(ctx context.Context, tx *types.Transaction) (*types.Transaction, error)
	// ResetNonce forgets the local sequence after a failed send so the next
	// nonce is read from the network again.
	ResetNonce()
}

// GasPolicy fills gas fields the caller left unset.
type GasPolicy interface {
	GasPrice(ctx context.Context) (*big.Int, error)
	GasLimit(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

// RevertDecoder renders contract specific revert payloads. *abi.Contract
// implements it.
type RevertDecoder interface {
	DecodeRevert(data []byte) (string, bool)
}

// CallRequest is one read or write against a contract. A nil To on a write
// deploys Data as creation code.
type CallRequest struct {
	To         *common.Address
	Data       []byte
	Mutability abi.Mutability
	Value      *big.Int

	// From overrides the sender of a read. Writes always use the signer.
	From common.Address
	// GasLimit and GasPrice are taken from the gas policy when zero or nil.
	GasLimit uint64
	GasPrice *big.Int
	// BlockNumber pins a read to a block; nil reads the latest state.
	BlockNumber *big.Int
	// Errors decodes custom revert errors, if set.
	Errors RevertDecoder
}

// PendingTransaction is a submitted write awaiting its receipt.
type PendingTransaction struct {
	Hash        common.Hash
	Tx          *types.Transaction
	From        common.Address
	Request     CallRequest
	SubmittedAt time.Time
}

// Receipt is a mined transaction with its lifecycle outcome.
type Receipt struct {
	*types.Receipt
	State        State
	RevertReason string
	RevertData   []byte
}

// Succeeded reports whether the transaction executed without reverting.
func (r *Receipt) Succeeded() bool {
	return r != nil && r.State == StateReceipted
}

// Transition is reported to listeners whenever a request changes state. A
// successful read reports StateSimulated with a zero Hash.
type Transition struct {
	Hash         common.Hash
	From         common.Address
	To           *common.Address
	Nonce        uint64
	State        State
	GasUsed      uint64
	BlockNumber  uint64
	RevertReason string
}
