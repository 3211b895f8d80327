package registry

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/abi"
	cerrors "github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/errors"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/txmanager"
)

// Deployer creates contracts and records them in an address book.
type Deployer struct {
	manager *txmanager.Manager
	book    *AddressBook
	logger  zerolog.Logger
}

// NewDeployer creates a deployer that registers into book.
func NewDeployer(manager *txmanager.Manager, book *AddressBook, logger zerolog.Logger) *Deployer {
	return &Deployer{
		manager: manager,
		book:    book,
		logger: logger.With().
			Str("component", "deployer").
			Str("contract", book.Contract()).
			Logger(),
	}
}

// Deploy sends bytecode followed by the encoded constructor arguments as a
// creation transaction and waits for it. On success the new address is
// registered under the transport's chain id.
//
// A reverted deployment returns its receipt with the revert error and
// registers nothing.
func (d *Deployer) Deploy(ctx context.Context, bytecode []byte, ctorTypes []abi.Type, ctorArgs []any) (common.Address, *txmanager.Receipt, error) {
	if len(bytecode) == 0 {
		return common.Address{}, nil, cerrors.NewValidationError("empty creation bytecode")
	}
	args, err := abi.Encode(ctorTypes, ctorArgs)
	if err != nil {
		return common.Address{}, nil, err
	}
	payload := make([]byte, 0, len(bytecode)+len(args))
	payload = append(payload, bytecode...)
	payload = append(payload, args...)

	receipt, err := d.manager.Transact(ctx, txmanager.CallRequest{
		Data:       payload,
		Mutability: abi.Write,
	})
	if err != nil {
		return common.Address{}, receipt, err
	}

	addr := receipt.ContractAddress
	if addr == (common.Address{}) {
		return common.Address{}, receipt, cerrors.NewEngineError(cerrors.ErrCodeInternal, "",
			"creation receipt carries no contract address", nil).
			WithContext("tx_hash", receipt.TxHash.Hex())
	}

	chainID, err := d.manager.Transport().ChainID(ctx)
	if err != nil {
		return addr, receipt, cerrors.NewRemoteError("", "failed to get chain id", err)
	}
	if err := d.book.RegisterDeployment(chainID.Uint64(), addr, receipt.TxHash); err != nil {
		return addr, receipt, err
	}

	d.logger.Info().
		Str("address", addr.Hex()).
		Str("tx_hash", receipt.TxHash.Hex()).
		Uint64("chain_id", chainID.Uint64()).
		Msg("contract deployed")
	return addr, receipt, nil
}
