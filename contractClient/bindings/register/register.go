package register

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/abi"
	cerrors "github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/errors"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/events"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/registry"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/txmanager"
)

var parsed = abi.MustParseJSON(ABI)

// Interface returns the parsed RegisterContract ABI.
func Interface() *abi.Contract {
	return parsed
}

// RegisterContract is a RegisterContract instance at one address.
type RegisterContract struct {
	address     common.Address
	contract    *abi.Contract
	manager     *txmanager.Manager
	matcherOpts []events.Option
	logger      zerolog.Logger
}

// NewRegisterContract binds the contract at address. opts configure the
// event matchers used by the Filter and Watch methods.
func NewRegisterContract(address common.Address, manager *txmanager.Manager, logger zerolog.Logger, opts ...events.Option) *RegisterContract {
	return &RegisterContract{
		address:     address,
		contract:    parsed,
		manager:     manager,
		matcherOpts: opts,
		logger: logger.With().
			Str("component", "register_contract").
			Str("address", address.Hex()).
			Logger(),
	}
}

// Deploy creates a new RegisterContract and records it in book under the
// transport's chain id.
func Deploy(ctx context.Context, manager *txmanager.Manager, book *registry.AddressBook, logger zerolog.Logger, opts ...events.Option) (*RegisterContract, *txmanager.Receipt, error) {
	bytecode, err := hexutil.Decode(Bin)
	if err != nil {
		return nil, nil, cerrors.NewEngineError(cerrors.ErrCodeInternal, "", "invalid creation bytecode", err)
	}
	addr, receipt, err := registry.NewDeployer(manager, book, logger).Deploy(ctx, bytecode, nil, nil)
	if err != nil {
		return nil, receipt, err
	}
	return NewRegisterContract(addr, manager, logger, opts...), receipt, nil
}

// Load binds the instance book knows for networkID.
func Load(manager *txmanager.Manager, book *registry.AddressBook, networkID uint64, logger zerolog.Logger, opts ...events.Option) (*RegisterContract, error) {
	addr, err := book.Resolve(networkID)
	if err != nil {
		return nil, err
	}
	return NewRegisterContract(addr, manager, logger, opts...), nil
}

// PreviouslyDeployedAddress returns the address recorded for networkID.
func PreviouslyDeployedAddress(book *registry.AddressBook, networkID uint64) (common.Address, bool) {
	entry, ok := book.Lookup(networkID)
	return entry.Address, ok
}

// Address returns the bound contract address.
func (c *RegisterContract) Address() common.Address {
	return c.address
}

// Owner reads the current owner.
func (c *RegisterContract) Owner(ctx context.Context) (common.Address, error) {
	fn, err := c.contract.Function("owner")
	if err != nil {
		return common.Address{}, err
	}
	out, err := c.manager.CallFunction(ctx, c.address, fn, c.contract)
	if err != nil {
		return common.Address{}, err
	}
	owner, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, cerrors.NewEngineError(cerrors.ErrCodeInternal, "",
			fmt.Sprintf("owner returned %T", out[0]), nil)
	}
	return owner, nil
}

// RenounceOwnership leaves the contract without an owner.
func (c *RegisterContract) RenounceOwnership(ctx context.Context) (*txmanager.Receipt, error) {
	return c.transact(ctx, "renounceOwnership")
}

// TransferOwnership hands the contract to newOwner.
func (c *RegisterContract) TransferOwnership(ctx context.Context, newOwner common.Address) (*txmanager.Receipt, error) {
	return c.transact(ctx, "transferOwnership", newOwner)
}

// RegisterTicket records a ticket of eventID. hashedMessage is the signed
// digest and r, s, v its signature components.
func (c *RegisterContract) RegisterTicket(
	ctx context.Context,
	eventID, ticketID *big.Int,
	hashedMessage, r, s [32]byte,
	v uint8,
) (*txmanager.Receipt, error) {
	return c.transact(ctx, "registerTicket", eventID, ticketID, hashedMessage, r, s, v)
}

// SetTicketContractAddress points the register at the ticket contract.
func (c *RegisterContract) SetTicketContractAddress(ctx context.Context, ticketAddress common.Address) (*txmanager.Receipt, error) {
	return c.transact(ctx, "setTicketContractAddress", ticketAddress)
}

func (c *RegisterContract) transact(ctx context.Context, method string, args ...any) (*txmanager.Receipt, error) {
	data, err := c.contract.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	to := c.address
	receipt, err := c.manager.Transact(ctx, txmanager.CallRequest{
		To:         &to,
		Data:       data,
		Mutability: abi.Write,
		Errors:     c.contract,
	})
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Msg("transaction failed")
		return receipt, err
	}
	c.logger.Debug().
		Str("method", method).
		Str("tx_hash", receipt.TxHash.Hex()).
		Msg("transaction receipted")
	return receipt, nil
}
