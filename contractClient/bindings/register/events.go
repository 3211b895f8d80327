package register

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/abi"
	cerrors "github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/errors"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/events"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/txmanager"
)

const ownershipTransferredEvent = "OwnershipTransferred"

// OwnershipTransferred is a decoded OwnershipTransferred log.
type OwnershipTransferred struct {
	PreviousOwner common.Address
	NewOwner      common.Address
	Raw           types.Log
}

func (e *OwnershipTransferred) String() string {
	return fmt.Sprintf("OwnershipTransferred(%s -> %s)", e.PreviousOwner.Hex(), e.NewOwner.Hex())
}

// OwnershipTransferredEvents decodes the OwnershipTransferred logs this
// contract emitted in receipt.
func (c *RegisterContract) OwnershipTransferredEvents(receipt *txmanager.Receipt) ([]*OwnershipTransferred, error) {
	if receipt == nil || receipt.Receipt == nil {
		return nil, nil
	}
	sig, err := c.contract.Event(ownershipTransferredEvent)
	if err != nil {
		return nil, err
	}
	own := make([]*types.Log, 0, len(receipt.Logs))
	for _, l := range receipt.Logs {
		if l != nil && l.Address == c.address {
			own = append(own, l)
		}
	}
	decoded, err := events.DecodeAll(sig, own)
	if err != nil {
		return nil, err
	}
	out := make([]*OwnershipTransferred, 0, len(decoded))
	for _, ev := range decoded {
		typed, err := toOwnershipTransferred(ev)
		if err != nil {
			return nil, err
		}
		out = append(out, typed)
	}
	return out, nil
}

// ParseOwnershipTransferred decodes a single log.
func (c *RegisterContract) ParseOwnershipTransferred(log types.Log) (*OwnershipTransferred, error) {
	sig, err := c.contract.Event(ownershipTransferredEvent)
	if err != nil {
		return nil, err
	}
	ev, err := events.Decode(sig, log)
	if err != nil {
		return nil, err
	}
	return toOwnershipTransferred(ev)
}

// FilterOwnershipTransferred iterates past OwnershipTransferred events in r.
// Empty owner lists match any owner.
func (c *RegisterContract) FilterOwnershipTransferred(
	ctx context.Context,
	r events.BlockRange,
	previousOwner, newOwner []common.Address,
) (*OwnershipTransferredIterator, error) {
	matcher, topics, err := c.ownershipMatcher(previousOwner, newOwner)
	if err != nil {
		return nil, err
	}
	q := matcher.Query(c.address, r, topics...)
	return &OwnershipTransferredIterator{it: matcher.Range(ctx, q)}, nil
}

// WatchOwnershipTransferred streams OwnershipTransferred events into sink.
// A non-nil from backfills events from that block before live delivery.
func (c *RegisterContract) WatchOwnershipTransferred(
	ctx context.Context,
	sink chan<- *OwnershipTransferred,
	from *uint64,
	previousOwner, newOwner []common.Address,
) (event.Subscription, error) {
	matcher, topics, err := c.ownershipMatcher(previousOwner, newOwner)
	if err != nil {
		return nil, err
	}
	q := matcher.LiveQuery(c.address, topics...)
	if from != nil {
		q.FromBlock = new(big.Int).SetUint64(*from)
	}

	raw := make(chan *events.TypedEvent)
	sub, err := matcher.Watch(ctx, q, raw)
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case ev := <-raw:
				typed, err := toOwnershipTransferred(ev)
				if err != nil {
					return err
				}
				select {
				case sink <- typed:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

func (c *RegisterContract) ownershipMatcher(previousOwner, newOwner []common.Address) (*events.Matcher, [][]common.Hash, error) {
	sig, err := c.contract.Event(ownershipTransferredEvent)
	if err != nil {
		return nil, nil, err
	}
	prev, err := events.Topics(abi.Address, addressValues(previousOwner)...)
	if err != nil {
		return nil, nil, err
	}
	next, err := events.Topics(abi.Address, addressValues(newOwner)...)
	if err != nil {
		return nil, nil, err
	}
	matcher := events.NewMatcher(c.manager.Transport(), sig, c.logger, c.matcherOpts...)
	return matcher, [][]common.Hash{prev, next}, nil
}

// OwnershipTransferredIterator walks OwnershipTransferred events.
type OwnershipTransferredIterator struct {
	it    *events.Iterator
	event *OwnershipTransferred
	err   error
}

// Next advances to the next event. Check Err once it returns false.
func (it *OwnershipTransferredIterator) Next() bool {
	if it.err != nil || !it.it.Next() {
		return false
	}
	it.event, it.err = toOwnershipTransferred(it.it.Event())
	return it.err == nil
}

// Event returns the current event.
func (it *OwnershipTransferredIterator) Event() *OwnershipTransferred {
	return it.event
}

func (it *OwnershipTransferredIterator) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.it.Err()
}

func (it *OwnershipTransferredIterator) Close() error {
	return it.it.Close()
}

func toOwnershipTransferred(ev *events.TypedEvent) (*OwnershipTransferred, error) {
	prev, ok := ev.Values["previousOwner"].(common.Address)
	if !ok {
		return nil, cerrors.NewDecodeError(cerrors.ErrInvalidValue,
			"%s: previousOwner is %T", ev.Name, ev.Values["previousOwner"])
	}
	next, ok := ev.Values["newOwner"].(common.Address)
	if !ok {
		return nil, cerrors.NewDecodeError(cerrors.ErrInvalidValue,
			"%s: newOwner is %T", ev.Name, ev.Values["newOwner"])
	}
	return &OwnershipTransferred{PreviousOwner: prev, NewOwner: next, Raw: ev.Log}, nil
}

func addressValues(addrs []common.Address) []any {
	out := make([]any, len(addrs))
	for i, a := range addrs {
		out[i] = a
	}
	return out
}
