package events

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/abi"
	cerrors "github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/errors"
)

// Opaque stands in for an indexed parameter whose value was hashed into
// its topic (string, bytes, arrays and tuples). Only the digest is known.
type Opaque struct {
	Digest common.Hash
}

func (o Opaque) String() string {
	return "opaque(" + o.Digest.Hex() + ")"
}

// Matches reports whether value hashes to the digest. It applies to string
// and bytes parameters, which are hashed over their raw content.
func (o Opaque) Matches(value []byte) bool {
	return crypto.Keccak256Hash(value) == o.Digest
}

// TypedEvent is a decoded log.
type TypedEvent struct {
	Name    string
	Address common.Address
	// Values is keyed by parameter name, or argN for unnamed parameters.
	Values map[string]any
	// Ordered holds the values in declaration order.
	Ordered []any
	Log     types.Log
}

// BlockRange bounds a log query. A nil To means the latest block.
type BlockRange struct {
	From uint64
	To   *uint64
}

// BuildFilter returns a query for logs of one event emitted by address.
// Each entry of indexed constrains the following topic position; an empty
// entry is a wildcard.
func BuildFilter(topic0 common.Hash, address common.Address, r BlockRange, indexed ...[]common.Hash) ethereum.FilterQuery {
	topics := append([][]common.Hash{{topic0}}, indexed...)
	return ethereum.FilterQuery{
		Addresses: []common.Address{address},
		Topics:    trimWildcards(topics),
		FromBlock: new(big.Int).SetUint64(r.From),
		ToBlock:   toBlock(r.To),
	}
}

func toBlock(to *uint64) *big.Int {
	if to == nil {
		return nil
	}
	return new(big.Int).SetUint64(*to)
}

func trimWildcards(topics [][]common.Hash) [][]common.Hash {
	for len(topics) > 0 && len(topics[len(topics)-1]) == 0 {
		topics = topics[:len(topics)-1]
	}
	return topics
}

// Topics converts indexed argument values to the topics a node would store
// for them.
func Topics(t abi.Type, values ...any) ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(values))
	for _, v := range values {
		switch {
		case t.Kind == abi.KindString:
			s, ok := v.(string)
			if !ok {
				return nil, cerrors.NewEncodeError(fmt.Sprintf("cannot use %T as string topic", v), nil)
			}
			out = append(out, crypto.Keccak256Hash([]byte(s)))
		case t.Kind == abi.KindBytes:
			b, ok := abi.BytesOf(v)
			if !ok {
				return nil, cerrors.NewEncodeError(fmt.Sprintf("cannot use %T as bytes topic", v), nil)
			}
			out = append(out, crypto.Keccak256Hash(b))
		case hashedInTopic(t):
			return nil, cerrors.NewEncodeError(fmt.Sprintf("topics for %s are not supported", t), nil)
		default:
			enc, err := abi.Encode([]abi.Type{t}, []any{v})
			if err != nil {
				return nil, err
			}
			out = append(out, common.BytesToHash(enc))
		}
	}
	return out, nil
}

// hashedInTopic reports whether an indexed parameter of type t is stored as
// a Keccak digest rather than in place.
func hashedInTopic(t abi.Type) bool {
	switch t.Kind {
	case abi.KindString, abi.KindBytes, abi.KindArray, abi.KindFixedArray, abi.KindTuple:
		return true
	}
	return false
}

// Decode decodes log against sig. A log whose first topic is not the event's
// topic0 fails with ErrEventMismatch. Anonymous events carry no topic0 and
// their indexed parameters start at the first topic.
func Decode(sig abi.EventSignature, log types.Log) (*TypedEvent, error) {
	topics := log.Topics
	if !sig.Anonymous {
		topic0 := sig.Topic0()
		if len(topics) == 0 {
			return nil, cerrors.NewEventMismatchError(sig.Name, topic0.Hex(), "none")
		}
		if topics[0] != topic0 {
			return nil, cerrors.NewEventMismatchError(sig.Name, topic0.Hex(), topics[0].Hex())
		}
		topics = topics[1:]
	}

	var dataTypes []abi.Type
	indexedCount := 0
	for _, in := range sig.Inputs {
		if in.Indexed {
			indexedCount++
			continue
		}
		dataTypes = append(dataTypes, in.Type)
	}
	if len(topics) != indexedCount {
		return nil, cerrors.NewDecodeError(cerrors.ErrLengthMismatch,
			"%s: expected %d indexed topics, got %d", sig.Name, indexedCount, len(topics))
	}

	dataValues, err := abi.Decode(dataTypes, log.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s data: %w", sig.Name, err)
	}

	ev := &TypedEvent{
		Name:    sig.Name,
		Address: log.Address,
		Values:  make(map[string]any, len(sig.Inputs)),
		Ordered: make([]any, len(sig.Inputs)),
		Log:     log,
	}

	topicIdx, dataIdx := 0, 0
	for i, in := range sig.Inputs {
		var v any
		if in.Indexed {
			topic := topics[topicIdx]
			topicIdx++
			if hashedInTopic(in.Type) {
				v = Opaque{Digest: topic}
			} else {
				out, err := abi.Decode([]abi.Type{in.Type}, topic.Bytes())
				if err != nil {
					return nil, fmt.Errorf("decode %s topic %d: %w", sig.Name, topicIdx, err)
				}
				v = out[0]
			}
		} else {
			v = dataValues[dataIdx]
			dataIdx++
		}

		ev.Ordered[i] = v
		name := in.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		ev.Values[name] = v
	}
	return ev, nil
}

// DecodeAll decodes the logs that belong to sig, typically from a receipt.
// Logs of other events are skipped; any other failure is returned.
func DecodeAll(sig abi.EventSignature, logs []*types.Log) ([]*TypedEvent, error) {
	var out []*TypedEvent
	for _, l := range logs {
		if l == nil {
			continue
		}
		ev, err := Decode(sig, *l)
		if err != nil {
			if cerrors.Is(err, cerrors.ErrEventMismatch) {
				continue
			}
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}
