package abi

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	cerrors "github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/errors"
)

// Word is one 32-byte slot of an encoding.
type Word [32]byte

// Arg pairs a value with the type it is encoded as.
type Arg struct {
	Type  Type
	Value any
}

// EncodeArgs encodes args as one tuple.
func EncodeArgs(args ...Arg) ([]byte, error) {
	types := make([]Type, len(args))
	values := make([]any, len(args))
	for i, a := range args {
		types[i] = a.Type
		values[i] = a.Value
	}
	return Encode(types, values)
}

// Encode encodes values as a tuple of types using head/tail layout.
//
// Accepted Go values per kind:
//
//	uint/int      *big.Int, big.Int, *uint256.Int, any Go integer
//	bool          bool
//	address       common.Address
//	bytesN        []byte, hexutil.Bytes, common.Hash, [32]byte (length must be N)
//	bytes         []byte, hexutil.Bytes
//	string        string
//	T[N], T[]     []any or a typed slice of a supported value
//	tuple         []any
func Encode(types []Type, values []any) ([]byte, error) {
	return encodeSequence(types, values)
}

func encodeSequence(types []Type, values []any) ([]byte, error) {
	if len(types) != len(values) {
		return nil, cerrors.NewEncodeError(
			fmt.Sprintf("expected %d values, got %d", len(types), len(values)), nil)
	}

	headLen := 0
	for _, t := range types {
		headLen += t.headSize()
	}

	head := make([]byte, 0, headLen)
	var tail []byte
	for i, t := range types {
		enc, err := encodeValue(t, values[i])
		if err != nil {
			return nil, err
		}
		if t.IsDynamic() {
			head = append(head, uintWord(uint64(headLen+len(tail)))...)
			tail = append(tail, enc...)
			continue
		}
		head = append(head, enc...)
	}
	return append(head, tail...), nil
}

func encodeValue(t Type, v any) ([]byte, error) {
	switch t.Kind {
	case KindUint, KindInt:
		n, err := toBig(v)
		if err != nil {
			return nil, cerrors.NewEncodeError(fmt.Sprintf("%s: %v", t, err), nil)
		}
		return encodeInteger(t, n)

	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch(t, v)
		}
		if b {
			return uintWord(1), nil
		}
		return uintWord(0), nil

	case KindAddress:
		addr, ok := v.(common.Address)
		if !ok {
			return nil, mismatch(t, v)
		}
		return common.LeftPadBytes(addr.Bytes(), 32), nil

	case KindFixedBytes:
		b, ok := toBytes(v)
		if !ok {
			return nil, mismatch(t, v)
		}
		if len(b) != t.Size {
			return nil, cerrors.NewEncodeError(
				fmt.Sprintf("%s: got %d bytes", t, len(b)), nil)
		}
		return common.RightPadBytes(b, 32), nil

	case KindBytes:
		b, ok := toBytes(v)
		if !ok {
			return nil, mismatch(t, v)
		}
		return encodeDynamicBytes(b), nil

	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch(t, v)
		}
		return encodeDynamicBytes([]byte(s)), nil

	case KindFixedArray:
		elems, ok := toSlice(v)
		if !ok {
			return nil, mismatch(t, v)
		}
		if len(elems) != t.Size {
			return nil, cerrors.NewEncodeError(
				fmt.Sprintf("%s: got %d elements", t, len(elems)), nil)
		}
		return encodeSequence(repeat(*t.Elem, len(elems)), elems)

	case KindArray:
		elems, ok := toSlice(v)
		if !ok {
			return nil, mismatch(t, v)
		}
		body, err := encodeSequence(repeat(*t.Elem, len(elems)), elems)
		if err != nil {
			return nil, err
		}
		return append(uintWord(uint64(len(elems))), body...), nil

	case KindTuple:
		fields, ok := v.([]any)
		if !ok {
			return nil, mismatch(t, v)
		}
		return encodeSequence(t.Fields, fields)
	}
	return nil, cerrors.NewEncodeError(fmt.Sprintf("unsupported kind %s", t.Kind), nil)
}

func encodeInteger(t Type, n *big.Int) ([]byte, error) {
	if t.Kind == KindUint {
		if n.Sign() < 0 || n.BitLen() > t.Size {
			return nil, cerrors.NewEncodeError(fmt.Sprintf("%s out of range: %s", t, n), nil)
		}
		word, _ := uint256.FromBig(n)
		b := word.Bytes32()
		return b[:], nil
	}

	if !fitsSigned(n, t.Size) {
		return nil, cerrors.NewEncodeError(fmt.Sprintf("%s out of range: %s", t, n), nil)
	}
	word, _ := uint256.FromBig(new(big.Int).Abs(n))
	if n.Sign() < 0 {
		word.Neg(word)
	}
	b := word.Bytes32()
	return b[:], nil
}

func fitsSigned(n *big.Int, bits int) bool {
	if n.Sign() >= 0 {
		return n.BitLen() <= bits-1
	}
	// -2^(bits-1) is the smallest value, so compare |n|-1.
	return new(big.Int).Sub(new(big.Int).Neg(n), big.NewInt(1)).BitLen() <= bits-1
}

func encodeDynamicBytes(b []byte) []byte {
	out := uintWord(uint64(len(b)))
	if len(b) == 0 {
		return out
	}
	padded := (len(b) + 31) / 32 * 32
	return append(out, common.RightPadBytes(b, padded)...)
}

func uintWord(n uint64) []byte {
	b := uint256.NewInt(n).Bytes32()
	return b[:]
}

func repeat(t Type, n int) []Type {
	out := make([]Type, n)
	for i := range out {
		out[i] = t
	}
	return out
}

func mismatch(t Type, v any) error {
	return cerrors.NewEncodeError(fmt.Sprintf("cannot encode %T as %s", v, t), nil)
}

func toBig(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return nil, fmt.Errorf("nil integer")
		}
		return n, nil
	case big.Int:
		return &n, nil
	case *uint256.Int:
		if n == nil {
			return nil, fmt.Errorf("nil integer")
		}
		return n.ToBig(), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int8:
		return big.NewInt(int64(n)), nil
	case int16:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	default:
		return nil, fmt.Errorf("cannot use %T as integer", v)
	}
}

// BytesOf returns the content of v when it is one of the byte representations
// the codec accepts for bytes and bytesN.
func BytesOf(v any) ([]byte, bool) {
	return toBytes(v)
}

func toBytes(v any) ([]byte, bool) {
	switch b := v.(type) {
	case []byte:
		return b, true
	case hexutil.Bytes:
		return b, true
	case common.Hash:
		return b.Bytes(), true
	case [32]byte:
		return b[:], true
	default:
		return nil, false
	}
}

func toSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []*big.Int:
		return widen(s), true
	case []common.Address:
		return widen(s), true
	case []common.Hash:
		return widen(s), true
	case []bool:
		return widen(s), true
	case []string:
		return widen(s), true
	case [][]byte:
		return widen(s), true
	case []uint64:
		return widen(s), true
	case []int64:
		return widen(s), true
	default:
		return nil, false
	}
}

func widen[T any](s []T) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
