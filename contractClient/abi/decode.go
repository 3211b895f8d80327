package abi

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	cerrors "github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/errors"
)

// Decode decodes data as a tuple of types. Trailing bytes are ignored.
//
// Values come back as *big.Int, bool, common.Address, []byte (both bytes
// kinds), string, or []any (arrays and tuples).
//
// A well formed payload spends at least one word on every scalar, bytes,
// string and dynamic array it holds. Decoding stops with ErrInvalidValue once
// a payload yields more of those than it has words, which only happens when
// offsets point several elements at the same data.
func Decode(types []Type, data []byte) ([]any, error) {
	d := &decoder{budget: len(data)/32 + 1}
	return d.decodeSequence(types, data)
}

// decoder carries the number of values a payload may still produce.
type decoder struct {
	budget int
}

func (d *decoder) spend(t Type) error {
	if d.budget == 0 {
		return cerrors.NewDecodeError(cerrors.ErrInvalidValue,
			"%s exceeds the values the payload can hold; offsets overlap", t)
	}
	d.budget--
	return nil
}

// decodeSequence reads a tuple region. Offsets found in the head are relative
// to the start of region.
func (d *decoder) decodeSequence(types []Type, region []byte) ([]any, error) {
	out := make([]any, len(types))
	pos := 0
	for i, t := range types {
		var (
			v   any
			err error
		)
		if t.IsDynamic() {
			ptr, perr := readOffset(region, pos)
			if perr != nil {
				return nil, perr
			}
			v, err = d.decodeValue(t, region[ptr:])
		} else {
			if pos+t.headSize() > len(region) {
				return nil, cerrors.NewDecodeError(cerrors.ErrLengthMismatch,
					"%s at %d needs %d bytes, have %d", t, pos, t.headSize(), len(region)-pos)
			}
			v, err = d.decodeValue(t, region[pos:])
		}
		if err != nil {
			return nil, err
		}
		out[i] = v
		pos += t.headSize()
	}
	return out, nil
}

func readOffset(region []byte, pos int) (int, error) {
	word, err := readWord(region, pos)
	if err != nil {
		return 0, err
	}
	ptr := new(uint256.Int).SetBytes32(word)
	if !ptr.IsUint64() || ptr.Uint64() >= uint64(len(region)) {
		return 0, cerrors.NewDecodeError(cerrors.ErrOffsetOutOfBounds,
			"offset %s beyond %d bytes", ptr.Dec(), len(region))
	}
	return int(ptr.Uint64()), nil
}

func readWord(data []byte, pos int) ([]byte, error) {
	if pos < 0 || pos+32 > len(data) {
		return nil, cerrors.NewDecodeError(cerrors.ErrLengthMismatch,
			"word at %d beyond %d bytes", pos, len(data))
	}
	return data[pos : pos+32], nil
}

// readLength reads a length prefix and checks that n units of unit bytes follow it.
func readLength(data []byte, unit int) (int, error) {
	word, err := readWord(data, 0)
	if err != nil {
		return 0, err
	}
	n := new(uint256.Int).SetBytes32(word)
	avail := uint64(len(data) - 32)
	if !n.IsUint64() || n.Uint64() > avail/uint64(max(unit, 1)) {
		return 0, cerrors.NewDecodeError(cerrors.ErrLengthMismatch,
			"length %s exceeds %d available bytes", n.Dec(), avail)
	}
	return int(n.Uint64()), nil
}

func (d *decoder) decodeValue(t Type, data []byte) (any, error) {
	if t.Kind != KindFixedArray && t.Kind != KindTuple {
		if err := d.spend(t); err != nil {
			return nil, err
		}
	}

	switch t.Kind {
	case KindUint:
		word, err := readWord(data, 0)
		if err != nil {
			return nil, err
		}
		n := new(uint256.Int).SetBytes32(word).ToBig()
		if n.BitLen() > t.Size {
			return nil, cerrors.NewDecodeError(cerrors.ErrInvalidValue, "%s value has dirty high bits", t)
		}
		return n, nil

	case KindInt:
		word, err := readWord(data, 0)
		if err != nil {
			return nil, err
		}
		n := decodeSigned(new(uint256.Int).SetBytes32(word))
		if !fitsSigned(n, t.Size) {
			return nil, cerrors.NewDecodeError(cerrors.ErrInvalidValue, "%s value is not sign extended", t)
		}
		return n, nil

	case KindBool:
		word, err := readWord(data, 0)
		if err != nil {
			return nil, err
		}
		if !isZero(word[:31]) || word[31] > 1 {
			return nil, cerrors.NewDecodeError(cerrors.ErrInvalidValue, "bool word is not 0 or 1")
		}
		return word[31] == 1, nil

	case KindAddress:
		word, err := readWord(data, 0)
		if err != nil {
			return nil, err
		}
		if !isZero(word[:12]) {
			return nil, cerrors.NewDecodeError(cerrors.ErrInvalidValue, "address word has dirty high bytes")
		}
		return common.BytesToAddress(word[12:]), nil

	case KindFixedBytes:
		word, err := readWord(data, 0)
		if err != nil {
			return nil, err
		}
		if !isZero(word[t.Size:]) {
			return nil, cerrors.NewDecodeError(cerrors.ErrInvalidValue, "%s word has dirty padding", t)
		}
		return common.CopyBytes(word[:t.Size]), nil

	case KindBytes, KindString:
		n, err := readLength(data, 1)
		if err != nil {
			return nil, err
		}
		payload := data[32 : 32+n]
		if t.Kind == KindString {
			return string(payload), nil
		}
		return common.CopyBytes(payload), nil

	case KindFixedArray:
		if !t.IsDynamic() && t.headSize() > len(data) {
			return nil, cerrors.NewDecodeError(cerrors.ErrLengthMismatch,
				"%s needs %d bytes, have %d", t, t.headSize(), len(data))
		}
		return d.decodeSequence(repeat(*t.Elem, t.Size), data)

	case KindArray:
		n, err := readLength(data, t.Elem.headSize())
		if err != nil {
			return nil, err
		}
		return d.decodeSequence(repeat(*t.Elem, n), data[32:])

	case KindTuple:
		return d.decodeSequence(t.Fields, data)
	}
	return nil, cerrors.NewDecodeError(cerrors.ErrInvalidValue, "unsupported kind %s", t.Kind)
}

// decodeSigned reads word as a two's complement integer.
func decodeSigned(word *uint256.Int) *big.Int {
	if word.Sign() >= 0 {
		return word.ToBig()
	}
	abs := new(uint256.Int).Neg(word)
	return new(big.Int).Neg(abs.ToBig())
}

func isZero(b []byte) bool {
	return len(bytes.TrimLeft(b, "\x00")) == 0
}
