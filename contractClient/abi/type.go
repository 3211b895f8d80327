package abi

import (
	"fmt"
	"strconv"
	"strings"

	cerrors "github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/errors"
)

// Kind tags the variant held by a Type.
type Kind int

const (
	KindUint Kind = iota
	KindInt
	KindBool
	KindAddress
	KindFixedBytes
	KindBytes
	KindString
	KindFixedArray
	KindArray
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindAddress:
		return "address"
	case KindFixedBytes:
		return "fixed-bytes"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindFixedArray:
		return "fixed-array"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Type is a closed description of an ABI type.
//
// Size holds the bit width for KindUint/KindInt, the byte length for
// KindFixedBytes and the element count for KindFixedArray. Elem is set for
// both array kinds. Fields is set for KindTuple; FieldNames is optional and,
// when present, parallel to Fields.
type Type struct {
	Kind       Kind
	Size       int
	Elem       *Type
	Fields     []Type
	FieldNames []string
}

var (
	Uint8   = Type{Kind: KindUint, Size: 8}
	Uint256 = Type{Kind: KindUint, Size: 256}
	Int256  = Type{Kind: KindInt, Size: 256}
	Bool    = Type{Kind: KindBool}
	Address = Type{Kind: KindAddress}
	Bytes32 = Type{Kind: KindFixedBytes, Size: 32}
	Bytes   = Type{Kind: KindBytes}
	String  = Type{Kind: KindString}
)

// NewUint returns uintN. bits must be a multiple of 8 in [8, 256].
func NewUint(bits int) (Type, error) {
	if err := validateBits(bits); err != nil {
		return Type{}, err
	}
	return Type{Kind: KindUint, Size: bits}, nil
}

// NewInt returns intN. bits must be a multiple of 8 in [8, 256].
func NewInt(bits int) (Type, error) {
	if err := validateBits(bits); err != nil {
		return Type{}, err
	}
	return Type{Kind: KindInt, Size: bits}, nil
}

// NewFixedBytes returns bytesN for 1 <= n <= 32.
func NewFixedBytes(n int) (Type, error) {
	if n < 1 || n > 32 {
		return Type{}, cerrors.NewValidationError(fmt.Sprintf("invalid fixed bytes size %d", n))
	}
	return Type{Kind: KindFixedBytes, Size: n}, nil
}

// ArrayOf returns elem[].
func ArrayOf(elem Type) Type {
	e := elem
	return Type{Kind: KindArray, Elem: &e}
}

// FixedArrayOf returns elem[n].
func FixedArrayOf(elem Type, n int) (Type, error) {
	if n < 1 {
		return Type{}, cerrors.NewValidationError(fmt.Sprintf("invalid fixed array length %d", n))
	}
	e := elem
	return Type{Kind: KindFixedArray, Size: n, Elem: &e}, nil
}

// TupleOf returns (fields...).
func TupleOf(fields ...Type) Type {
	return Type{Kind: KindTuple, Fields: append([]Type(nil), fields...)}
}

func validateBits(bits int) error {
	if bits < 8 || bits > 256 || bits%8 != 0 {
		return cerrors.NewValidationError(fmt.Sprintf("invalid integer width %d", bits))
	}
	return nil
}

// String renders the canonical name used for selector and topic hashing.
func (t Type) String() string {
	switch t.Kind {
	case KindUint:
		return "uint" + strconv.Itoa(t.Size)
	case KindInt:
		return "int" + strconv.Itoa(t.Size)
	case KindBool:
		return "bool"
	case KindAddress:
		return "address"
	case KindFixedBytes:
		return "bytes" + strconv.Itoa(t.Size)
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindFixedArray:
		return t.Elem.String() + "[" + strconv.Itoa(t.Size) + "]"
	case KindArray:
		return t.Elem.String() + "[]"
	case KindTuple:
		names := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			names[i] = f.String()
		}
		return "(" + strings.Join(names, ",") + ")"
	default:
		return t.Kind.String()
	}
}

// IsDynamic reports whether values of t are encoded in the tail region.
func (t Type) IsDynamic() bool {
	switch t.Kind {
	case KindBytes, KindString, KindArray:
		return true
	case KindFixedArray:
		return t.Elem.IsDynamic()
	case KindTuple:
		for _, f := range t.Fields {
			if f.IsDynamic() {
				return true
			}
		}
	}
	return false
}

// headSize is the number of bytes t occupies in the head of its enclosing region.
func (t Type) headSize() int {
	if t.IsDynamic() {
		return 32
	}
	switch t.Kind {
	case KindFixedArray:
		return t.Size * t.Elem.headSize()
	case KindTuple:
		size := 0
		for _, f := range t.Fields {
			size += f.headSize()
		}
		return size
	default:
		return 32
	}
}

// MustParseType is ParseType that panics on error. Use it for literals.
func MustParseType(s string) Type {
	t, err := ParseType(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseType parses a canonical type string such as "uint256[2][]" or
// "(address,bytes)". "uint" and "int" are read as their 256-bit forms.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Type{}, cerrors.NewValidationError("empty type")
	}

	if strings.HasSuffix(s, "]") {
		i := strings.LastIndex(s, "[")
		if i <= 0 {
			return Type{}, cerrors.NewValidationError(fmt.Sprintf("malformed array type %q", s))
		}
		elem, err := ParseType(s[:i])
		if err != nil {
			return Type{}, err
		}
		dim := s[i+1 : len(s)-1]
		if dim == "" {
			return ArrayOf(elem), nil
		}
		n, err := strconv.Atoi(dim)
		if err != nil {
			return Type{}, cerrors.NewValidationError(fmt.Sprintf("malformed array length in %q", s))
		}
		return FixedArrayOf(elem, n)
	}

	if strings.HasPrefix(s, "(") {
		if !strings.HasSuffix(s, ")") {
			return Type{}, cerrors.NewValidationError(fmt.Sprintf("unterminated tuple %q", s))
		}
		parts, err := splitTopLevel(s[1 : len(s)-1])
		if err != nil {
			return Type{}, err
		}
		fields := make([]Type, 0, len(parts))
		for _, p := range parts {
			f, err := ParseType(p)
			if err != nil {
				return Type{}, err
			}
			fields = append(fields, f)
		}
		return TupleOf(fields...), nil
	}

	return parseElementary(s)
}

func parseElementary(s string) (Type, error) {
	switch s {
	case "bool":
		return Bool, nil
	case "address":
		return Address, nil
	case "string":
		return String, nil
	case "bytes":
		return Bytes, nil
	case "uint":
		return Uint256, nil
	case "int":
		return Int256, nil
	}

	switch {
	case strings.HasPrefix(s, "uint"):
		bits, err := strconv.Atoi(s[len("uint"):])
		if err != nil {
			break
		}
		return NewUint(bits)
	case strings.HasPrefix(s, "int"):
		bits, err := strconv.Atoi(s[len("int"):])
		if err != nil {
			break
		}
		return NewInt(bits)
	case strings.HasPrefix(s, "bytes"):
		n, err := strconv.Atoi(s[len("bytes"):])
		if err != nil {
			break
		}
		return NewFixedBytes(n)
	}
	return Type{}, cerrors.NewValidationError(fmt.Sprintf("unsupported type %q", s))
}

// splitTopLevel splits a tuple body on commas that are not nested in parentheses.
func splitTopLevel(body string) ([]string, error) {
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}
	var (
		parts []string
		depth int
		start int
	)
	for i, c := range body {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, cerrors.NewValidationError(fmt.Sprintf("unbalanced tuple %q", body))
			}
		case ',':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, cerrors.NewValidationError(fmt.Sprintf("unbalanced tuple %q", body))
	}
	return append(parts, body[start:]), nil
}
