package abi

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/errors"
)

// normalize makes decoded values comparable with assert.Equal.
func normalize(v any) any {
	switch x := v.(type) {
	case *big.Int:
		return x.String()
	case []byte:
		return hex.EncodeToString(x)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = normalize(x[i])
		}
		return out
	default:
		return v
	}
}

func words(hexWords ...string) []byte {
	var out []byte
	for _, w := range hexWords {
		out = append(out, common.LeftPadBytes(common.FromHex(w), 32)...)
	}
	return out
}

func mustBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		panic("bad integer " + s)
	}
	return n
}

func TestFunctionSelector_Golden(t *testing.T) {
	fn := FunctionSignature{
		Name:   "transfer",
		Inputs: []Param{{Name: "to", Type: Address}, {Name: "amount", Type: Uint256}},
	}
	sel := fn.Selector()

	assert.Equal(t, "transfer(address,uint256)", fn.Canonical())
	assert.Equal(t, "a9059cbb", hex.EncodeToString(sel[:]))
}

func TestEventTopic0_Golden(t *testing.T) {
	tests := []struct {
		name   string
		event  EventSignature
		topic0 string
	}{
		{
			name: "erc20 transfer",
			event: EventSignature{Name: "Transfer", Inputs: []EventParam{
				{Param: Param{Type: Address}, Indexed: true},
				{Param: Param{Type: Address}, Indexed: true},
				{Param: Param{Type: Uint256}},
			}},
			topic0: "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		},
		{
			name: "ownership transferred",
			event: EventSignature{Name: "OwnershipTransferred", Inputs: []EventParam{
				{Param: Param{Type: Address}, Indexed: true},
				{Param: Param{Type: Address}, Indexed: true},
			}},
			topic0: "0x8be0079c531659141344cd1fd0a4f28419497f9722a3daafe3b4186f6b6457e0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.topic0, tt.event.Topic0().Hex())
		})
	}
}

func TestDeriver_Caches(t *testing.T) {
	d := NewDeriver()
	fn := FunctionSignature{Name: "owner"}

	first := d.FunctionSelector(fn)
	second := d.FunctionSelector(fn)
	assert.Equal(t, first, second)
	assert.Equal(t, "8da5cb5b", hex.EncodeToString(first[:]))

	_, cached := d.cache.Load("owner()")
	assert.True(t, cached)
}

func TestEncode_DynamicLayout(t *testing.T) {
	types := []Type{String, ArrayOf(Uint256)}
	values := []any{"foo", []any{big.NewInt(1), big.NewInt(2), big.NewInt(3)}}

	got, err := Encode(types, values)
	require.NoError(t, err)

	want := append(words(
		"0x40", // offset of string
		"0x80", // offset of array
		"0x03", // string length
	), common.RightPadBytes([]byte("foo"), 32)...)
	want = append(want, words("0x03", "0x01", "0x02", "0x03")...)

	assert.Equal(t, hex.EncodeToString(want), hex.EncodeToString(got))
	assert.Len(t, got, 8*32)
}

func TestEncode_StaticInline(t *testing.T) {
	typ := MustParseType("(uint256,bool)[2]")
	got, err := Encode([]Type{typ}, []any{[]any{
		[]any{big.NewInt(7), true},
		[]any{big.NewInt(8), false},
	}})
	require.NoError(t, err)

	assert.Equal(t, hex.EncodeToString(words("0x07", "0x01", "0x08", "0x00")), hex.EncodeToString(got))
}

func TestEncode_NestedOffsetsAreRegionRelative(t *testing.T) {
	// (uint256,string) inside a tuple: the string offset counts from the inner tuple start.
	typ := MustParseType("(uint256,string)")
	got, err := Encode([]Type{Bool, typ}, []any{true, []any{big.NewInt(5), "hi"}})
	require.NoError(t, err)

	want := append(words(
		"0x01", // bool
		"0x40", // offset of inner tuple in outer region
		"0x05", // inner uint256
		"0x40", // offset of string in inner region
		"0x02", // string length
	), common.RightPadBytes([]byte("hi"), 32)...)
	assert.Equal(t, hex.EncodeToString(want), hex.EncodeToString(got))
}

func TestRoundTrip(t *testing.T) {
	addr := common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")
	hash := common.HexToHash("0xdeadbeef").Bytes()

	tests := []struct {
		name  string
		typ   string
		value any
	}{
		{name: "uint256 max", typ: "uint256", value: mustBig("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")},
		{name: "uint256 zero", typ: "uint256", value: big.NewInt(0)},
		{name: "uint8 max", typ: "uint8", value: big.NewInt(255)},
		{name: "int256 minus one", typ: "int256", value: big.NewInt(-1)},
		{name: "int256 min", typ: "int256", value: new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))},
		{name: "int8 min", typ: "int8", value: big.NewInt(-128)},
		{name: "int8 max", typ: "int8", value: big.NewInt(127)},
		{name: "bool true", typ: "bool", value: true},
		{name: "bool false", typ: "bool", value: false},
		{name: "address", typ: "address", value: addr},
		{name: "bytes32", typ: "bytes32", value: hash},
		{name: "bytes4", typ: "bytes4", value: []byte{1, 2, 3, 4}},
		{name: "empty bytes", typ: "bytes", value: []byte{}},
		{name: "bytes spanning words", typ: "bytes", value: []byte(strings.Repeat("x", 33))},
		{name: "empty string", typ: "string", value: ""},
		{name: "string", typ: "string", value: "Only organizers can call this function!"},
		{name: "dynamic array", typ: "uint256[]", value: []any{big.NewInt(1), big.NewInt(2)}},
		{name: "empty dynamic array", typ: "address[]", value: []any{}},
		{name: "fixed array", typ: "uint64[2]", value: []any{big.NewInt(3), big.NewInt(4)}},
		{name: "string array", typ: "string[]", value: []any{"a", "bc", ""}},
		{name: "fixed array of dynamic", typ: "bytes[2]", value: []any{[]byte{0xaa}, []byte{}}},
		{name: "nested arrays", typ: "uint8[][]", value: []any{[]any{big.NewInt(1)}, []any{}, []any{big.NewInt(2), big.NewInt(3)}}},
		{name: "tuple", typ: "(uint256,bytes)", value: []any{big.NewInt(9), []byte("payload")}},
		{name: "tuple array", typ: "(address,string)[2]", value: []any{
			[]any{addr, "first"},
			[]any{common.Address{}, "second"},
		}},
		{name: "register ticket args", typ: "(uint256,uint256,bytes32,bytes32,bytes32,uint8)", value: []any{
			big.NewInt(1), big.NewInt(42), hash, hash, hash, big.NewInt(27),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ := MustParseType(tt.typ)
			encoded, err := Encode([]Type{typ}, []any{tt.value})
			require.NoError(t, err)
			assert.Zero(t, len(encoded)%32)

			decoded, err := Decode([]Type{typ}, encoded)
			require.NoError(t, err)
			require.Len(t, decoded, 1)
			assert.Equal(t, normalize(tt.value), normalize(decoded[0]))
		})
	}
}

func TestEncode_AcceptedGoValues(t *testing.T) {
	tests := []struct {
		name  string
		typ   Type
		value any
		want  []byte
	}{
		{name: "int", typ: Uint256, value: 5, want: words("0x05")},
		{name: "uint64", typ: Uint256, value: uint64(5), want: words("0x05")},
		{name: "big.Int value", typ: Uint256, value: *big.NewInt(5), want: words("0x05")},
		{name: "negative int64", typ: Int256, value: int64(-1), want: words("0x" + strings.Repeat("ff", 32))},
		{name: "hash as bytes32", typ: Bytes32, value: common.HexToHash("0x01"), want: words("0x01")},
		{name: "array as bytes32", typ: Bytes32, value: [32]byte{31: 1}, want: words("0x01")},
		{name: "typed slice", typ: ArrayOf(Address), value: []common.Address{{}}, want: words("0x20", "0x01", "0x00")[32:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeValue(tt.typ, tt.value)
			require.NoError(t, err)
			assert.Equal(t, hex.EncodeToString(tt.want), hex.EncodeToString(got))
		})
	}
}

func TestEncode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		types  []Type
		values []any
	}{
		{name: "uint8 overflow", types: []Type{Uint8}, values: []any{256}},
		{name: "negative uint", types: []Type{Uint256}, values: []any{big.NewInt(-1)}},
		{name: "int8 overflow", types: []Type{MustParseType("int8")}, values: []any{128}},
		{name: "int8 underflow", types: []Type{MustParseType("int8")}, values: []any{-129}},
		{name: "uint256 overflow", types: []Type{Uint256}, values: []any{new(big.Int).Lsh(big.NewInt(1), 256)}},
		{name: "nil big int", types: []Type{Uint256}, values: []any{(*big.Int)(nil)}},
		{name: "short bytes32", types: []Type{Bytes32}, values: []any{make([]byte, 31)}},
		{name: "string for address", types: []Type{Address}, values: []any{"0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"}},
		{name: "int for bool", types: []Type{Bool}, values: []any{1}},
		{name: "fixed array length", types: []Type{MustParseType("uint256[2]")}, values: []any{[]any{1}}},
		{name: "tuple arity", types: []Type{MustParseType("(uint256,bool)")}, values: []any{[]any{1}}},
		{name: "value count", types: []Type{Uint256, Bool}, values: []any{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.types, tt.values)
			require.Error(t, err)
			assert.True(t, cerrors.IsCode(err, cerrors.ErrCodeEncode))
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name     string
		types    []Type
		data     []byte
		sentinel error
	}{
		{name: "short word", types: []Type{Uint256}, data: make([]byte, 31), sentinel: cerrors.ErrLengthMismatch},
		{name: "empty data", types: []Type{Address}, data: nil, sentinel: cerrors.ErrLengthMismatch},
		{name: "short static array", types: []Type{MustParseType("uint256[2]")}, data: words("0x01"), sentinel: cerrors.ErrLengthMismatch},
		{name: "offset beyond buffer", types: []Type{String}, data: words("0x40"), sentinel: cerrors.ErrOffsetOutOfBounds},
		{name: "offset at end of buffer", types: []Type{Bytes}, data: words("0x20"), sentinel: cerrors.ErrOffsetOutOfBounds},
		{name: "huge offset", types: []Type{Bytes}, data: words("0x" + strings.Repeat("ff", 32)), sentinel: cerrors.ErrOffsetOutOfBounds},
		{name: "string length beyond buffer", types: []Type{String}, data: words("0x20", "0x64"), sentinel: cerrors.ErrLengthMismatch},
		{name: "array length beyond buffer", types: []Type{ArrayOf(Uint256)}, data: words("0x20", "0x02", "0x01"), sentinel: cerrors.ErrLengthMismatch},
		{name: "huge array length", types: []Type{ArrayOf(Uint256)}, data: words("0x20", "0xffffffffffffffff"), sentinel: cerrors.ErrLengthMismatch},
		{name: "bool two", types: []Type{Bool}, data: words("0x02"), sentinel: cerrors.ErrInvalidValue},
		{name: "dirty address", types: []Type{Address}, data: words("0x01" + strings.Repeat("00", 31)), sentinel: cerrors.ErrInvalidValue},
		{name: "uint8 overflow", types: []Type{Uint8}, data: words("0x0100"), sentinel: cerrors.ErrInvalidValue},
		{name: "int8 not sign extended", types: []Type{MustParseType("int8")}, data: words("0xff"), sentinel: cerrors.ErrInvalidValue},
		{name: "bytes4 dirty padding", types: []Type{MustParseType("bytes4")}, data: words("0x01"), sentinel: cerrors.ErrInvalidValue},
		{
			name:     "inner arrays share one tail",
			types:    []Type{MustParseType("uint256[][]")},
			data:     words("0x20", "0x04", "0x80", "0x80", "0x80", "0x80", "0x04", "0x01", "0x02", "0x03", "0x04"),
			sentinel: cerrors.ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.types, tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.True(t, cerrors.IsCode(err, cerrors.ErrCodeDecode))
		})
	}
}

func TestDecode_IgnoresTrailingBytes(t *testing.T) {
	out, err := Decode([]Type{Uint256}, words("0x2a", "0xff"))
	require.NoError(t, err)
	assert.Equal(t, "42", normalize(out[0]))
}

// TestEncode_MatchesGethPack checks the codec against go-ethereum's own packer.
func TestEncode_MatchesGethPack(t *testing.T) {
	addr := common.HexToAddress("0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2")

	tests := []struct {
		typ  string
		geth any
		ours any
	}{
		{typ: "uint256", geth: big.NewInt(123456789), ours: big.NewInt(123456789)},
		{typ: "int256", geth: big.NewInt(-42), ours: big.NewInt(-42)},
		{typ: "uint8", geth: uint8(7), ours: uint8(7)},
		{typ: "int64", geth: int64(-5), ours: int64(-5)},
		{typ: "bool", geth: true, ours: true},
		{typ: "address", geth: addr, ours: addr},
		{typ: "bytes32", geth: [32]byte{0: 0xab, 31: 0xcd}, ours: [32]byte{0: 0xab, 31: 0xcd}},
		{typ: "bytes", geth: []byte("hello world"), ours: []byte("hello world")},
		{typ: "string", geth: "foo", ours: "foo"},
		{typ: "uint256[]", geth: []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}, ours: []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}},
		{typ: "uint256[2]", geth: [2]*big.Int{big.NewInt(4), big.NewInt(5)}, ours: []any{big.NewInt(4), big.NewInt(5)}},
		{typ: "address[]", geth: []common.Address{addr, {}}, ours: []common.Address{addr, {}}},
		{typ: "string[]", geth: []string{"a", "bcd", strings.Repeat("z", 40)}, ours: []string{"a", "bcd", strings.Repeat("z", 40)}},
		{typ: "bytes[]", geth: [][]byte{{1}, {}}, ours: [][]byte{{1}, {}}},
		{typ: "string[2]", geth: [2]string{"x", "y"}, ours: []any{"x", "y"}},
	}

	gethArgs := gethabi.Arguments{}
	var gethValues, ourValues []any
	var ourTypes []Type

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			gethType, err := gethabi.NewType(tt.typ, "", nil)
			require.NoError(t, err)

			want, err := gethabi.Arguments{{Type: gethType}}.Pack(tt.geth)
			require.NoError(t, err)

			got, err := Encode([]Type{MustParseType(tt.typ)}, []any{tt.ours})
			require.NoError(t, err)
			assert.Equal(t, hex.EncodeToString(want), hex.EncodeToString(got))
		})

		gethType, err := gethabi.NewType(tt.typ, "", nil)
		require.NoError(t, err)
		gethArgs = append(gethArgs, gethabi.Argument{Type: gethType})
		gethValues = append(gethValues, tt.geth)
		ourTypes = append(ourTypes, MustParseType(tt.typ))
		ourValues = append(ourValues, tt.ours)
	}

	t.Run("all together", func(t *testing.T) {
		want, err := gethArgs.Pack(gethValues...)
		require.NoError(t, err)
		got, err := Encode(ourTypes, ourValues)
		require.NoError(t, err)
		assert.Equal(t, hex.EncodeToString(want), hex.EncodeToString(got))

		// and go-ethereum can read what we wrote
		_, err = gethArgs.Unpack(got)
		require.NoError(t, err)
	})
}
