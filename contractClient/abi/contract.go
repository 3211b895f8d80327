package abi

import (
	"fmt"
	"io"
	"sort"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"

	cerrors "github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/errors"
)

// Contract holds the function, event and error tables of one contract
// interface. It is built once and never mutated afterwards.
type Contract struct {
	Constructor FunctionSignature
	Functions   map[string]FunctionSignature
	Events      map[string]EventSignature
	Errors      map[string]ErrorSignature

	functionsBySelector map[[4]byte]string
	errorsBySelector    map[[4]byte]string
}

// MustParseJSON is ParseJSON over a string literal that panics on error.
func MustParseJSON(definition string) *Contract {
	c, err := ParseJSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return c
}

// ParseJSON reads a standard ABI JSON document. Overloaded functions are keyed
// by the disambiguated names go-ethereum assigns (transfer, transfer0, ...).
func ParseJSON(r io.Reader) (*Contract, error) {
	parsed, err := gethabi.JSON(r)
	if err != nil {
		return nil, cerrors.NewEngineError(cerrors.ErrCodeValidation, "", "invalid abi json", err)
	}
	return FromGethABI(parsed)
}

// FromGethABI converts a parsed go-ethereum ABI into a Contract.
func FromGethABI(parsed gethabi.ABI) (*Contract, error) {
	c := &Contract{
		Functions:           make(map[string]FunctionSignature, len(parsed.Methods)),
		Events:              make(map[string]EventSignature, len(parsed.Events)),
		Errors:              make(map[string]ErrorSignature, len(parsed.Errors)),
		functionsBySelector: make(map[[4]byte]string, len(parsed.Methods)),
		errorsBySelector:    make(map[[4]byte]string, len(parsed.Errors)),
	}

	ctor, err := convertMethod(parsed.Constructor)
	if err != nil {
		return nil, err
	}
	c.Constructor = ctor

	for name, m := range parsed.Methods {
		fn, err := convertMethod(m)
		if err != nil {
			return nil, err
		}
		c.Functions[name] = fn
		c.functionsBySelector[fn.Selector()] = name
	}

	for name, ev := range parsed.Events {
		inputs := make([]EventParam, len(ev.Inputs))
		for i, arg := range ev.Inputs {
			t, err := convertType(arg.Type)
			if err != nil {
				return nil, fmt.Errorf("event %s: %w", ev.Name, err)
			}
			inputs[i] = EventParam{Param: Param{Name: arg.Name, Type: t}, Indexed: arg.Indexed}
		}
		c.Events[name] = EventSignature{Name: ev.RawName, Inputs: inputs, Anonymous: ev.Anonymous}
	}

	for name, e := range parsed.Errors {
		inputs, err := convertArguments(e.Inputs)
		if err != nil {
			return nil, fmt.Errorf("error %s: %w", e.Name, err)
		}
		sig := ErrorSignature{Name: e.Name, Inputs: inputs}
		c.Errors[name] = sig
		c.errorsBySelector[sig.Selector()] = name
	}

	return c, nil
}

// Function looks up a function by name.
func (c *Contract) Function(name string) (FunctionSignature, error) {
	fn, ok := c.Functions[name]
	if !ok {
		return FunctionSignature{}, cerrors.NewValidationError(fmt.Sprintf("no function %q", name))
	}
	return fn, nil
}

// FunctionBySelector finds the function whose selector prefixes calldata.
func (c *Contract) FunctionBySelector(sel [4]byte) (FunctionSignature, bool) {
	name, ok := c.functionsBySelector[sel]
	if !ok {
		return FunctionSignature{}, false
	}
	return c.Functions[name], true
}

// Event looks up an event by name.
func (c *Contract) Event(name string) (EventSignature, error) {
	ev, ok := c.Events[name]
	if !ok {
		return EventSignature{}, cerrors.NewValidationError(fmt.Sprintf("no event %q", name))
	}
	return ev, nil
}

// FunctionNames returns the sorted function names.
func (c *Contract) FunctionNames() []string {
	names := make([]string, 0, len(c.Functions))
	for name := range c.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pack encodes a call to the named function.
func (c *Contract) Pack(name string, args ...any) ([]byte, error) {
	fn, err := c.Function(name)
	if err != nil {
		return nil, err
	}
	return fn.EncodeCall(args...)
}

// Unpack decodes the return payload of the named function.
func (c *Contract) Unpack(name string, data []byte) ([]any, error) {
	fn, err := c.Function(name)
	if err != nil {
		return nil, err
	}
	return fn.DecodeOutput(data)
}

// PackConstructor encodes constructor arguments without a selector.
func (c *Contract) PackConstructor(args ...any) ([]byte, error) {
	data, err := Encode(c.Constructor.InputTypes(), args)
	if err != nil {
		return nil, fmt.Errorf("encode constructor: %w", err)
	}
	return data, nil
}

// DecodeRevert renders revert data as a reason string. Error(string) and
// Panic(uint256) are always understood; custom errors are resolved through
// the contract's error table.
func (c *Contract) DecodeRevert(data []byte) (string, bool) {
	if reason, ok := UnpackRevert(data); ok {
		return reason, true
	}
	if len(data) < 4 {
		return "", false
	}
	var sel [4]byte
	copy(sel[:], data[:4])
	name, ok := c.errorsBySelector[sel]
	if !ok {
		return "", false
	}
	sig := c.Errors[name]
	values, err := Decode(paramTypes(sig.Inputs), data[4:])
	if err != nil {
		return "", false
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return sig.Name + "(" + strings.Join(parts, ", ") + ")", true
}

func convertMethod(m gethabi.Method) (FunctionSignature, error) {
	inputs, err := convertArguments(m.Inputs)
	if err != nil {
		return FunctionSignature{}, fmt.Errorf("function %s: %w", m.Name, err)
	}
	outputs, err := convertArguments(m.Outputs)
	if err != nil {
		return FunctionSignature{}, fmt.Errorf("function %s: %w", m.Name, err)
	}

	mutability := Write
	if m.IsConstant() {
		mutability = Read
	}
	return FunctionSignature{
		Name:       m.RawName,
		Inputs:     inputs,
		Outputs:    outputs,
		Mutability: mutability,
		Payable:    m.IsPayable(),
	}, nil
}

func convertArguments(args gethabi.Arguments) ([]Param, error) {
	params := make([]Param, len(args))
	for i, arg := range args {
		t, err := convertType(arg.Type)
		if err != nil {
			return nil, err
		}
		params[i] = Param{Name: arg.Name, Type: t}
	}
	return params, nil
}

func convertType(t gethabi.Type) (Type, error) {
	switch t.T {
	case gethabi.IntTy:
		return NewInt(t.Size)
	case gethabi.UintTy:
		return NewUint(t.Size)
	case gethabi.BoolTy:
		return Bool, nil
	case gethabi.StringTy:
		return String, nil
	case gethabi.AddressTy:
		return Address, nil
	case gethabi.BytesTy:
		return Bytes, nil
	case gethabi.FixedBytesTy:
		return NewFixedBytes(t.Size)
	case gethabi.HashTy:
		return Bytes32, nil
	case gethabi.SliceTy:
		elem, err := convertType(*t.Elem)
		if err != nil {
			return Type{}, err
		}
		return ArrayOf(elem), nil
	case gethabi.ArrayTy:
		elem, err := convertType(*t.Elem)
		if err != nil {
			return Type{}, err
		}
		return FixedArrayOf(elem, t.Size)
	case gethabi.TupleTy:
		fields := make([]Type, len(t.TupleElems))
		for i, e := range t.TupleElems {
			f, err := convertType(*e)
			if err != nil {
				return Type{}, err
			}
			fields[i] = f
		}
		tuple := TupleOf(fields...)
		tuple.FieldNames = append([]string(nil), t.TupleRawNames...)
		return tuple, nil
	default:
		return Type{}, cerrors.NewValidationError(fmt.Sprintf("unsupported abi type %s", t.String()))
	}
}
