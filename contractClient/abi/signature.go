package abi

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Mutability splits functions into simulated reads and signed writes.
type Mutability int

const (
	// Read covers view and pure functions.
	Read Mutability = iota
	// Write covers nonpayable and payable functions.
	Write
)

func (m Mutability) String() string {
	if m == Read {
		return "read"
	}
	return "write"
}

// Param is a named, typed function or error parameter.
type Param struct {
	Name string
	Type Type
}

// FunctionSignature describes one contract function.
type FunctionSignature struct {
	Name       string
	Inputs     []Param
	Outputs    []Param
	Mutability Mutability
	Payable    bool
}

// Canonical returns name(type1,type2,...).
func (f FunctionSignature) Canonical() string {
	return canonical(f.Name, paramTypes(f.Inputs))
}

// Selector returns the first 4 bytes of the Keccak-256 of the canonical signature.
func (f FunctionSignature) Selector() [4]byte {
	return defaultDeriver.FunctionSelector(f)
}

func (f FunctionSignature) InputTypes() []Type  { return paramTypes(f.Inputs) }
func (f FunctionSignature) OutputTypes() []Type { return paramTypes(f.Outputs) }

// EncodeCall returns selector || encode(args).
func (f FunctionSignature) EncodeCall(args ...any) ([]byte, error) {
	body, err := Encode(f.InputTypes(), args)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f.Canonical(), err)
	}
	sel := f.Selector()
	return append(sel[:], body...), nil
}

// DecodeOutput decodes a call return payload.
func (f FunctionSignature) DecodeOutput(data []byte) ([]any, error) {
	out, err := Decode(f.OutputTypes(), data)
	if err != nil {
		return nil, fmt.Errorf("decode %s output: %w", f.Canonical(), err)
	}
	return out, nil
}

// EventParam is an event input with its indexed flag.
type EventParam struct {
	Param
	Indexed bool
}

// EventSignature describes one contract event.
type EventSignature struct {
	Name      string
	Inputs    []EventParam
	Anonymous bool
}

// Canonical returns name(type1,type2,...) over all inputs, indexed or not.
func (e EventSignature) Canonical() string {
	types := make([]Type, len(e.Inputs))
	for i, in := range e.Inputs {
		types[i] = in.Type
	}
	return canonical(e.Name, types)
}

// Topic0 returns the Keccak-256 of the canonical signature.
func (e EventSignature) Topic0() common.Hash {
	return defaultDeriver.EventTopic0(e)
}

// ErrorSignature describes a custom error declared by a contract.
type ErrorSignature struct {
	Name   string
	Inputs []Param
}

func (e ErrorSignature) Canonical() string {
	return canonical(e.Name, paramTypes(e.Inputs))
}

func (e ErrorSignature) Selector() [4]byte {
	return defaultDeriver.selector(e.Canonical())
}

// Deriver hashes canonical signatures and remembers the results.
// It is safe for concurrent use.
type Deriver struct {
	cache sync.Map
}

var defaultDeriver = NewDeriver()

func NewDeriver() *Deriver {
	return &Deriver{}
}

// FunctionSelector returns the 4-byte selector of f.
func (d *Deriver) FunctionSelector(f FunctionSignature) [4]byte {
	return d.selector(f.Canonical())
}

// EventTopic0 returns the topic0 of e.
func (d *Deriver) EventTopic0(e EventSignature) common.Hash {
	return d.Hash(e.Canonical())
}

// Hash returns Keccak-256 of signature, cached by signature.
func (d *Deriver) Hash(signature string) common.Hash {
	if h, ok := d.cache.Load(signature); ok {
		return h.(common.Hash)
	}
	h := crypto.Keccak256Hash([]byte(signature))
	d.cache.Store(signature, h)
	return h
}

func (d *Deriver) selector(signature string) [4]byte {
	var sel [4]byte
	h := d.Hash(signature)
	copy(sel[:], h[:4])
	return sel
}

func canonical(name string, types []Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return name + "(" + strings.Join(names, ",") + ")"
}

func paramTypes(params []Param) []Type {
	types := make([]Type, len(params))
	for i, p := range params {
		types[i] = p.Type
	}
	return types
}
