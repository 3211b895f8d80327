package abi

import (
	"bytes"
	"fmt"
	"math/big"
)

var (
	// ErrorSelector prefixes revert data produced by require/revert with a message.
	ErrorSelector = [4]byte{0x08, 0xc3, 0x79, 0xa0}
	// PanicSelector prefixes revert data produced by failing assertions and checked arithmetic.
	PanicSelector = [4]byte{0x4e, 0x48, 0x7b, 0x71}
)

var panicReasons = map[uint64]string{
	0x00: "generic panic",
	0x01: "assert(false)",
	0x11: "arithmetic underflow or overflow",
	0x12: "division or modulo by zero",
	0x21: "enum overflow",
	0x22: "invalid encoded storage byte array accessed",
	0x31: "pop() on an empty array",
	0x32: "out-of-bounds access of an array or bytesN",
	0x41: "out of memory",
	0x51: "uninitialized function",
}

// UnpackRevert decodes Error(string) and Panic(uint256) revert payloads.
// It reports false for empty data and for any other selector.
func UnpackRevert(data []byte) (string, bool) {
	if len(data) < 4 {
		return "", false
	}
	switch {
	case bytes.Equal(data[:4], ErrorSelector[:]):
		out, err := Decode([]Type{String}, data[4:])
		if err != nil {
			return "", false
		}
		return out[0].(string), true

	case bytes.Equal(data[:4], PanicSelector[:]):
		out, err := Decode([]Type{Uint256}, data[4:])
		if err != nil {
			return "", false
		}
		code := out[0].(*big.Int)
		if code.IsUint64() {
			if reason, ok := panicReasons[code.Uint64()]; ok {
				return fmt.Sprintf("panic: 0x%x (%s)", code, reason), true
			}
		}
		return fmt.Sprintf("panic: 0x%x", code), true
	}
	return "", false
}
