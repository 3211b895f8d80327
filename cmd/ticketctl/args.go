package main

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cast"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/abi"
)

// parseArgs converts command line strings into values for fn's inputs.
func parseArgs(fn abi.FunctionSignature, raw []string) ([]any, error) {
	if len(raw) != len(fn.Inputs) {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", fn.Canonical(), len(fn.Inputs), len(raw))
	}
	out := make([]any, len(raw))
	for i, in := range fn.Inputs {
		v, err := parseArg(in.Type, raw[i])
		if err != nil {
			name := in.Name
			if name == "" {
				name = fmt.Sprintf("arg%d", i)
			}
			return nil, fmt.Errorf("argument %s: %w", name, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseArg(t abi.Type, s string) (any, error) {
	s = strings.TrimSpace(s)
	switch t.Kind {
	case abi.KindUint:
		if t.Size <= 64 {
			return cast.ToUint64E(s)
		}
		return parseBig(s)
	case abi.KindInt:
		if t.Size <= 64 {
			return cast.ToInt64E(s)
		}
		return parseBig(s)
	case abi.KindBool:
		return cast.ToBoolE(s)
	case abi.KindAddress:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil
	case abi.KindFixedBytes:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", t, s, err)
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("%s needs %d bytes, got %d", t, t.Size, len(b))
		}
		return b, nil
	case abi.KindBytes:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("invalid bytes %q: %w", s, err)
		}
		return b, nil
	case abi.KindString:
		return s, nil
	default:
		return nil, fmt.Errorf("%s arguments are not supported on the command line", t)
	}
}

// parseBig accepts decimal or 0x-prefixed hex.
func parseBig(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

// formatValue renders a decoded value for output.
func formatValue(v any) string {
	switch x := v.(type) {
	case common.Address:
		return x.Hex()
	case []byte:
		return hexutil.Encode(x)
	case *big.Int:
		return x.String()
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return cast.ToString(v)
	}
}
