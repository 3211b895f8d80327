package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/rs/zerolog"
)

// GasSource is the part of the node the oracle asks.
type GasSource interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

// GasOracleConfig tunes the node's suggestions. Percentages are applied as
// value * percent / 100.
type GasOracleConfig struct {
	PriceMultiplierPercent uint64
	LimitMarginPercent     uint64

	// MaxGasPrice caps the price in wei; nil means no cap.
	MaxGasPrice *big.Int
}

// GasOracle prices transactions from the node's suggestions.
type GasOracle struct {
	source GasSource
	cfg    GasOracleConfig
	logger zerolog.Logger
}

// NewGasOracle creates an oracle. Zero percentages mean 100, no adjustment.
func NewGasOracle(source GasSource, cfg GasOracleConfig, logger zerolog.Logger) *GasOracle {
	if cfg.PriceMultiplierPercent == 0 {
		cfg.PriceMultiplierPercent = 100
	}
	if cfg.LimitMarginPercent == 0 {
		cfg.LimitMarginPercent = 100
	}
	return &GasOracle{
		source: source,
		cfg:    cfg,
		logger: logger.With().Str("component", "evm_gas_oracle").Logger(),
	}
}

// GasPrice returns the suggested price scaled by the multiplier and capped.
func (g *GasOracle) GasPrice(ctx context.Context) (*big.Int, error) {
	suggested, err := g.source.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	price := percent(suggested, g.cfg.PriceMultiplierPercent)
	if g.cfg.MaxGasPrice != nil && price.Cmp(g.cfg.MaxGasPrice) > 0 {
		price = new(big.Int).Set(g.cfg.MaxGasPrice)
	}

	g.logger.Debug().
		Str("suggested_gwei", weiToGwei(suggested)).
		Str("gas_price_gwei", weiToGwei(price)).
		Msg("priced transaction")
	return price, nil
}

// GasLimit estimates msg and adds the margin. A revert during estimation is
// returned as the node reported it.
func (g *GasOracle) GasLimit(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	estimate, err := g.source.EstimateGas(ctx, msg)
	if err != nil {
		return 0, err
	}
	return percent(new(big.Int).SetUint64(estimate), g.cfg.LimitMarginPercent).Uint64(), nil
}

// StaticGas uses fixed values.
type StaticGas struct {
	Price *big.Int
	Limit uint64
}

func (s StaticGas) GasPrice(context.Context) (*big.Int, error) {
	return new(big.Int).Set(s.Price), nil
}

func (s StaticGas) GasLimit(context.Context, ethereum.CallMsg) (uint64, error) {
	return s.Limit, nil
}

func percent(v *big.Int, pct uint64) *big.Int {
	out := new(big.Int).Mul(v, new(big.Int).SetUint64(pct))
	return out.Div(out, big.NewInt(100))
}

// weiToGwei converts wei to gwei for logging
func weiToGwei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	gwei := new(big.Int).Div(wei, big.NewInt(1e9))
	return gwei.String()
}
