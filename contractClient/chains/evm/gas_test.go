package evm

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGasOracle_GasPrice(t *testing.T) {
	gwei := big.NewInt(1_000_000_000)

	tests := []struct {
		name string
		cfg  GasOracleConfig
		want *big.Int
	}{
		{name: "unadjusted", cfg: GasOracleConfig{}, want: new(big.Int).Mul(gwei, big.NewInt(20))},
		{name: "multiplied", cfg: GasOracleConfig{PriceMultiplierPercent: 150}, want: new(big.Int).Mul(gwei, big.NewInt(30))},
		{
			name: "capped",
			cfg:  GasOracleConfig{PriceMultiplierPercent: 200, MaxGasPrice: new(big.Int).Mul(gwei, big.NewInt(25))},
			want: new(big.Int).Mul(gwei, big.NewInt(25)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := new(mockEthClient)
			backend.On("SuggestGasPrice", mock.Anything).Return(new(big.Int).Mul(gwei, big.NewInt(20)), nil).Once()

			price, err := NewGasOracle(backend, tt.cfg, zerolog.Nop()).GasPrice(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 0, tt.want.Cmp(price), "got %s", price)
		})
	}
}

func TestGasOracle_GasLimit(t *testing.T) {
	backend := new(mockEthClient)
	backend.On("EstimateGas", mock.Anything, mock.Anything).Return(uint64(50_000), nil).Once()

	limit, err := NewGasOracle(backend, GasOracleConfig{LimitMarginPercent: 120}, zerolog.Nop()).
		GasLimit(context.Background(), ethereum.CallMsg{})
	require.NoError(t, err)
	assert.Equal(t, uint64(60_000), limit)
}

func TestGasOracle_PassesErrorsThrough(t *testing.T) {
	revert := &revertError{data: "0x08c379a0"}
	backend := new(mockEthClient)
	backend.On("EstimateGas", mock.Anything, mock.Anything).Return(uint64(0), revert).Once()
	backend.On("SuggestGasPrice", mock.Anything).Return(nil, errors.New("unavailable")).Once()

	oracle := NewGasOracle(backend, GasOracleConfig{}, zerolog.Nop())
	_, err := oracle.GasLimit(context.Background(), ethereum.CallMsg{})
	assert.Same(t, revert, err)
	_, err = oracle.GasPrice(context.Background())
	assert.EqualError(t, err, "unavailable")
}

func TestStaticGas(t *testing.T) {
	price := big.NewInt(7)
	g := StaticGas{Price: price, Limit: 100_000}

	got, err := g.GasPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, price, got)
	got.SetInt64(8)
	assert.Equal(t, int64(7), price.Int64())

	limit, err := g.GasLimit(context.Background(), ethereum.CallMsg{})
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000), limit)
}

func TestWeiToGwei(t *testing.T) {
	assert.Equal(t, "0", weiToGwei(nil))
	assert.Equal(t, "25", weiToGwei(big.NewInt(25_500_000_000)))
}
