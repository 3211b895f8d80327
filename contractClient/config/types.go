package config

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cast"
)

type Config struct {
	// Log Config
	LogLevel   int    `json:"log_level"`   // e.g., 0 = debug, 1 = info, etc.
	LogFormat  string `json:"log_format"`  // "json" or "console"
	LogSampler bool   `json:"log_sampler"` // if true, samples logs (e.g., 1 in 5)

	Home           string `json:"home"`            // Client home directory (default: ~/.ticketctl)
	DefaultNetwork string `json:"default_network"` // Network used when none is given on the command line
	DatabaseFile   string `json:"database_file"`   // SQLite file under <home>/data, empty disables persistence

	Networks map[string]NetworkConfig `json:"networks"` // Network name to endpoint settings

	// Contracts maps a contract name to chain id (decimal) to address.
	Contracts map[string]map[string]string `json:"contracts"`

	TxManager TxManagerConfig `json:"tx_manager"`

	// PrivateKey is only ever taken from the environment.
	PrivateKey string `json:"-"`
}

// NetworkConfig holds everything needed to talk to one chain.
type NetworkConfig struct {
	ChainID uint64   `json:"chain_id"`
	RPCURLs []string `json:"rpc_urls"` // ${VAR} references are expanded from the environment

	GasPriceMultiplierPercent uint64 `json:"gas_price_multiplier_percent,omitempty"` // default 100
	MaxGasPriceGwei           uint64 `json:"max_gas_price_gwei,omitempty"`           // 0 = no cap
	GasLimitMarginPercent     uint64 `json:"gas_limit_margin_percent,omitempty"`     // default 100
	MaxBlockSpan              uint64 `json:"max_block_span,omitempty"`               // FilterLogs page size
}

// TxManagerConfig bounds receipt polling.
type TxManagerConfig struct {
	PollIntervalMs        int     `json:"poll_interval_ms"`
	MaxPollIntervalMs     int     `json:"max_poll_interval_ms"`
	PollMultiplier        float64 `json:"poll_multiplier"`
	ReceiptTimeoutSeconds int     `json:"receipt_timeout_seconds"`
	MaxRemoteFailures     int     `json:"max_remote_failures"`
}

// Network returns the settings of name, or of the default network when name
// is empty.
func (c *Config) Network(name string) (string, NetworkConfig, error) {
	if name == "" {
		name = c.DefaultNetwork
	}
	n, ok := c.Networks[name]
	if !ok {
		return "", NetworkConfig{}, fmt.Errorf("unknown network %q (configured: %v)", name, c.networkNames())
	}
	return name, n, nil
}

func (c *Config) networkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ContractAddresses returns the configured deployments of contract keyed by
// chain id.
func (c *Config) ContractAddresses(contract string) (map[uint64]common.Address, error) {
	out := make(map[uint64]common.Address)
	for chain, addr := range c.Contracts[contract] {
		id, err := cast.ToUint64E(chain)
		if err != nil {
			return nil, fmt.Errorf("contract %s: invalid chain id %q: %w", contract, chain, err)
		}
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("contract %s: invalid address %q for chain %d", contract, addr, id)
		}
		out[id] = common.HexToAddress(addr)
	}
	return out, nil
}
