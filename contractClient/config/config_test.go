package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localNetworks() map[string]NetworkConfig {
	return map[string]NetworkConfig{
		"localhost": {ChainID: 31337, RPCURLs: []string{"http://127.0.0.1:8545"}},
	}
}

func TestValidateConfig(t *testing.T) {
	testCases := []struct {
		name        string
		config      *Config
		expectError bool
		errorMsg    string
		validate    func(t *testing.T, cfg *Config)
	}{
		{
			name: "Valid config with all fields",
			config: &Config{
				LogLevel:       2,
				LogFormat:      "json",
				DefaultNetwork: "localhost",
				Networks:       localNetworks(),
				TxManager: TxManagerConfig{
					PollIntervalMs:        500,
					MaxPollIntervalMs:     4000,
					PollMultiplier:        2,
					ReceiptTimeoutSeconds: 30,
					MaxRemoteFailures:     2,
				},
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 500, cfg.TxManager.PollIntervalMs)
				assert.Equal(t, float64(2), cfg.TxManager.PollMultiplier)
			},
		},
		{
			name: "Invalid log level (negative)",
			config: &Config{
				LogLevel:  -1,
				LogFormat: "json",
			},
			expectError: true,
			errorMsg:    "log level must be between 0 and 5",
		},
		{
			name: "Invalid log level (too high)",
			config: &Config{
				LogLevel:  6,
				LogFormat: "json",
			},
			expectError: true,
			errorMsg:    "log level must be between 0 and 5",
		},
		{
			name: "Invalid log format",
			config: &Config{
				LogLevel:  2,
				LogFormat: "xml",
			},
			expectError: true,
			errorMsg:    "log format must be 'json' or 'console'",
		},
		{
			name: "Config with defaults applied",
			config: &Config{
				LogLevel:  1,
				LogFormat: "console",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "localhost", cfg.DefaultNetwork)
				assert.Contains(t, cfg.Networks, "mumbai")
				assert.Equal(t, uint64(80001), cfg.Networks["mumbai"].ChainID)
				assert.Equal(t, uint64(2000), cfg.Networks["localhost"].MaxBlockSpan)
				assert.Equal(t, 1000, cfg.TxManager.PollIntervalMs)
				assert.Equal(t, 10000, cfg.TxManager.MaxPollIntervalMs)
				assert.Equal(t, 1.5, cfg.TxManager.PollMultiplier)
				assert.Equal(t, 120, cfg.TxManager.ReceiptTimeoutSeconds)
				assert.Equal(t, 5, cfg.TxManager.MaxRemoteFailures)
			},
		},
		{
			name: "Unknown default network",
			config: &Config{
				LogFormat:      "json",
				DefaultNetwork: "mainnet",
				Networks:       localNetworks(),
			},
			expectError: true,
			errorMsg:    `default network "mainnet" is not configured`,
		},
		{
			name: "Network without chain id",
			config: &Config{
				LogFormat:      "json",
				DefaultNetwork: "localhost",
				Networks:       map[string]NetworkConfig{"localhost": {RPCURLs: []string{"http://127.0.0.1:8545"}}},
			},
			expectError: true,
			errorMsg:    "network localhost: chain_id is required",
		},
		{
			name: "Invalid contract address",
			config: &Config{
				LogFormat: "json",
				Networks:  localNetworks(),
				Contracts: map[string]map[string]string{"RegisterContract": {"31337": "0x1234"}},
			},
			expectError: true,
			errorMsg:    `invalid address "0x1234"`,
		},
		{
			name: "Poll multiplier below one",
			config: &Config{
				LogFormat: "json",
				Networks:  localNetworks(),
				TxManager: TxManagerConfig{PollMultiplier: 0.5},
			},
			expectError: true,
			errorMsg:    "poll multiplier must be at least 1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateConfig(tc.config)
			if tc.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errorMsg)
				return
			}
			require.NoError(t, err)
			if tc.validate != nil {
				tc.validate(t, tc.config)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	home := t.TempDir()
	cfg := &Config{
		LogLevel:       0,
		LogFormat:      "json",
		DefaultNetwork: "localhost",
		Networks:       localNetworks(),
		Contracts: map[string]map[string]string{
			"RegisterContract": {"31337": "0x5FbDB2315678afecb367f032d93F642f64180aa3"},
		},
		PrivateKey: "must-not-be-written",
	}
	require.NoError(t, Save(cfg, home))

	raw, err := os.ReadFile(filepath.Join(home, configSubdir, configFileName))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "must-not-be-written")

	loaded, err := Load(home)
	require.NoError(t, err)
	assert.Equal(t, home, loaded.Home)
	assert.Equal(t, "json", loaded.LogFormat)
	assert.Empty(t, loaded.PrivateKey)

	addrs, err := loaded.ContractAddresses("RegisterContract")
	require.NoError(t, err)
	assert.Equal(t, map[uint64]common.Address{
		31337: common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
	}, addrs)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.DefaultNetwork)
	assert.Equal(t, "ticketctl.db", cfg.DatabaseFile)

	name, network, err := cfg.Network("")
	require.NoError(t, err)
	assert.Equal(t, "localhost", name)
	assert.Equal(t, uint64(31337), network.ChainID)

	_, _, err = cfg.Network("ropsten")
	assert.ErrorContains(t, err, `unknown network "ropsten"`)
}

func TestLoad_Malformed(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, configSubdir), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(home, configSubdir, configFileName), []byte("{"), 0o600))

	_, err := Load(home)
	assert.ErrorContains(t, err, "failed to unmarshal config")
}

func TestLoadDefaultConfig(t *testing.T) {
	cfg, err := LoadDefaultConfig()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(defaultConfigJSON, &raw))
	assert.Contains(t, raw, "tx_manager")
	assert.Len(t, cfg.Networks, 2)
}

func TestApplyEnv(t *testing.T) {
	t.Run("rpc override and key", func(t *testing.T) {
		t.Setenv(EnvRPCURLs, "http://a:8545, http://b:8545,")
		t.Setenv(EnvPrivateKey, "0xabc")
		t.Setenv(envLegacyPrivateKey, "0xdef")

		cfg, err := LoadDefaultConfig()
		require.NoError(t, err)
		ApplyEnv(cfg, "")

		assert.Equal(t, []string{"http://a:8545", "http://b:8545"}, cfg.Networks["localhost"].RPCURLs)
		assert.Equal(t, "0xabc", cfg.PrivateKey)
	})

	t.Run("legacy key and url expansion", func(t *testing.T) {
		t.Setenv(EnvRPCURLs, "")
		t.Setenv(EnvPrivateKey, "")
		t.Setenv(envLegacyPrivateKey, "0xdef")
		t.Setenv("API_KEY", "secret")

		cfg, err := LoadDefaultConfig()
		require.NoError(t, err)
		ApplyEnv(cfg, "mumbai")

		assert.Equal(t, "0xdef", cfg.PrivateKey)
		assert.Equal(t, []string{"https://polygon-mumbai.g.alchemy.com/v2/secret"}, cfg.Networks["mumbai"].RPCURLs)
	})
}

func TestLoadDotEnv(t *testing.T) {
	const key = "TICKETCTL_TEST_DOTENV"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o600))

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "from-file", os.Getenv(key))
}
