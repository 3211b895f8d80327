package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	configSubdir   = "config"
	configFileName = "ticketctl_config.json"

	EnvRPCURLs    = "TICKETCTL_RPC_URLS"
	EnvPrivateKey = "TICKETCTL_PRIVATE_KEY"
	// envLegacyPrivateKey is the variable the hardhat scripts read.
	envLegacyPrivateKey = "PRIVATE_KEY"
)

//go:embed default_config.json
var defaultConfigJSON []byte

func validateConfig(cfg *Config) error {
	// Validate log level
	if cfg.LogLevel < 0 || cfg.LogLevel > 5 {
		return fmt.Errorf("log level must be between 0 and 5")
	}

	// Validate log format
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console'")
	}

	if len(cfg.Networks) == 0 {
		var defaultCfg Config
		if err := json.Unmarshal(defaultConfigJSON, &defaultCfg); err == nil {
			cfg.Networks = defaultCfg.Networks
		} else {
			cfg.Networks = make(map[string]NetworkConfig)
		}
	}
	if cfg.DefaultNetwork == "" {
		cfg.DefaultNetwork = "localhost"
	}
	if _, ok := cfg.Networks[cfg.DefaultNetwork]; !ok {
		return fmt.Errorf("default network %q is not configured", cfg.DefaultNetwork)
	}
	for name, n := range cfg.Networks {
		if n.ChainID == 0 {
			return fmt.Errorf("network %s: chain_id is required", name)
		}
		if len(n.RPCURLs) == 0 {
			return fmt.Errorf("network %s: at least one rpc url is required", name)
		}
		if n.MaxBlockSpan == 0 {
			n.MaxBlockSpan = 2000
		}
		cfg.Networks[name] = n
	}

	for contract := range cfg.Contracts {
		if _, err := cfg.ContractAddresses(contract); err != nil {
			return err
		}
	}

	// Set defaults for transaction manager
	if cfg.TxManager.PollIntervalMs == 0 {
		cfg.TxManager.PollIntervalMs = 1000
	}
	if cfg.TxManager.MaxPollIntervalMs == 0 {
		cfg.TxManager.MaxPollIntervalMs = 10000
	}
	if cfg.TxManager.PollMultiplier == 0 {
		cfg.TxManager.PollMultiplier = 1.5
	}
	if cfg.TxManager.ReceiptTimeoutSeconds == 0 {
		cfg.TxManager.ReceiptTimeoutSeconds = 120
	}
	if cfg.TxManager.MaxRemoteFailures == 0 {
		cfg.TxManager.MaxRemoteFailures = 5
	}
	if cfg.TxManager.PollMultiplier < 1 {
		return fmt.Errorf("poll multiplier must be at least 1")
	}

	return nil
}

// Save writes the given config to <basePath>/config/ticketctl_config.json.
func Save(cfg *Config, basePath string) error {
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	configDir := filepath.Join(basePath, configSubdir)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configDir, configFileName)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Load reads the config from <basePath>/config/ticketctl_config.json. A
// missing file yields the embedded defaults. Environment overrides are not
// applied; see ApplyEnv.
func Load(basePath string) (Config, error) {
	configFile := filepath.Join(basePath, configSubdir, configFileName)
	data, err := os.ReadFile(filepath.Clean(configFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data = defaultConfigJSON
	case err != nil:
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Home == "" {
		cfg.Home = basePath
	}
	if err := validateConfig(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDefaultConfig loads the default configuration from embedded JSON
func LoadDefaultConfig() (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(defaultConfigJSON, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal default config: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv applies environment overrides: TICKETCTL_RPC_URLS (comma
// separated) replaces the RPC URLs of network, or of the default network
// when network is empty, and TICKETCTL_PRIVATE_KEY, or PRIVATE_KEY, sets the
// signing key. ${VAR} references inside RPC URLs are expanded.
func ApplyEnv(cfg *Config, network string) {
	if network == "" {
		network = cfg.DefaultNetwork
	}
	if urls := os.Getenv(EnvRPCURLs); urls != "" {
		if n, ok := cfg.Networks[network]; ok {
			n.RPCURLs = splitList(urls)
			cfg.Networks[network] = n
		}
	}

	switch {
	case os.Getenv(EnvPrivateKey) != "":
		cfg.PrivateKey = os.Getenv(EnvPrivateKey)
	case os.Getenv(envLegacyPrivateKey) != "":
		cfg.PrivateKey = os.Getenv(envLegacyPrivateKey)
	}

	for name, n := range cfg.Networks {
		expanded := make([]string, len(n.RPCURLs))
		for i, u := range n.RPCURLs {
			expanded[i] = os.ExpandEnv(u)
		}
		n.RPCURLs = expanded
		cfg.Networks[name] = n
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
