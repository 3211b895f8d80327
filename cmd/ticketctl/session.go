package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/api"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/bindings/register"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/chains/evm"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/config"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/db"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/events"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/logger"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/metrics"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/registry"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/txmanager"
)

// session is everything a command needs to talk to one network.
type session struct {
	cfg      config.Config
	network  string
	netCfg   config.NetworkConfig
	chainID  uint64
	client   *evm.RPCClient
	manager  *txmanager.Manager
	book     *registry.AddressBook
	database *db.DB
	journal  *db.TxJournal
	registry *prometheus.Registry
	query    *api.Server
	logger   zerolog.Logger
}

// openSession loads the config and connects to the selected network. A
// signer is only set up when write is true.
func openSession(ctx context.Context, write bool) (*session, error) {
	cfg, err := config.Load(homeFlag)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(&cfg, networkFlag)

	name, netCfg, err := cfg.Network(networkFlag)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:     cfg,
		network: name,
		netCfg:  netCfg,
		logger:  logger.Init(cfg).With().Str("network", name).Logger(),
	}
	ok := false
	defer func() {
		if !ok {
			s.Close()
		}
	}()

	s.client, err = evm.NewRPCClient(netCfg.RPCURLs, evm.DialConfig{ExpectedChainID: netCfg.ChainID}, s.logger)
	if err != nil {
		return nil, err
	}
	id, err := s.client.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	s.chainID = id.Uint64()

	s.registry = prometheus.NewRegistry()
	opts := []txmanager.Option{txmanager.WithListener(metrics.NewTxManager(s.registry).Listener())}

	if cfg.DatabaseFile != "" {
		s.database, err = db.OpenFileDB(filepath.Join(cfg.Home, "data"), cfg.DatabaseFile)
		if err != nil {
			return nil, err
		}
		s.journal = db.NewTxJournal(s.database, s.logger)
		opts = append(opts, txmanager.WithListener(s.journal.Listener()))
		s.book, err = registry.NewPersistentBook(register.ContractName, s.database, s.logger)
		if err != nil {
			return nil, err
		}
	} else {
		s.book = registry.NewAddressBook(register.ContractName, s.logger)
	}

	configured, err := cfg.ContractAddresses(register.ContractName)
	if err != nil {
		return nil, err
	}
	s.book.Load(configured)

	var (
		signer txmanager.Signer
		gas    txmanager.GasPolicy
	)
	if write {
		key, err := privateKey(cfg)
		if err != nil {
			return nil, err
		}
		signer, err = evm.NewKeySigner(key, id, s.client, s.logger)
		if err != nil {
			return nil, err
		}
		gas = evm.NewGasOracle(s.client, gasOracleConfig(netCfg), s.logger)
	}
	s.manager = txmanager.NewManager(s.client, signer, gas, managerConfig(cfg.TxManager), s.logger, opts...)

	if queryAddrFlag != "" {
		if err := s.startQueryServer(queryAddrFlag); err != nil {
			return nil, err
		}
	}

	ok = true
	return s, nil
}

// contract binds the RegisterContract instance known for this network.
func (s *session) contract() (*register.RegisterContract, error) {
	return register.Load(s.manager, s.book, s.chainID, s.logger, s.matcherOptions()...)
}

func (s *session) matcherOptions() []events.Option {
	if s.netCfg.MaxBlockSpan == 0 {
		return nil
	}
	return []events.Option{events.WithMaxBlockSpan(s.netCfg.MaxBlockSpan)}
}

// startQueryServer serves the address book, the journal and the metrics
// of this session on addr until Close.
func (s *session) startQueryServer(addr string) error {
	var txs api.TxSource
	if s.journal != nil {
		txs = s.journal
	}
	s.query = api.NewServer(s.logger, addr, s.book, txs, s.registry)
	return s.query.Start()
}

func (s *session) Close() {
	if s.query != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if err := s.query.Stop(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to stop query server")
		}
		cancel()
	}
	if s.client != nil {
		s.client.Close()
	}
	if s.database != nil {
		if err := s.database.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to close database")
		}
	}
}

// privateKey returns the configured key, prompting for it when stdin is a
// terminal and none is set.
func privateKey(cfg config.Config) (string, error) {
	if cfg.PrivateKey != "" {
		return cfg.PrivateKey, nil
	}
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("no signing key: set %s", config.EnvPrivateKey)
	}
	fmt.Fprint(os.Stderr, "Enter private key: ")
	keyBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read private key: %w", err)
	}
	key := strings.TrimSpace(string(keyBytes))
	if key == "" {
		return "", fmt.Errorf("no signing key provided")
	}
	return key, nil
}

func gasOracleConfig(n config.NetworkConfig) evm.GasOracleConfig {
	cfg := evm.GasOracleConfig{
		PriceMultiplierPercent: n.GasPriceMultiplierPercent,
		LimitMarginPercent:     n.GasLimitMarginPercent,
	}
	if n.MaxGasPriceGwei > 0 {
		cfg.MaxGasPrice = new(big.Int).Mul(new(big.Int).SetUint64(n.MaxGasPriceGwei), big.NewInt(1e9))
	}
	return cfg
}

func managerConfig(c config.TxManagerConfig) txmanager.Config {
	return txmanager.Config{
		PollInterval:      time.Duration(c.PollIntervalMs) * time.Millisecond,
		MaxPollInterval:   time.Duration(c.MaxPollIntervalMs) * time.Millisecond,
		PollMultiplier:    c.PollMultiplier,
		ReceiptTimeout:    time.Duration(c.ReceiptTimeoutSeconds) * time.Second,
		MaxRemoteFailures: c.MaxRemoteFailures,
	}
}
