package evm

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"

	cerrors "github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/errors"
)

// ethBackend is the subset of *ethclient.Client the engine talks to.
type ethBackend interface {
	ethereum.ContractCaller
	ethereum.TransactionSender
	ethereum.LogFilterer
	ethereum.GasPricer
	ethereum.GasEstimator
	TransactionReceipt(ctx context.Context, txHash ethcommon.Hash) (*types.Receipt, error)
	PendingNonceAt(ctx context.Context, account ethcommon.Address) (uint64, error)
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

// RPCClient is a failover pool of JSON-RPC endpoints for one chain.
type RPCClient struct {
	clients []ethBackend
	chainID *big.Int
	index   uint64
	mu      sync.RWMutex
	logger  zerolog.Logger
}

// DialConfig controls how endpoints are dialed.
type DialConfig struct {
	// ExpectedChainID rejects endpoints serving another chain. Zero accepts
	// whatever the first endpoint reports.
	ExpectedChainID uint64
	DialTimeout     time.Duration
	Retry           *cerrors.RetryConfig
}

// NewRPCClient dials every URL and keeps the ones that serve the expected
// chain. ws:// and wss:// endpoints also carry log subscriptions.
func NewRPCClient(rpcURLs []string, cfg DialConfig, logger zerolog.Logger) (*RPCClient, error) {
	if len(rpcURLs) == 0 {
		return nil, cerrors.NewConfigError("no RPC URLs provided", nil)
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 30 * time.Second
	}

	log := logger.With().Str("component", "evm_rpc_client").Logger()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	var (
		clients []ethBackend
		chainID *big.Int
	)
	if cfg.ExpectedChainID != 0 {
		chainID = new(big.Int).SetUint64(cfg.ExpectedChainID)
	}

	for _, url := range rpcURLs {
		var (
			client *ethclient.Client
			actual *big.Int
		)
		err := cerrors.RetryWithConfig(ctx, func() error {
			c, err := ethclient.DialContext(ctx, url)
			if err != nil {
				return cerrors.NewRemoteError("", "dial "+redactURL(url), err)
			}
			id, err := c.ChainID(ctx)
			if err != nil {
				c.Close()
				return cerrors.NewRemoteError("", "get chain id", err)
			}
			client, actual = c, id
			return nil
		}, cfg.Retry)
		if err != nil {
			log.Warn().Err(err).Str("url", redactURL(url)).Msg("failed to connect to RPC endpoint, skipping")
			continue
		}

		if chainID == nil {
			chainID = actual
		}
		if actual.Cmp(chainID) != 0 {
			client.Close()
			log.Warn().
				Str("url", redactURL(url)).
				Str("expected_chain_id", chainID.String()).
				Str("actual_chain_id", actual.String()).
				Msg("chain ID mismatch, closing client")
			continue
		}

		clients = append(clients, client)
		log.Info().Str("url", redactURL(url)).Str("chain_id", chainID.String()).Msg("connected to RPC endpoint")
	}

	if len(clients) == 0 {
		return nil, cerrors.NewRemoteError("", "failed to connect to any valid RPC endpoints", nil)
	}
	return newRPCClient(clients, chainID, log), nil
}

func newRPCClient(clients []ethBackend, chainID *big.Int, logger zerolog.Logger) *RPCClient {
	return &RPCClient{
		clients: clients,
		chainID: chainID,
		logger:  logger,
	}
}

// executeWithFailover runs fn against the endpoints in round-robin order
// until one succeeds. Answers that every endpoint would repeat, such as a
// revert or a missing receipt, are returned at once.
func (rc *RPCClient) executeWithFailover(ctx context.Context, operation string, fn func(ethBackend) error) error {
	rc.mu.RLock()
	clients := rc.clients
	rc.mu.RUnlock()

	if len(clients) == 0 {
		return cerrors.NewRemoteError("", "no RPC clients available for "+operation, nil)
	}

	var lastErr error
	for attempt := 0; attempt < len(clients); attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		index := atomic.AddUint64(&rc.index, 1) - 1
		err := fn(clients[index%uint64(len(clients))])
		if err == nil || isFinal(err) {
			return err
		}
		lastErr = err

		rc.logger.Warn().
			Str("operation", operation).
			Int("attempt", attempt+1).
			Err(err).
			Msg("operation failed, trying next endpoint")
	}
	return lastErr
}

// executionRevertedCode is the JSON-RPC error code nodes use for a revert.
const executionRevertedCode = 3

// isFinal reports errors that come from the chain rather than the endpoint.
// Every JSON-RPC error carries an ErrorData method, so only a revert code or
// attached data marks an answer as final. Rate limits and missing headers
// move on to the next endpoint.
func isFinal(err error) bool {
	if errors.Is(err, ethereum.NotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == executionRevertedCode {
		return true
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "execution reverted")
}

// ChainID returns the chain served by the pool.
func (rc *RPCClient) ChainID(ctx context.Context) (*big.Int, error) {
	if rc.chainID != nil {
		return new(big.Int).Set(rc.chainID), nil
	}
	var id *big.Int
	err := rc.executeWithFailover(ctx, "chain_id", func(client ethBackend) error {
		var innerErr error
		id, innerErr = client.ChainID(ctx)
		return innerErr
	})
	return id, err
}

// BlockNumber returns the latest block number.
func (rc *RPCClient) BlockNumber(ctx context.Context) (uint64, error) {
	var blockNum uint64
	err := rc.executeWithFailover(ctx, "get_block_number", func(client ethBackend) error {
		var innerErr error
		blockNum, innerErr = client.BlockNumber(ctx)
		return innerErr
	})
	return blockNum, err
}

// IsHealthy checks if any RPC in the pool answers.
func (rc *RPCClient) IsHealthy(ctx context.Context) bool {
	_, err := rc.BlockNumber(ctx)
	return err == nil
}

// CallContract executes an eth_call. The node's revert error is returned
// unchanged so its data field survives.
func (rc *RPCClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var out []byte
	err := rc.executeWithFailover(ctx, "call_contract", func(client ethBackend) error {
		var innerErr error
		out, innerErr = client.CallContract(ctx, msg, blockNumber)
		return innerErr
	})
	return out, err
}

// SendTransaction broadcasts a signed transaction. An endpoint that already
// knows the transaction counts as success.
func (rc *RPCClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return rc.executeWithFailover(ctx, "send_transaction", func(client ethBackend) error {
		err := client.SendTransaction(ctx, tx)
		if err != nil && strings.Contains(strings.ToLower(err.Error()), "already known") {
			return nil
		}
		return err
	})
}

// TransactionReceipt fetches a transaction receipt. ethereum.NotFound means
// the transaction is not mined yet.
func (rc *RPCClient) TransactionReceipt(ctx context.Context, txHash ethcommon.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	err := rc.executeWithFailover(ctx, "get_transaction_receipt", func(client ethBackend) error {
		var innerErr error
		receipt, innerErr = client.TransactionReceipt(ctx, txHash)
		return innerErr
	})
	return receipt, err
}

// FilterLogs fetches logs matching the filter query.
func (rc *RPCClient) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	var logs []types.Log
	err := rc.executeWithFailover(ctx, "filter_logs", func(client ethBackend) error {
		var innerErr error
		logs, innerErr = client.FilterLogs(ctx, query)
		return innerErr
	})
	return logs, err
}

// SubscribeFilterLogs subscribes on the first endpoint that supports
// notifications. HTTP endpoints answer with rpc.ErrNotificationsUnsupported
// and are skipped.
func (rc *RPCClient) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	var sub ethereum.Subscription
	err := rc.executeWithFailover(ctx, "subscribe_filter_logs", func(client ethBackend) error {
		var innerErr error
		sub, innerErr = client.SubscribeFilterLogs(ctx, query, ch)
		return innerErr
	})
	return sub, err
}

// SuggestGasPrice fetches the node's gas price suggestion.
func (rc *RPCClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	var gasPrice *big.Int
	err := rc.executeWithFailover(ctx, "get_gas_price", func(client ethBackend) error {
		callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		var innerErr error
		gasPrice, innerErr = client.SuggestGasPrice(callCtx)
		return innerErr
	})
	return gasPrice, err
}

// EstimateGas asks the node for the gas msg needs.
func (rc *RPCClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	var gas uint64
	err := rc.executeWithFailover(ctx, "estimate_gas", func(client ethBackend) error {
		var innerErr error
		gas, innerErr = client.EstimateGas(ctx, msg)
		return innerErr
	})
	return gas, err
}

// PendingNonceAt returns the next nonce of account including pending
// transactions.
func (rc *RPCClient) PendingNonceAt(ctx context.Context, account ethcommon.Address) (uint64, error) {
	var nonce uint64
	err := rc.executeWithFailover(ctx, "get_nonce", func(client ethBackend) error {
		var innerErr error
		nonce, innerErr = client.PendingNonceAt(ctx, account)
		return innerErr
	})
	return nonce, err
}

// Close closes all RPC connections.
func (rc *RPCClient) Close() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	for _, client := range rc.clients {
		if client != nil {
			client.Close()
		}
	}
	rc.clients = nil
}

// redactURL drops everything after the host, where providers put API keys.
func redactURL(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return url
	}
	host, _, _ := strings.Cut(rest, "/")
	return scheme + "://" + host
}
