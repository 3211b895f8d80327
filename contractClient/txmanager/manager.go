package txmanager

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/abi"
	cerrors "github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/errors"
)

// Config bounds receipt polling.
type Config struct {
	PollInterval      time.Duration
	MaxPollInterval   time.Duration
	PollMultiplier    float64
	ReceiptTimeout    time.Duration
	MaxRemoteFailures int
}

// DefaultConfig returns the polling defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval:      time.Second,
		MaxPollInterval:   10 * time.Second,
		PollMultiplier:    1.5,
		ReceiptTimeout:    2 * time.Minute,
		MaxRemoteFailures: 5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.MaxPollInterval < c.PollInterval {
		c.MaxPollInterval = max(d.MaxPollInterval, c.PollInterval)
	}
	if c.PollMultiplier < 1 {
		c.PollMultiplier = d.PollMultiplier
	}
	if c.ReceiptTimeout <= 0 {
		c.ReceiptTimeout = d.ReceiptTimeout
	}
	if c.MaxRemoteFailures <= 0 {
		c.MaxRemoteFailures = d.MaxRemoteFailures
	}
	return c
}

// Manager drives reads and writes through the transport. It keeps no state
// between calls; nonce ordering belongs to the Signer.
type Manager struct {
	transport Transport
	signer    Signer
	gas       GasPolicy
	cfg       Config
	listeners []EventListener
	logger    zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithListener adds a listener for calls, transitions and receipt waits.
func WithListener(l EventListener) Option {
	return func(m *Manager) {
		if l != nil {
			m.listeners = append(m.listeners, l)
		}
	}
}

// NewManager creates a Manager. signer and gas may be nil for a read-only
// manager; Submit then fails.
func NewManager(transport Transport, signer Signer, gas GasPolicy, cfg Config, logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		transport: transport,
		signer:    signer,
		gas:       gas,
		cfg:       cfg.withDefaults(),
		logger:    logger.With().Str("component", "tx_manager").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Transport returns the underlying transport.
func (m *Manager) Transport() Transport {
	return m.transport
}

// Signer returns the configured signer, or nil.
func (m *Manager) Signer() Signer {
	return m.signer
}

// Call simulates req against the node and returns the raw return data. It
// never changes chain state. A revert comes back as *errors.RevertError.
func (m *Manager) Call(ctx context.Context, req CallRequest) ([]byte, error) {
	msg := ethereum.CallMsg{
		From:  req.From,
		To:    req.To,
		Data:  req.Data,
		Value: req.Value,
	}
	if msg.From == (common.Address{}) && m.signer != nil {
		msg.From = m.signer.Address()
	}

	start := time.Now()
	out, err := m.transport.CallContract(ctx, msg, req.BlockNumber)
	if err != nil {
		if revert, ok := revertFromError(err, req.Errors); ok {
			err = revert
		} else {
			err = cerrors.NewRemoteError("", "eth_call failed", err)
		}
	}
	for _, l := range m.listeners {
		l.OnCall(time.Since(start), err)
	}
	if err != nil {
		m.logger.Debug().Err(err).
			Str("to", addressString(req.To)).
			Str("severity", string(cerrors.GetSeverity(err))).
			Msg("call failed")
		return nil, err
	}
	m.transition(Transition{From: msg.From, To: req.To, State: StateSimulated})
	return out, nil
}

// CallFunction encodes a call to fn at to, simulates it and decodes the result.
func (m *Manager) CallFunction(ctx context.Context, to common.Address, fn abi.FunctionSignature, errs RevertDecoder, args ...any) ([]any, error) {
	data, err := fn.EncodeCall(args...)
	if err != nil {
		return nil, err
	}
	out, err := m.Call(ctx, CallRequest{To: &to, Data: data, Mutability: abi.Read, Errors: errs})
	if err != nil {
		return nil, err
	}
	return fn.DecodeOutput(out)
}

// Submit signs and broadcasts a write. Gas fields left unset are filled from
// the gas policy; the nonce comes from the signer.
func (m *Manager) Submit(ctx context.Context, req CallRequest) (*PendingTransaction, error) {
	if req.Mutability == abi.Read {
		return nil, cerrors.NewValidationError("read requests are simulated with Call, not submitted")
	}
	if m.signer == nil || m.gas == nil {
		return nil, cerrors.NewValidationError("write requires a signer and a gas policy")
	}
	from := m.signer.Address()
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	gasPrice := req.GasPrice
	if gasPrice == nil {
		price, err := m.gas.GasPrice(ctx)
		if err != nil {
			return nil, cerrors.NewRemoteError("", "failed to get gas price", err)
		}
		gasPrice = price
	}

	gasLimit := req.GasLimit
	if gasLimit == 0 {
		limit, err := m.gas.GasLimit(ctx, ethereum.CallMsg{
			From:     from,
			To:       req.To,
			GasPrice: gasPrice,
			Value:    value,
			Data:     req.Data,
		})
		if err != nil {
			if revert, ok := revertFromError(err, req.Errors); ok {
				return nil, revert
			}
			return nil, cerrors.NewRemoteError("", "failed to estimate gas", err)
		}
		gasLimit = limit
	}

	nonce, err := m.signer.NextNonce(ctx)
	if err != nil {
		return nil, cerrors.NewRemoteError("", "failed to get nonce", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       req.To,
		Value:    value,
		Data:     req.Data,
	})

	signed, err := m.signer.SignTx(ctx, tx)
	if err != nil {
		m.signer.ResetNonce()
		return nil, cerrors.NewEngineError(cerrors.ErrCodeInternal, "", "failed to sign transaction", err)
	}

	if err := m.transport.SendTransaction(ctx, signed); err != nil {
		m.signer.ResetNonce()
		return nil, cerrors.NewRemoteError("", "failed to broadcast transaction", err).
			WithContext("nonce", nonce)
	}

	pending := &PendingTransaction{
		Hash:        signed.Hash(),
		Tx:          signed,
		From:        from,
		Request:     req,
		SubmittedAt: time.Now(),
	}

	m.logger.Info().
		Str("tx_hash", pending.Hash.Hex()).
		Str("to", addressString(req.To)).
		Uint64("nonce", nonce).
		Uint64("gas_limit", gasLimit).
		Str("gas_price", gasPrice.String()).
		Msg("transaction submitted")

	m.transition(Transition{
		Hash:  pending.Hash,
		From:  from,
		To:    req.To,
		Nonce: nonce,
		State: StateSubmitted,
	})
	return pending, nil
}

// Wait polls for the receipt of pending with exponential backoff until it
// is mined or ReceiptTimeout passes.
//
// Cancelling ctx only abandons the wait. The transaction is not withdrawn and
// may still be mined; call Wait again with the same handle to resume.
//
// A mined but reverted transaction returns both the receipt and a
// *errors.RevertError. No receipt within the timeout returns a timeout error.
func (m *Manager) Wait(ctx context.Context, pending *PendingTransaction) (*Receipt, error) {
	start := time.Now()
	deadline := time.NewTimer(m.cfg.ReceiptTimeout)
	defer deadline.Stop()

	delay := m.cfg.PollInterval
	failures := 0
	for {
		receipt, err := m.transport.TransactionReceipt(ctx, pending.Hash)
		switch {
		case err == nil && receipt != nil:
			return m.finish(ctx, pending, receipt, start)
		case err == nil, errors.Is(err, ethereum.NotFound):
			failures = 0
		default:
			failures++
			m.logger.Warn().Err(err).
				Str("tx_hash", pending.Hash.Hex()).
				Int("failures", failures).
				Msg("receipt lookup failed")
			if failures >= m.cfg.MaxRemoteFailures {
				return nil, cerrors.NewRemoteError("", "failed to get transaction receipt", err).
					WithContext("tx_hash", pending.Hash.Hex()).
					WithContext("attempts", failures)
			}
		}

		select {
		case <-ctx.Done():
			m.logger.Debug().Str("tx_hash", pending.Hash.Hex()).Msg("receipt wait abandoned")
			return nil, ctx.Err()
		case <-deadline.C:
			m.transition(Transition{
				Hash:  pending.Hash,
				From:  pending.From,
				To:    pending.Request.To,
				Nonce: pending.Tx.Nonce(),
				State: StateTimedOut,
			})
			m.observeWait(time.Since(start), StateTimedOut)
			return nil, cerrors.NewTimeoutError("", fmt.Sprintf("no receipt after %s", m.cfg.ReceiptTimeout)).
				WithContext("tx_hash", pending.Hash.Hex())
		case <-time.After(delay):
		}
		delay = cerrors.NextDelay(delay, m.cfg.PollMultiplier, m.cfg.MaxPollInterval)
	}
}

// Transact submits req and waits for its receipt.
func (m *Manager) Transact(ctx context.Context, req CallRequest) (*Receipt, error) {
	pending, err := m.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	return m.Wait(ctx, pending)
}

func (m *Manager) finish(ctx context.Context, pending *PendingTransaction, receipt *types.Receipt, start time.Time) (*Receipt, error) {
	r := &Receipt{Receipt: receipt, State: StateReceipted}

	if receipt.Status != types.ReceiptStatusSuccessful {
		r.State = StateReverted
		r.RevertReason, r.RevertData = m.replayRevert(ctx, pending, receipt)
	}

	var blockNumber uint64
	if receipt.BlockNumber != nil {
		blockNumber = receipt.BlockNumber.Uint64()
	}
	m.transition(Transition{
		Hash:         pending.Hash,
		From:         pending.From,
		To:           pending.Request.To,
		Nonce:        pending.Tx.Nonce(),
		State:        r.State,
		GasUsed:      receipt.GasUsed,
		BlockNumber:  blockNumber,
		RevertReason: r.RevertReason,
	})
	m.observeWait(time.Since(start), r.State)

	if r.State == StateReverted {
		m.logger.Warn().
			Str("tx_hash", pending.Hash.Hex()).
			Uint64("block", blockNumber).
			Str("reason", r.RevertReason).
			Msg("transaction reverted")
		revert := cerrors.NewRevertError(r.RevertReason, r.RevertData)
		revert.TxHash = pending.Hash.Hex()
		return r, revert
	}

	m.logger.Info().
		Str("tx_hash", pending.Hash.Hex()).
		Uint64("block", blockNumber).
		Uint64("gas_used", receipt.GasUsed).
		Msg("transaction receipted")
	return r, nil
}

// replayRevert re-runs a reverted transaction as a call at its block to
// recover the revert payload, which receipts do not carry.
func (m *Manager) replayRevert(ctx context.Context, pending *PendingTransaction, receipt *types.Receipt) (string, []byte) {
	tx := pending.Tx
	msg := ethereum.CallMsg{
		From:     pending.From,
		To:       tx.To(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Value:    tx.Value(),
		Data:     tx.Data(),
	}
	_, err := m.transport.CallContract(ctx, msg, receipt.BlockNumber)
	if err == nil {
		return "", nil
	}
	revert, ok := revertFromError(err, pending.Request.Errors)
	if !ok {
		m.logger.Debug().Err(err).Str("tx_hash", pending.Hash.Hex()).Msg("revert replay failed")
		return "", nil
	}
	return revert.Reason, revert.Data
}

func (m *Manager) transition(t Transition) {
	for _, l := range m.listeners {
		l.OnTransition(t)
	}
}

func (m *Manager) observeWait(took time.Duration, state State) {
	for _, l := range m.listeners {
		l.OnReceiptWait(took, state)
	}
}

// revertFromError recognises a node reporting an execution revert. Revert
// payloads arrive as the JSON-RPC error data field.
func revertFromError(err error, decoder RevertDecoder) (*cerrors.RevertError, bool) {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if s, ok := dataErr.ErrorData().(string); ok {
			if data, derr := hexutil.Decode(s); derr == nil {
				return cerrors.NewRevertError(decodeRevert(data, decoder), data), true
			}
		}
	}
	if strings.Contains(strings.ToLower(err.Error()), "execution reverted") {
		return cerrors.NewRevertError("", nil), true
	}
	return nil, false
}

func decodeRevert(data []byte, decoder RevertDecoder) string {
	if reason, ok := abi.UnpackRevert(data); ok {
		return reason
	}
	if decoder != nil {
		if reason, ok := decoder.DecodeRevert(data); ok {
			return reason
		}
	}
	return ""
}

func addressString(a *common.Address) string {
	if a == nil {
		return "create"
	}
	return a.Hex()
}
