package evm

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"sync"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"

	cerrors "github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/errors"
)

// NonceSource reports the next nonce of an account including pending
// transactions.
type NonceSource interface {
	PendingNonceAt(ctx context.Context, account ethcommon.Address) (uint64, error)
}

// KeySigner signs with a local ECDSA key and hands out nonces for its
// account. The sequence is seeded from the network on first use and after
// every ResetNonce.
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address ethcommon.Address
	signer  types.Signer
	nonces  NonceSource

	mu     sync.Mutex
	next   uint64
	seeded bool

	logger zerolog.Logger
}

// NewKeySigner parses a hex private key, with or without 0x prefix.
func NewKeySigner(hexKey string, chainID *big.Int, nonces NonceSource, logger zerolog.Logger) (*KeySigner, error) {
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, cerrors.NewValidationError("signer requires a positive chain id")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, cerrors.NewConfigError("invalid private key", err)
	}
	address := crypto.PubkeyToAddress(key.PublicKey)
	return &KeySigner{
		key:     key,
		address: address,
		signer:  types.LatestSignerForChainID(chainID),
		nonces:  nonces,
		logger: logger.With().
			Str("component", "evm_signer").
			Str("address", address.Hex()).
			Logger(),
	}, nil
}

// Address returns the signing account.
func (s *KeySigner) Address() ethcommon.Address {
	return s.address
}

// NextNonce reserves the next nonce. Concurrent callers never receive the
// same value.
func (s *KeySigner) NextNonce(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seeded {
		n, err := s.nonces.PendingNonceAt(ctx, s.address)
		if err != nil {
			return 0, err
		}
		s.next, s.seeded = n, true
		s.logger.Debug().Uint64("nonce", n).Msg("seeded nonce from network")
	}
	n := s.next
	s.next++
	return n, nil
}

// ResetNonce drops the local sequence.
func (s *KeySigner) ResetNonce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seeded = false
}

// SignTx signs tx for the configured chain.
func (s *KeySigner) SignTx(_ context.Context, tx *types.Transaction) (*types.Transaction, error) {
	return types.SignTx(tx, s.signer, s.key)
}
