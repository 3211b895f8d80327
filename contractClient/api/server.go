// Package api serves the client's local state over HTTP: the contract
// address book, the transaction journal and prometheus metrics.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Server provides HTTP endpoints
type Server struct {
	logger    zerolog.Logger
	server    *http.Server
	addresses AddressSource
	txs       TxSource
	gatherer  prometheus.Gatherer
}

// NewServer creates a new Server instance. txs and gatherer may be nil, in
// which case their endpoints report the feature as unavailable.
func NewServer(logger zerolog.Logger, addr string, addresses AddressSource, txs TxSource, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		logger:    logger.With().Str("component", "query_server").Logger(),
		addresses: addresses,
		txs:       txs,
		gatherer:  gatherer,
	}

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.setupRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Start binds the listen address and serves in the background.
func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("query server is nil")
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind to address %s: %w", s.server.Addr, err)
	}

	go func() {
		err := s.server.Serve(ln)
		switch err {
		case nil:
			s.logger.Info().Msg("Query server stopped normally")
		case http.ErrServerClosed:
			s.logger.Info().Msg("Query server closed gracefully")
		default:
			s.logger.Error().Err(err).Msg("Query server error")
		}
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Query server listening")
	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
