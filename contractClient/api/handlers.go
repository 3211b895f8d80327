package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/store"
)

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleAddresses handles GET /api/v1/addresses
func (s *Server) handleAddresses(w http.ResponseWriter, r *http.Request) {
	entries := s.addresses.Entries()
	ids := make([]uint64, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]AddressResponse, 0, len(ids))
	for _, id := range ids {
		out = append(out, AddressResponse{
			Contract: s.addresses.Contract(),
			ChainID:  id,
			Address:  entries[id].Hex(),
		})
	}
	writeJSON(w, http.StatusOK, QueryResponse{Data: out})
}

// handleTransactions handles GET /api/v1/transactions?state=<state>
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if s.txs == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "transaction journal is disabled"})
		return
	}

	records, err := s.txs.List(r.Context(), r.URL.Query().Get("state"))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list transactions")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to list transactions"})
		return
	}

	out := make([]TransactionResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, transactionResponse(rec))
	}
	writeJSON(w, http.StatusOK, QueryResponse{Data: out})
}

// handleTransaction handles GET /api/v1/transactions/{hash}
func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	if s.txs == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "transaction journal is disabled"})
		return
	}

	raw := mux.Vars(r)["hash"]
	if len(common.FromHex(raw)) != common.HashLength {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid transaction hash %q", raw)})
		return
	}
	hash := common.HexToHash(raw).Hex()

	rec, err := s.txs.Get(r.Context(), hash)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("transaction %s not found", hash)})
		return
	case err != nil:
		s.logger.Error().Err(err).Str("tx_hash", hash).Msg("failed to load transaction")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to load transaction"})
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{Data: transactionResponse(*rec)})
}

func transactionResponse(rec store.TransactionRecord) TransactionResponse {
	return TransactionResponse{
		TxHash:       rec.TxHash,
		From:         rec.From,
		To:           rec.To,
		Nonce:        rec.Nonce,
		State:        rec.State,
		GasUsed:      rec.GasUsed,
		BlockNumber:  rec.BlockNumber,
		RevertReason: rec.RevertReason,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
