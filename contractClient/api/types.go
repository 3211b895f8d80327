package api

// QueryResponse represents the standard query response format
type QueryResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// AddressResponse is one deployment of the served contract.
type AddressResponse struct {
	Contract string `json:"contract"`
	ChainID  uint64 `json:"chain_id"`
	Address  string `json:"address"`
}

// TransactionResponse is one journaled transaction.
type TransactionResponse struct {
	TxHash       string `json:"tx_hash"`
	From         string `json:"from"`
	To           string `json:"to,omitempty"`
	Nonce        uint64 `json:"nonce"`
	State        string `json:"state"`
	GasUsed      uint64 `json:"gas_used"`
	BlockNumber  uint64 `json:"block_number"`
	RevertReason string `json:"revert_reason,omitempty"`
}
