package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v2"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/bindings/register"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/store"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/txmanager"
)

// Output formats
const (
	OutputFormatYAML = "yaml"
	OutputFormatJSON = "json"
)

// ReceiptOutput is the printed form of a mined write.
type ReceiptOutput struct {
	TxHash          string           `yaml:"tx_hash" json:"tx_hash"`
	State           string           `yaml:"state" json:"state"`
	BlockNumber     uint64           `yaml:"block_number" json:"block_number"`
	GasUsed         uint64           `yaml:"gas_used" json:"gas_used"`
	ContractAddress string           `yaml:"contract_address,omitempty" json:"contract_address,omitempty"`
	RevertReason    string           `yaml:"revert_reason,omitempty" json:"revert_reason,omitempty"`
	Transfers       []TransferOutput `yaml:"ownership_transfers,omitempty" json:"ownership_transfers,omitempty"`
}

// TransferOutput is the printed form of an OwnershipTransferred event.
type TransferOutput struct {
	BlockNumber   uint64 `yaml:"block_number" json:"block_number"`
	TxHash        string `yaml:"tx_hash" json:"tx_hash"`
	PreviousOwner string `yaml:"previous_owner" json:"previous_owner"`
	NewOwner      string `yaml:"new_owner" json:"new_owner"`
}

// CallOutput is the printed result of a read.
type CallOutput struct {
	Function string   `yaml:"function" json:"function"`
	Outputs  []string `yaml:"outputs" json:"outputs"`
}

// AddressOutput is one address book entry.
type AddressOutput struct {
	ChainID uint64 `yaml:"chain_id" json:"chain_id"`
	Address string `yaml:"address" json:"address"`
	TxHash  string `yaml:"tx_hash,omitempty" json:"tx_hash,omitempty"`
}

// TxOutput is one journaled transaction.
type TxOutput struct {
	TxHash       string `yaml:"tx_hash" json:"tx_hash"`
	From         string `yaml:"from" json:"from"`
	To           string `yaml:"to,omitempty" json:"to,omitempty"`
	Nonce        uint64 `yaml:"nonce" json:"nonce"`
	State        string `yaml:"state" json:"state"`
	GasUsed      uint64 `yaml:"gas_used,omitempty" json:"gas_used,omitempty"`
	BlockNumber  uint64 `yaml:"block_number,omitempty" json:"block_number,omitempty"`
	RevertReason string `yaml:"revert_reason,omitempty" json:"revert_reason,omitempty"`
}

func receiptOutput(r *txmanager.Receipt, transfers []*register.OwnershipTransferred) ReceiptOutput {
	out := ReceiptOutput{
		TxHash:       r.TxHash.Hex(),
		State:        r.State.String(),
		GasUsed:      r.GasUsed,
		RevertReason: r.RevertReason,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	if r.ContractAddress != (common.Address{}) {
		out.ContractAddress = r.ContractAddress.Hex()
	}
	for _, t := range transfers {
		out.Transfers = append(out.Transfers, transferOutput(t))
	}
	return out
}

func transferOutput(t *register.OwnershipTransferred) TransferOutput {
	return TransferOutput{
		BlockNumber:   t.Raw.BlockNumber,
		TxHash:        t.Raw.TxHash.Hex(),
		PreviousOwner: t.PreviousOwner.Hex(),
		NewOwner:      t.NewOwner.Hex(),
	}
}

func txOutput(r store.TransactionRecord) TxOutput {
	return TxOutput{
		TxHash:       r.TxHash,
		From:         r.From,
		To:           r.To,
		Nonce:        r.Nonce,
		State:        r.State,
		GasUsed:      r.GasUsed,
		BlockNumber:  r.BlockNumber,
		RevertReason: r.RevertReason,
	}
}

func printOutput(w io.Writer, data interface{}, format string) error {
	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(data)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
