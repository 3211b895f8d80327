package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/abi"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/bindings/register"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/config"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/events"
	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/txmanager"
)

// Version is set at build time.
var Version = "dev"

func InitRootCmd(rootCmd *cobra.Command) {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(deployCmd())
	rootCmd.AddCommand(addressesCmd())
	rootCmd.AddCommand(ownerCmd())
	rootCmd.AddCommand(callCmd())
	rootCmd.AddCommand(transactCmd())
	rootCmd.AddCommand(registerTicketCmd())
	rootCmd.AddCommand(eventsCmd())
	rootCmd.AddCommand(txsCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default config to the home directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDefaultConfig()
			if err != nil {
				return err
			}
			cfg.Home = homeFlag
			if err := config.Save(cfg, homeFlag); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config written to %s\n", homeFlag)
			return nil
		},
	}
}

func deployCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Deploy RegisterContract and record its address",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, true)
			if err != nil {
				return err
			}
			defer s.Close()

			c, receipt, err := register.Deploy(ctx, s.manager, s.book, s.logger, s.matcherOptions()...)
			if err != nil {
				if receipt != nil {
					_ = printOutput(cmd.OutOrStdout(), receiptOutput(receipt, nil), outputFlag)
				}
				return err
			}
			transfers, err := c.OwnershipTransferredEvents(receipt)
			if err != nil {
				return err
			}
			return printOutput(cmd.OutOrStdout(), receiptOutput(receipt, transfers), outputFlag)
		},
	}
}

func addressesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "addresses",
		Short: "List known RegisterContract deployments",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			out := make([]AddressOutput, 0)
			for _, id := range s.book.ChainIDs() {
				entry, _ := s.book.Lookup(id)
				o := AddressOutput{ChainID: id, Address: entry.Address.Hex()}
				if entry.TxHash != (common.Hash{}) {
					o.TxHash = entry.TxHash.Hex()
				}
				out = append(out, o)
			}
			return printOutput(cmd.OutOrStdout(), out, outputFlag)
		},
	}
}

func ownerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "owner",
		Short: "Read the contract owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, false)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.contract()
			if err != nil {
				return err
			}
			owner, err := c.Owner(ctx)
			if err != nil {
				return err
			}
			return printOutput(cmd.OutOrStdout(), CallOutput{Function: "owner()", Outputs: []string{owner.Hex()}}, outputFlag)
		},
	}
}

func callCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <function> [args...]",
		Short: "Simulate any RegisterContract function without sending a transaction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fn, values, err := resolveCall(args)
			if err != nil {
				return err
			}
			s, err := openSession(ctx, false)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.contract()
			if err != nil {
				return err
			}
			out, err := s.manager.CallFunction(ctx, c.Address(), fn, register.Interface(), values...)
			if err != nil {
				return err
			}
			result := CallOutput{Function: fn.Canonical(), Outputs: make([]string, len(out))}
			for i, v := range out {
				result.Outputs[i] = formatValue(v)
			}
			return printOutput(cmd.OutOrStdout(), result, outputFlag)
		},
	}
}

func transactCmd() *cobra.Command {
	var gasLimit uint64

	cmd := &cobra.Command{
		Use:   "transact <function> [args...]",
		Short: "Send a transaction calling any RegisterContract function and wait for it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fn, values, err := resolveCall(args)
			if err != nil {
				return err
			}
			data, err := fn.EncodeCall(values...)
			if err != nil {
				return err
			}
			s, err := openSession(ctx, true)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.contract()
			if err != nil {
				return err
			}
			to := c.Address()
			receipt, err := s.manager.Transact(ctx, txmanager.CallRequest{
				To:         &to,
				Data:       data,
				Mutability: abi.Write,
				GasLimit:   gasLimit,
				Errors:     register.Interface(),
			})
			return printReceipt(cmd, c, receipt, err)
		},
	}

	cmd.Flags().Uint64Var(&gasLimit, "gas-limit", 0, "Gas limit (default: estimated)")
	return cmd
}

func registerTicketCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register-ticket <event-id> <ticket-id> <hashed-message> <r> <s> <v>",
		Short: "Register a signed ticket",
		Args:  cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eventID, err := parseBig(args[0])
			if err != nil {
				return fmt.Errorf("event id: %w", err)
			}
			ticketID, err := parseBig(args[1])
			if err != nil {
				return fmt.Errorf("ticket id: %w", err)
			}
			var words [3][32]byte
			for i, name := range []string{"hashed message", "r", "s"} {
				b, err := parseArg(abi.Bytes32, args[2+i])
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				copy(words[i][:], b.([]byte))
			}
			v, err := cast.ToUint8E(args[5])
			if err != nil {
				return fmt.Errorf("v: %w", err)
			}

			s, err := openSession(ctx, true)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.contract()
			if err != nil {
				return err
			}
			receipt, err := c.RegisterTicket(ctx, eventID, ticketID, words[0], words[1], words[2], v)
			return printReceipt(cmd, c, receipt, err)
		},
	}
}

func eventsCmd() *cobra.Command {
	var (
		from          uint64
		to            string
		watch         bool
		previousOwner []string
		newOwner      []string
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List or watch OwnershipTransferred events",
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, err := parseAddresses(previousOwner)
			if err != nil {
				return err
			}
			next, err := parseAddresses(newOwner)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := openSession(ctx, false)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.contract()
			if err != nil {
				return err
			}

			if watch {
				return watchTransfers(ctx, cmd, c, from, cmd.Flags().Changed("from"), prev, next)
			}

			r := events.BlockRange{From: from}
			if to != "" {
				end, err := cast.ToUint64E(to)
				if err != nil {
					return fmt.Errorf("invalid --to: %w", err)
				}
				r.To = &end
			}
			it, err := c.FilterOwnershipTransferred(ctx, r, prev, next)
			if err != nil {
				return err
			}
			defer it.Close()

			out := make([]TransferOutput, 0)
			for it.Next() {
				out = append(out, transferOutput(it.Event()))
			}
			if err := it.Err(); err != nil {
				return err
			}
			return printOutput(cmd.OutOrStdout(), out, outputFlag)
		},
	}

	cmd.Flags().Uint64Var(&from, "from", 0, "First block to search")
	cmd.Flags().StringVar(&to, "to", "", "Last block to search (default: latest)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Stream new events until interrupted")
	cmd.Flags().StringSliceVar(&previousOwner, "previous-owner", nil, "Only events from these previous owners")
	cmd.Flags().StringSliceVar(&newOwner, "new-owner", nil, "Only events to these new owners")
	return cmd
}

func watchTransfers(
	ctx context.Context,
	cmd *cobra.Command,
	c *register.RegisterContract,
	from uint64,
	backfill bool,
	prev, next []common.Address,
) error {
	var start *uint64
	if backfill {
		start = &from
	}
	sink := make(chan *register.OwnershipTransferred)
	sub, err := c.WatchOwnershipTransferred(ctx, sink, start, prev, next)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	for {
		select {
		case ev := <-sink:
			if err := printOutput(cmd.OutOrStdout(), transferOutput(ev), outputFlag); err != nil {
				return err
			}
		case err := <-sub.Err():
			return err
		case <-ctx.Done():
			return nil
		}
	}
}

func txsCmd() *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "txs [tx-hash]",
		Short: "Show journaled transactions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, false)
			if err != nil {
				return err
			}
			defer s.Close()

			if s.journal == nil {
				return fmt.Errorf("transaction journal is disabled: database_file is empty")
			}
			if len(args) == 1 {
				record, err := s.journal.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return printOutput(cmd.OutOrStdout(), txOutput(*record), outputFlag)
			}

			records, err := s.journal.List(ctx, state)
			if err != nil {
				return err
			}
			out := make([]TxOutput, 0, len(records))
			for _, r := range records {
				out = append(out, txOutput(r))
			}
			return printOutput(cmd.OutOrStdout(), out, outputFlag)
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "Only transactions in this state (submitted|receipted|reverted|timed_out)")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve addresses, journaled transactions and metrics over HTTP until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if queryAddrFlag == "" {
				queryAddrFlag = addr
			}
			s, err := openSession(ctx, false)
			if err != nil {
				return err
			}
			defer s.Close()

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address (overridden by --query-addr)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print ticketctl version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Name:     ticketctl\n")
			fmt.Fprintf(cmd.OutOrStdout(), "Version:  %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Contract: %s\n", register.ContractName)
		},
	}
}

// resolveCall looks up the function named by args[0] and parses the rest as
// its arguments.
func resolveCall(args []string) (abi.FunctionSignature, []any, error) {
	fn, err := register.Interface().Function(args[0])
	if err != nil {
		return abi.FunctionSignature{}, nil, fmt.Errorf("%w (available: %s)", err,
			strings.Join(register.Interface().FunctionNames(), ", "))
	}
	values, err := parseArgs(fn, args[1:])
	if err != nil {
		return abi.FunctionSignature{}, nil, err
	}
	return fn, values, nil
}

func parseAddresses(raw []string) ([]common.Address, error) {
	out := make([]common.Address, 0, len(raw))
	for _, s := range raw {
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		out = append(out, common.HexToAddress(s))
	}
	return out, nil
}

// printReceipt prints whatever receipt a write produced before returning
// its error, so reverted transactions still show their hash.
func printReceipt(cmd *cobra.Command, c *register.RegisterContract, receipt *txmanager.Receipt, err error) error {
	if receipt == nil {
		return err
	}
	var transfers []*register.OwnershipTransferred
	if receipt.Succeeded() {
		if transfers, err = c.OwnershipTransferredEvents(receipt); err != nil {
			return err
		}
	}
	if perr := printOutput(cmd.OutOrStdout(), receiptOutput(receipt, transfers), outputFlag); perr != nil {
		return perr
	}
	return err
}
