package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/config"
)

const defaultHomeDir = ".ticketctl"

// Persistent flags shared by every subcommand.
var (
	homeFlag        string
	networkFlag     string
	envFileFlag     string
	outputFlag      string
	queryAddrFlag   string
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ticketctl",
		Short:         "Deploy and drive the event ticket RegisterContract",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFileFlag == "" {
				return nil
			}
			return config.LoadDotEnv(envFileFlag)
		},
	}

	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", defaultHome(), "Client home directory")
	rootCmd.PersistentFlags().StringVarP(&networkFlag, "network", "n", "", "Network name from the config (default: default_network)")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", "", "Additional .env file to load")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", OutputFormatYAML, "Output format (yaml|json)")
	rootCmd.PersistentFlags().StringVar(&queryAddrFlag, "query-addr", "", "Serve addresses, journaled transactions and metrics over HTTP on this address while the command runs")

	InitRootCmd(rootCmd)

	return rootCmd
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultHomeDir
	}
	return filepath.Join(home, defaultHomeDir)
}
