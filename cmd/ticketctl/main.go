package main

import (
	"fmt"
	"os"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/config"
)

func main() {
	// Load environment variables from .env file if available
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	// Construct root command
	rootCmd := NewRootCmd()

	// Execute CLI
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.OutOrStderr(), err)
		os.Exit(1)
	}
}
