// Package main запускает консоль магазина: API витрины, админку и живую ленту журнала.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "console",
	Short: "Storefront console: catalog API, back-office and audit feed",
	Long: `Console serves the storefront catalog API and the back-office.
Every mutation goes through the generic record store and is written to the
notifications journal; admins can follow the journal live over SSE.

Configuration is read from config.yaml (., ./configs), .env and environment
variables (DATABASE_DSN, AUTH_PRIVATE_KEY_DATA, ...).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(schemaCmd)
}
