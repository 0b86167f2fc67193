package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mise/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mise",
		Short: "Restaurant procurement payment service",
		Long:  `mise prices purchase plans into payment intents and executes approved supplier payments on-chain.`,
	}

	rootCmd.AddCommand(server.NewCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
