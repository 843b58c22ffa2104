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
	Use:           "invctl",
	Short:         "Smart Inventory operator CLI",
	Long:          "invctl runs maintenance tasks directly against the inventory database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(resetPasswordCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(lowStockCmd)
}
