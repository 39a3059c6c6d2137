package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "polydist",
		Short: "Boolean-monomial statistical distinguisher for binary data streams",
	}

	rootCmd.AddCommand(newAnalyzeCmd(), newGenPolyCmd(), newIndependenceCheckCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
