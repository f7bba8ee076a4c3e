// Package main provides schedule-cli, an operator tool for ranking contractors
// against fixture data without a running Zeebe cluster.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "schedule-cli",
		Short:         "Contractor scheduling tools",
		Long:          "schedule-cli ranks contractors for a job from YAML or JSON fixtures and measures distances between coordinates.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRankCmd(), newDistanceCmd(), newWorkersCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
