// Package main is the entry point for the jqsafe CLI.
package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the jqsafe CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jqsafe",
		Short: "jqsafe - a sandboxed jq filter interpreter",
		Long:  `jqsafe runs a single jq filter against a single JSON input under a fixed resource budget.`,
	}

	cmd.AddCommand(newRunCmd())

	return cmd
}
