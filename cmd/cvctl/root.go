package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cvctl",
		Short:         "CV extraction tooling",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newExtractCmd(), newMigrateCmd())
	return root
}
