package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "nestframe v%s\n", Version)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Nested Table Flattening Engine built with Go and DuckDB")
		},
	}
}
