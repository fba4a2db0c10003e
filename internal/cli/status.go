package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the backing status of every registered table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	a, cleanup, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	t := newTable(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Name", "Backed", "Qualifier"})
	for _, row := range a.registry.Status() {
		qual := row.Qualifier
		if !row.Backed {
			qual = "(in-memory)"
		}
		t.AppendRow(table.Row{row.Name, row.Backed, qual})
	}
	t.Render()
	return nil
}
