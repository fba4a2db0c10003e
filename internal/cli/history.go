package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded registry operations, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum operations to show (0 for all)")
	return cmd
}

func runHistory(cmd *cobra.Command, limit int) error {
	a, cleanup, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if a.store == nil {
		return fmt.Errorf("no history store configured (set state_path or --state)")
	}

	ops, err := a.store.ListOperations(cmd.Context(), limit)
	if err != nil {
		return err
	}

	t := newTable(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Time", "Kind", "Name", "Qualifier", "Operands"})
	for _, op := range ops {
		t.AppendRow(table.Row{
			op.CreatedAt.Format(time.RFC3339),
			string(op.Kind),
			op.Name,
			op.Qualifier,
			strings.Join(op.Operands, ", "),
		})
	}
	t.Render()
	return nil
}
