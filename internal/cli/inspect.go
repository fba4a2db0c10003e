package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <name>",
		Short: "Show the nested schema and flat-name mapping of a table",
		Long: `Inspect a registered table: its flat columns, struct roots, and every
nested leaf path with the flat column name it maps to.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}
}

func runInspect(cmd *cobra.Command, name string) error {
	a, cleanup, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	h, err := a.registry.Get(name)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fields := h.Fields()

	_, _ = fmt.Fprintf(w, "Table: %s\n", name)
	if h.HasBacking() {
		_, _ = fmt.Fprintf(w, "Qualifier: %s\n", h.Qualifier())
	} else {
		_, _ = fmt.Fprintln(w, "Qualifier: (in-memory)")
	}
	if flat := fields.FlatColumns(); len(flat) > 0 {
		_, _ = fmt.Fprintf(w, "Flat columns: %s\n", strings.Join(flat, ", "))
	}
	if roots := fields.StructRoots(); len(roots) > 0 {
		_, _ = fmt.Fprintf(w, "Struct roots: %s\n", strings.Join(roots, ", "))
	}

	if fields.Len() == 0 {
		_, _ = fmt.Fprintln(w, "No nested fields")
		return nil
	}

	_, _ = fmt.Fprintln(w)
	t := newTable(w)
	t.AppendHeader(table.Row{"Nested Path", "Flat Name", "Type"})
	for _, f := range fields.Fields() {
		t.AppendRow(table.Row{f.Path, f.FlatName, f.LeafType})
	}
	t.Render()
	return nil
}
