package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFlattenCommand() *cobra.Command {
	var (
		fields []string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "flatten <name>",
		Short: "Flatten a table's nested fields into flat columns",
		Long: `Flatten a registered table and print the result. Without --field every
nested path is extracted; with --field only the named paths are.`,
		Example: `  # Flatten every nested field
  nestframe flatten customers

  # Extract a single nested path
  nestframe flatten customers --field profile.contact.email`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlatten(cmd, args[0], fields, limit)
		},
	}

	cmd.Flags().StringArrayVar(&fields, "field", nil, "Nested path to extract (repeatable; default all)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows to print (0 for all)")
	return cmd
}

func runFlatten(cmd *cobra.Command, name string, fields []string, limit int) error {
	a, cleanup, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	prepared, err := a.registry.Prepare(cmd.Context(), name, fields)
	if err != nil {
		return err
	}

	rows, err := prepared.Relation().Rows(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	w := cmd.OutOrStdout()
	if prepared.HasBacking() {
		_, _ = fmt.Fprintf(w, "Qualifier: %s\n", prepared.Qualifier())
	}
	return renderRows(w, rows, limit)
}
