package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/nestframe/internal/engine"
	"github.com/leapstack-labs/nestframe/internal/handler"
)

func newJoinCommand() *cobra.Command {
	var (
		tables []string
		ons    []string
		kind   string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join registered tables on nested or flat fields",
		Long: `Join two or more registered tables. Tables are given as alias=name
pairs and joined left-to-right in the order listed. Conditions reference
fields as alias.path, where path is a dotted nested path or a flat
column name.`,
		Example: `  # Join a nested customers table with flat orders
  nestframe join \
    --table c=customers --table o=orders \
    --on c.profile.contact.email=o.customer_email

  # Left join with an explicit kind
  nestframe join --table c=customers --table o=orders \
    --on c.profile.contact.email=o.customer_email --kind left`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := parseJoinSpec(tables, ons, kind)
			if err != nil {
				return err
			}
			return runJoin(cmd, spec, limit)
		},
	}

	cmd.Flags().StringArrayVar(&tables, "table", nil, "Table to join as alias=name (repeatable, order matters)")
	cmd.Flags().StringArrayVar(&ons, "on", nil, "Join condition as alias.field=alias.field (repeatable)")
	cmd.Flags().StringVar(&kind, "kind", "inner", "Join kind (inner|left|right|outer|cross)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows to print (0 for all)")
	return cmd
}

// parseJoinSpec converts the flag values into a handler.JoinSpec.
func parseJoinSpec(tables, ons []string, kind string) (handler.JoinSpec, error) {
	spec := handler.JoinSpec{Kind: engine.JoinKind(kind)}

	for _, t := range tables {
		alias, name, ok := strings.Cut(t, "=")
		if !ok || alias == "" || name == "" {
			return spec, fmt.Errorf("invalid --table %q: expected alias=name", t)
		}
		spec.Tables = append(spec.Tables, handler.JoinTable{Alias: alias, Name: name})
	}

	for _, on := range ons {
		left, right, ok := strings.Cut(on, "=")
		if !ok {
			return spec, fmt.Errorf("invalid --on %q: expected alias.field=alias.field", on)
		}
		leftAlias, leftField, err := splitFieldRef(left)
		if err != nil {
			return spec, fmt.Errorf("invalid --on %q: %w", on, err)
		}
		rightAlias, rightField, err := splitFieldRef(right)
		if err != nil {
			return spec, fmt.Errorf("invalid --on %q: %w", on, err)
		}
		spec.Conditions = append(spec.Conditions, handler.JoinCondition{
			LeftAlias:  leftAlias,
			LeftField:  leftField,
			RightAlias: rightAlias,
			RightField: rightField,
		})
	}

	return spec, nil
}

// splitFieldRef splits "alias.some.nested.path" at the first dot.
func splitFieldRef(ref string) (alias, field string, err error) {
	alias, field, ok := strings.Cut(ref, ".")
	if !ok || alias == "" || field == "" {
		return "", "", fmt.Errorf("field reference %q must be alias.field", ref)
	}
	return alias, field, nil
}

func runJoin(cmd *cobra.Command, spec handler.JoinSpec, limit int) error {
	a, cleanup, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := a.registry.Join(cmd.Context(), spec)
	if err != nil {
		return err
	}

	rows, err := result.Relation().Rows(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "Qualifier: %s\n", result.Qualifier())
	return renderRows(w, rows, limit)
}
