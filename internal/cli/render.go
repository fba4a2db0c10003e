package cli

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// newTable returns a writer with the house style applied.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// renderRows renders query results as a table, up to limit rows.
// A limit <= 0 renders everything.
func renderRows(w io.Writer, rows *sql.Rows, limit int) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	t := newTable(w)
	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	count := 0
	for rows.Next() {
		if limit > 0 && count >= limit {
			break
		}
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return err
		}

		row := make(table.Row, len(cols))
		for i := range cols {
			row[i] = formatValue(values[i])
		}
		t.AppendRow(row)
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", count)
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}
