package console

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// renderTable prints a result grid: header row, a rule of '=' characters,
// then the data rows, every cell padded to its column width.
func renderTable(w io.Writer, cols []string, rows [][]string) {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	total := 0
	for i, c := range cols {
		fmt.Fprintf(w, "%-*s  ", widths[i], c)
		total += widths[i] + 2
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", total))

	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprintf(w, "%-*s  ", widths[i], cell)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

// formatValue renders a scanned cell for display.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(t)
	}
}
