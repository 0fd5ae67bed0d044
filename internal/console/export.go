package console

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ExportCSV writes rows as CSV with one header line. Actions columns are
// skipped and cells use their display text.
func ExportCSV(w io.Writer, columns []Column, rows []Row) error {
	cols := make([]Column, 0, len(columns))
	header := make([]string, 0, len(columns))
	for _, c := range columns {
		if c.Actions {
			continue
		}
		cols = append(cols, c)
		header = append(header, c.Header)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(cols))
	for _, r := range rows {
		for i, c := range cols {
			record[i] = c.Display(r.Record)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
