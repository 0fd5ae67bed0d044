package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kartik-turing/repo-scanner-frontend/internal/console"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/pagination"
)

// pageOutput is the structured form of one listed page.
type pageOutput struct {
	Resource                          string `json:"resource" yaml:"resource"`
	pagination.Result[console.Record] `yaml:",inline"`
}

func newGetCmd(o *options) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "get RESOURCE",
		Short: "List resources",
		Example: `  console-admin get partners
  console-admin get customers --search contoso --sort name:desc
  console-admin get scan-sessions --page 2 --page-size 25 -o wide`,
		Args: cobra.MatchAll(entityArg, cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := o.view(args[0])
			if err != nil {
				return err
			}
			defer view.Close()

			if err := view.Refresh(cmd.Context(), true); err != nil {
				return fmt.Errorf("list %s: %w", args[0], err)
			}
			if err := lf.apply(view); err != nil {
				return err
			}
			return printPage(cmd.OutOrStdout(), o.output, view.Schema(), view.Page())
		},
	}
	lf.register(cmd, true)
	return cmd
}

func printPage(w io.Writer, format string, s *console.Schema, page console.PageView) error {
	switch format {
	case outputJSON, outputYAML:
		out := pageOutput{
			Resource: s.Name,
			Result: pagination.Result[console.Record]{
				Data:       make([]console.Record, 0, len(page.Rows)),
				Total:      page.Total,
				Page:       page.Number,
				PerPage:    page.Size,
				TotalPages: page.Count,
			},
		}
		for _, r := range page.Rows {
			out.Data = append(out.Data, r.Record)
		}
		if format == outputJSON {
			return printJSON(w, out)
		}
		return printYAML(w, out)
	}

	if page.Empty {
		_, err := fmt.Fprintln(w, "No data available")
		return err
	}

	wide := format == outputWide
	cols := s.DataColumns()
	_, hasID := s.Column("id")

	headers := make([]string, 0, len(cols)+1)
	if wide && !hasID {
		headers = append(headers, "ID")
	}
	for _, c := range cols {
		headers = append(headers, strings.ToUpper(c.Header))
	}

	t := newTable(w, headers...)
	for _, r := range page.Rows {
		cells := make([]string, 0, len(headers))
		if wide && !hasID {
			cells = append(cells, r.Record.ID())
		}
		for _, c := range cols {
			v := c.Display(r.Record)
			if !wide {
				v = truncate(v, cellWidth)
			}
			cells = append(cells, v)
		}
		t.AddRow(cells...)
	}
	if err := t.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nShowing %d-%d of %d results (page %d/%d)\n",
		page.Start, page.End, page.Total, page.Number, page.Count)
	return err
}
