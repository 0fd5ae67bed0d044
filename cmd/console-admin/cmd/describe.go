package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kartik-turing/repo-scanner-frontend/internal/console"
)

func newDescribeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "describe RESOURCE ID",
		Short: "Show detailed information about a resource",
		Args:  cobra.MatchAll(entityArg, cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := o.view(args[0])
			if err != nil {
				return err
			}
			defer view.Close()

			if err := view.Refresh(cmd.Context(), true); err != nil {
				return fmt.Errorf("list %s: %w", args[0], err)
			}
			item, ok := view.Loader().Find(args[1])
			if !ok {
				return fmt.Errorf("%s %q: %w", view.Schema().Singular, args[1], console.ErrNotFound)
			}

			w := cmd.OutOrStdout()
			switch o.output {
			case outputJSON:
				return printJSON(w, item)
			case outputYAML:
				return printYAML(w, item)
			}
			return describe(w, view.Schema(), item)
		},
	}
}

// describe prints the listed columns first, then any other fields the
// backend returned.
func describe(w io.Writer, s *console.Schema, item console.Record) error {
	type line struct{ label, value string }
	var lines []line
	seen := map[string]bool{"id": true}
	lines = append(lines, line{"ID", item.ID()})

	for _, c := range s.DataColumns() {
		if seen[c.Key] {
			continue
		}
		seen[c.Key] = true
		lines = append(lines, line{c.Header, c.Display(item)})
	}

	var extra []string
	for k := range item {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		lines = append(lines, line{k, item.String(k)})
	}

	width := 0
	for _, l := range lines {
		width = max(width, len(l.label))
	}
	for _, l := range lines {
		value := l.value
		if value == "" {
			value = "-"
		}
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width+1, l.label+":", value); err != nil {
			return err
		}
	}
	return nil
}
