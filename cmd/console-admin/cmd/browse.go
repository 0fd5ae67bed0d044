package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/kartik-turing/repo-scanner-frontend/internal/console"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/debounce"
)

const browseHelp = `Type to search. Commands:
  :n / :p         next / previous page
  :sort KEY       cycle the sort on a column
  :size N         rows per page
  :r              reload from the backend
  :q              quit
`

func newBrowseCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "browse RESOURCE",
		Short: "Page through a resource interactively",
		Long:  "Page through a resource interactively.\n\n" + browseHelp,
		Args:  cobra.MatchAll(entityArg, cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := o.view(args[0])
			if err != nil {
				return err
			}
			defer view.Close()

			if err := view.Refresh(cmd.Context(), true); err != nil {
				return fmt.Errorf("list %s: %w", args[0], err)
			}
			b := &browser{view: view, out: cmd.OutOrStdout(), format: o.output}
			return b.run(cmd, cmd.InOrStdin(), o.searchDelay)
		},
	}
}

// browser is a line-oriented list view. Search lines are debounced; the page
// is printed once typing has been quiet for the search delay.
type browser struct {
	view   *console.View
	format string

	mu  sync.Mutex // guards out
	out io.Writer
}

func (b *browser) run(cmd *cobra.Command, in io.Reader, delay time.Duration) error {
	fmt.Fprint(b.out, browseHelp)
	b.print()

	render := debounce.New(delay, func(struct{}) {
		b.view.FlushSearch()
		b.print()
	})
	defer render.Stop()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, ":") {
			b.view.Search(line)
			render.Push(struct{}{})
			continue
		}

		// A command applies any pending search first.
		render.Flush()
		quit, err := b.command(cmd, line)
		if err != nil {
			b.printf("error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
	render.Flush()
	return scanner.Err()
}

func (b *browser) command(cmd *cobra.Command, line string) (bool, error) {
	name, arg, _ := strings.Cut(line[1:], " ")
	t := b.view.Table()
	page := b.view.Page()

	switch name {
	case "q", "quit":
		return true, nil
	case "n", "next":
		if page.HasNext() {
			t.SetPage(page.Index + 1)
		}
	case "p", "prev":
		if page.HasPrev() {
			t.SetPage(page.Index - 1)
		}
	case "sort":
		if _, ok := b.view.Schema().Column(arg); !ok {
			return false, fmt.Errorf("unknown column %q", arg)
		}
		t.ToggleSort(arg)
	case "size":
		n, err := strconv.Atoi(arg)
		if err != nil || !t.SetPageSize(n) {
			return false, fmt.Errorf("unsupported page size %q", arg)
		}
	case "r", "reload":
		if err := b.view.Refresh(cmd.Context(), true); err != nil {
			return false, err
		}
	default:
		return false, fmt.Errorf("unknown command %q", line)
	}
	b.print()
	return false, nil
}

func (b *browser) print() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if q := b.view.Table().Filter(); q != "" {
		fmt.Fprintf(b.out, "\nSearch: %s\n", q)
	}
	fmt.Fprintln(b.out)
	if err := printPage(b.out, b.format, b.view.Schema(), b.view.Page()); err != nil {
		fmt.Fprintf(b.out, "error: %v\n", err)
	}
}

func (b *browser) printf(format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(b.out, format, args...)
}
