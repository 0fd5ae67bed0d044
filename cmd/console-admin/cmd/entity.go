package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kartik-turing/repo-scanner-frontend/internal/console"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/pagination"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/validator"
)

// listFlags is the list state a command can set: search, sort and page.
type listFlags struct {
	search   string
	sort     string
	page     int
	pageSize int
}

func (f *listFlags) register(cmd *cobra.Command, paged bool) {
	cmd.Flags().StringVar(&f.search, "search", "", "Fuzzy search across the listed columns")
	cmd.Flags().StringVar(&f.sort, "sort", "", "Sort column: KEY, KEY:asc, KEY:desc or -KEY")
	if paged {
		cmd.Flags().IntVar(&f.page, "page", 1, "Page number")
		cmd.Flags().IntVar(&f.pageSize, "page-size", 10, "Rows per page: 10, 25, 50 or 100")
	}
}

// apply puts the flags onto the view's table in the same order as the web
// console: search, sort, page size, page.
func (f listFlags) apply(view *console.View) error {
	view.Search(f.search)
	view.FlushSearch()

	t := view.Table()
	if f.sort != "" {
		srt, ok := pagination.ParseSort(f.sort)
		if !ok {
			return fmt.Errorf("invalid sort %q, want KEY, KEY:asc, KEY:desc or -KEY", f.sort)
		}
		if _, ok := view.Schema().Column(srt.Field); !ok {
			return fmt.Errorf("unknown sort column %q", srt.Field)
		}
		// A bare key takes the column's first click direction.
		dir := console.ParseSortDir(string(srt.Order))
		if dir == console.SortNone {
			dir = t.NextSort(srt.Field).Dir
		}
		t.SetSort(srt.Field, dir)
	}
	if f.pageSize > 0 && !t.SetPageSize(f.pageSize) {
		return fmt.Errorf("unsupported page size %d", f.pageSize)
	}
	if f.page > 0 {
		t.SetPage(pagination.FromPage(f.page, f.pageSize).Index)
	}
	return nil
}

func (o *options) schema(name string) (*console.Schema, error) {
	s, ok := o.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown resource %q; run 'console-admin api-resources'", name)
	}
	return s, nil
}

// view connects to the backend and builds the list view of an entity. The
// caller must Close it.
func (o *options) view(name string) (*console.View, error) {
	s, err := o.schema(name)
	if err != nil {
		return nil, err
	}
	api, err := o.client()
	if err != nil {
		return nil, err
	}
	return console.NewView(s, api, validator.New(), o.log, console.ViewConfig{
		SearchDelay: o.searchDelay,
	}), nil
}

// parseSets turns repeated KEY=VALUE flags into form values for mode.
func parseSets(s *console.Schema, mode console.Mode, sets []string) (console.Values, error) {
	values := make(console.Values, len(sets))
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, want KEY=VALUE", kv)
		}
		f, ok := s.Field(key)
		if !ok {
			return nil, fmt.Errorf("unknown field %q for %s", key, s.Name)
		}
		if !f.Visible(mode) {
			return nil, fmt.Errorf("field %q cannot be changed when editing", key)
		}
		values[key] = value
	}
	return values, nil
}

func entityArg(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("resource type is required; run '%s api-resources'", cmd.Root().Name())
	}
	return nil
}
