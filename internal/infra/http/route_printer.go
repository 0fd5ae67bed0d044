package http

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"text/tabwriter"
)

// Route output formats.
const (
	RouteFormatTable  = "table"
	RouteFormatJSON   = "json"
	RouteFormatCSV    = "csv"
	RouteFormatSimple = "simple"
)

// RouteInfo holds information about a registered route.
type RouteInfo struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Handler string `json:"handler"`
}

// RouteStats holds route statistics.
type RouteStats struct {
	Total   int            `json:"total"`
	Methods map[string]int `json:"methods"`
	Routes  []RouteInfo    `json:"routes"`
}

// RouteFilters narrows and orders a route listing.
type RouteFilters struct {
	Method string
	Path   string
	SortBy string // "path" (default), "method" or "handler"
}

// CollectRoutes walks the router and collects all registered routes.
func CollectRoutes(router Router) RouteStats {
	stats := RouteStats{
		Methods: make(map[string]int),
		Routes:  []RouteInfo{},
	}

	_ = router.Walk(func(method, path string, handler http.Handler) error {
		stats.Routes = append(stats.Routes, RouteInfo{
			Method:  method,
			Path:    path,
			Handler: handlerName(handler),
		})
		stats.Methods[method]++
		stats.Total++
		return nil
	})

	return stats
}

// handlerName returns the short function name behind handler. Handlers
// wrapped in route middleware report the middleware closure.
func handlerName(handler http.Handler) string {
	v := reflect.ValueOf(handler)
	if v.Kind() != reflect.Func {
		return fmt.Sprintf("%T", handler)
	}
	fn := runtime.FuncForPC(v.Pointer())
	if fn == nil {
		return fmt.Sprintf("%T", handler)
	}
	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}

// PrintRoutes writes the filtered routes to w in format.
func PrintRoutes(w io.Writer, stats RouteStats, format string, filters RouteFilters) error {
	routes := filterRoutes(stats.Routes, filters)
	sortRoutes(routes, filters.SortBy)

	switch format {
	case RouteFormatJSON:
		out := stats
		out.Routes = routes
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case RouteFormatCSV:
		return printCSV(w, routes)
	case RouteFormatSimple:
		for _, r := range routes {
			if _, err := fmt.Fprintf(w, "%-6s %s\n", r.Method, r.Path); err != nil {
				return err
			}
		}
		return nil
	default:
		return printTable(w, routes, stats)
	}
}

func filterRoutes(routes []RouteInfo, filters RouteFilters) []RouteInfo {
	out := make([]RouteInfo, 0, len(routes))
	for _, r := range routes {
		if filters.Method != "" && !strings.EqualFold(r.Method, filters.Method) {
			continue
		}
		if filters.Path != "" && !strings.Contains(r.Path, filters.Path) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func sortRoutes(routes []RouteInfo, by string) {
	sort.SliceStable(routes, func(i, j int) bool {
		a, b := routes[i], routes[j]
		switch by {
		case "method":
			if a.Method != b.Method {
				return a.Method < b.Method
			}
			return a.Path < b.Path
		case "handler":
			return a.Handler < b.Handler
		default:
			if a.Path != b.Path {
				return a.Path < b.Path
			}
			return a.Method < b.Method
		}
	})
}

func printTable(w io.Writer, routes []RouteInfo, stats RouteStats) error {
	methods := make([]string, 0, len(stats.Methods))
	for m := range stats.Methods {
		methods = append(methods, m)
	}
	sort.Strings(methods)

	counts := make([]string, 0, len(methods))
	for _, m := range methods {
		counts = append(counts, fmt.Sprintf("%s %d", m, stats.Methods[m]))
	}
	fmt.Fprintf(w, "Console routes: %d (%s)\n\n", stats.Total, strings.Join(counts, ", "))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tHANDLER")
	for _, r := range routes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Method, r.Path, r.Handler)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nShowing %d of %d routes\n", len(routes), stats.Total)
	return err
}

func printCSV(w io.Writer, routes []RouteInfo) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"method", "path", "handler"}); err != nil {
		return err
	}
	for _, r := range routes {
		if err := cw.Write([]string{r.Method, r.Path, r.Handler}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
