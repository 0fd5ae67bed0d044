package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/apiclient"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/s3"
	"github.com/kartik-turing/repo-scanner-frontend/internal/resource"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/debounce"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
)

// Environment overrides.
const (
	envAPIURL   = "CONSOLE_API_URL"
	envAPIToken = "CONSOLE_API_TOKEN"
	envContext  = "CONSOLE_CONTEXT"
	envConfig   = "CONSOLE_CONFIG"
)

// requestTimeout bounds each backend call made by the CLI.
const requestTimeout = 30 * time.Second

var version = "dev"

// SetVersion sets the CLI version from build flags.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// options holds the global flags and the resolved connection.
type options struct {
	apiURL   string
	apiToken string
	context  string
	output   string
	verbose  bool

	registry    *resource.Registry
	log         *logger.Logger
	searchDelay time.Duration
	newUploader func(ctx context.Context, cfg s3.Config) (*s3.Uploader, error)
}

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{
		registry:    resource.MustRegistry(),
		searchDelay: debounce.DefaultDelay,
		newUploader: defaultUploader,
	})
}

func newRootCmd(o *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "console-admin",
		Short: "Scanner console administration CLI",
		Long: `console-admin is a kubectl-style CLI over the scanning API.

It lists, filters, edits and exports the same entities as the web
console, with the same field rules.

Use "console-admin config set-context" to configure your connection.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			o.resolve()
			level := "warn"
			if o.verbose {
				level = "debug"
			}
			o.log = logger.New(logger.Config{Level: level, Format: "text", Output: cmd.ErrOrStderr()})
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&o.apiURL, "api-url", "", "Override API URL (env: "+envAPIURL+")")
	flags.StringVar(&o.apiToken, "api-token", "", "Override API token (env: "+envAPIToken+")")
	flags.StringVarP(&o.context, "context", "c", "", "Use specific context (env: "+envContext+")")
	flags.StringVarP(&o.output, "output", "o", "table", "Output format: table, wide, json, yaml")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(
		newVersionCmd(),
		newAPIResourcesCmd(o),
		newConfigCmd(o),
		newGetCmd(o),
		newDescribeCmd(o),
		newCreateCmd(o),
		newUpdateCmd(o),
		newDeleteCmd(o),
		newExportCmd(o),
		newBrowseCmd(o),
	)
	return rootCmd
}

// resolve fills the connection from env, then from the config file.
func (o *options) resolve() {
	if o.apiURL == "" {
		o.apiURL = os.Getenv(envAPIURL)
	}
	if o.apiToken == "" {
		o.apiToken = os.Getenv(envAPIToken)
	}
	if o.apiURL != "" && o.apiToken != "" {
		return
	}

	u, t := o.resolveFromConfigFile()
	if o.apiURL == "" {
		o.apiURL = u
	}
	if o.apiToken == "" {
		o.apiToken = t
	}
}

func (o *options) resolveFromConfigFile() (string, string) {
	ctxName := o.context
	if ctxName == "" {
		ctxName = os.Getenv(envContext)
	}

	cfg, err := loadConfig()
	if err != nil {
		return "", ""
	}
	if ctxName == "" {
		ctxName = cfg.CurrentContext
	}

	ctx := cfg.GetContext(ctxName)
	if ctx == nil {
		return "", ""
	}

	return ctx.Context.APIURL, ctx.Context.Token()
}

// client returns the backend client. A missing token is allowed: some
// deployments leave the API open on a private network.
func (o *options) client() (*apiclient.Client, error) {
	if o.apiURL == "" {
		return nil, errors.New("API URL not configured. Use --api-url, " + envAPIURL + ", or 'console-admin config set-context'")
	}
	return apiclient.New(apiclient.Config{
		BaseURL: o.apiURL,
		Token:   o.apiToken,
		Timeout: requestTimeout,
	}, apiclient.WithLogger(o.log))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show CLI version",
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "console-admin version %s\n", version)
			fmt.Fprintf(w, "  Go:       %s\n", runtime.Version())
			fmt.Fprintf(w, "  OS/Arch:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

type apiResource struct {
	Name       string   `json:"name" yaml:"name"`
	Title      string   `json:"title" yaml:"title"`
	Collection string   `json:"collection" yaml:"collection"`
	Fields     []string `json:"fields" yaml:"fields"`
}

func newAPIResourcesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "api-resources",
		Short: "List the entities the console manages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out []apiResource
			for _, s := range o.registry.All() {
				r := apiResource{Name: s.Name, Title: s.Title, Collection: s.Collection}
				for _, f := range s.Fields {
					r.Fields = append(r.Fields, f.Key)
				}
				out = append(out, r)
			}
			return printResources(cmd.OutOrStdout(), o.output, out)
		},
	}
}

func printResources(w io.Writer, format string, out []apiResource) error {
	switch format {
	case outputJSON:
		return printJSON(w, out)
	case outputYAML:
		return printYAML(w, out)
	}
	t := newTable(w, "NAME", "TITLE", "COLLECTION", "FIELDS")
	for _, r := range out {
		fields := strings.Join(r.Fields, ",")
		if format != outputWide {
			fields = truncate(fields, 40)
		}
		t.AddRow(r.Name, r.Title, r.Collection, fields)
	}
	return t.Flush()
}
