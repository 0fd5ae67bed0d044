package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(o *options) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Manage API contexts",
		Long: `Contexts name a scanning API endpoint and its token. They are stored in
~/.scanner-console/config.yaml, or the file named by CONSOLE_CONFIG.`,
	}
	c.AddCommand(
		newSetContextCmd(),
		newUseContextCmd(),
		newDeleteContextCmd(),
		newGetContextsCmd(o),
		newCurrentContextCmd(),
		newViewConfigCmd(o),
	)
	return c
}

func newSetContextCmd() *cobra.Command {
	var detail ContextDetail
	c := &cobra.Command{
		Use:     "set-context NAME",
		Short:   "Create or update a context",
		Example: "  console-admin config set-context prod --url https://scanner.example.com --token-file ~/.scanner-token",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			cfg, err := loadOrEmpty()
			if err != nil {
				return err
			}
			cfg.SetContext(name, detail)
			if err := saveConfig(cfg); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Context %q set.\n", name)
			if cfg.CurrentContext == name {
				fmt.Fprintf(w, "Current context is %q.\n", name)
			}
			return nil
		},
	}
	f := c.Flags()
	f.StringVar(&detail.APIURL, "url", "", "scanning API base URL")
	f.StringVar(&detail.APIToken, "token", "", "API bearer token")
	f.StringVar(&detail.APITokenFile, "token-file", "", "file holding the API bearer token")
	_ = c.MarkFlagRequired("url")
	c.MarkFlagsMutuallyExclusive("token", "token-file")
	return c
}

func newUseContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use-context NAME",
		Short: "Switch the current context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.GetContext(args[0]) == nil {
				return fmt.Errorf("context %q not found", args[0])
			}
			cfg.CurrentContext = args[0]
			if err := saveConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to context %q.\n", args[0])
			return nil
		},
	}
}

func newDeleteContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-context NAME",
		Short: "Remove a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.DeleteContext(args[0]) {
				return fmt.Errorf("context %q not found", args[0])
			}
			if err := saveConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted context %q.\n", args[0])
			return nil
		},
	}
}

func newGetContextsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get-contexts",
		Short: "List contexts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch o.output {
			case outputJSON:
				return printJSON(w, cfg.redacted().Contexts)
			case outputYAML:
				return printYAML(w, cfg.redacted().Contexts)
			}
			t := newTable(w, "CURRENT", "NAME", "API-URL")
			for _, c := range cfg.Contexts {
				mark := " "
				if c.Name == cfg.CurrentContext {
					mark = "*"
				}
				t.AddRow(mark, c.Name, c.Context.APIURL)
			}
			return t.Flush()
		},
	}
}

func newCurrentContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current-context",
		Short: "Print the current context",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.CurrentContext == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "No current context set.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.CurrentContext)
			return nil
		},
	}
}

func newViewConfigCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Print the context file with tokens redacted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if o.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), cfg.redacted())
			}
			return printYAML(cmd.OutOrStdout(), cfg.redacted())
		},
	}
}
