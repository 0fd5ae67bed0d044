package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kartik-turing/repo-scanner-frontend/internal/console"
)

// errNotConfirmed is returned when the backend answers a write without a
// message. The console treats that as "nothing happened".
var errNotConfirmed = errors.New("backend did not confirm the change")

func newCreateCmd(o *options) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:     "create RESOURCE --set KEY=VALUE...",
		Short:   "Create a resource",
		Example: `  console-admin create partners --set name=Northwind --set city=Oslo ...`,
		Args:    cobra.MatchAll(entityArg, cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := o.view(args[0])
			if err != nil {
				return err
			}
			defer view.Close()

			values, err := parseSets(view.Schema(), console.ModeCreate, sets)
			if err != nil {
				return err
			}
			o.mountOptions(cmd, view)
			if err := view.OpenCreate(); err != nil {
				return err
			}
			return submit(cmd, view, values)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as KEY=VALUE (repeatable)")
	return cmd
}

func newUpdateCmd(o *options) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "update RESOURCE ID --set KEY=VALUE...",
		Short: "Update a resource",
		Long:  "Update a resource. Fields not set keep their current value.",
		Args:  cobra.MatchAll(entityArg, cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := o.view(args[0])
			if err != nil {
				return err
			}
			defer view.Close()

			values, err := parseSets(view.Schema(), console.ModeEdit, sets)
			if err != nil {
				return err
			}
			if len(values) == 0 {
				return errors.New("nothing to update; pass at least one --set")
			}
			if err := view.Refresh(cmd.Context(), true); err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			o.mountOptions(cmd, view)
			if err := view.OpenEdit(args[1]); err != nil {
				return err
			}
			return submit(cmd, view, values)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as KEY=VALUE (repeatable)")
	return cmd
}

// mountOptions loads the selector options from related collections. A
// collection that fails to load leaves its selector without options, which
// the field rules then accept as free input.
func (o *options) mountOptions(cmd *cobra.Command, view *console.View) {
	if err := view.Drawer().Mount(cmd.Context()); err != nil {
		o.log.Warn("selector options unavailable", "entity", view.Schema().Name, "error", err)
	}
}

// submit fills the open drawer and submits it. Field errors are printed one
// per line.
func submit(cmd *cobra.Command, view *console.View, values console.Values) error {
	d := view.Drawer()
	d.SetValues(values)

	res, err := view.SubmitDrawer(cmd.Context())
	if errors.Is(err, console.ErrValidation) {
		printFieldErrors(cmd.ErrOrStderr(), d.Errors())
		return err
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", res.Mode, view.Schema().Singular, err)
	}
	if res.Message == "" {
		return errNotConfirmed
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	return err
}

func printFieldErrors(w io.Writer, errs map[string]string) {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, errs[k])
	}
}

func newDeleteCmd(o *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete RESOURCE ID",
		Short: "Delete a resource",
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
			if err := view.RequestDelete(args[1]); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !yes && !confirm(cmd.InOrStdin(), w, view.Modal()) {
				_ = view.CancelDelete()
				fmt.Fprintln(w, "Aborted.")
				return nil
			}
			if err := view.ConfirmDelete(cmd.Context()); err != nil {
				return fmt.Errorf("delete %s %s: %w", view.Schema().Singular, args[1], err)
			}
			fmt.Fprintf(w, "%s %s deleted.\n", view.Schema().Singular, args[1])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// confirm shows the delete dialog and reads a yes/no answer.
func confirm(in io.Reader, w io.Writer, m *console.DeleteModal) bool {
	fmt.Fprintf(w, "%s\n%s [%s/%s]: ", m.Title, m.Description, "y", "N")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", strings.ToLower(m.ConfirmText):
		return true
	}
	return false
}
