package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kartik-turing/repo-scanner-frontend/internal/console"
	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/s3"
	"github.com/kartik-turing/repo-scanner-frontend/internal/metrics"
)

// Export destinations, as counted by the exports metric.
const (
	destStdout = "stdout"
	destFile   = "file"
	destS3     = "s3"
)

type exportFlags struct {
	file       string
	s3URI      string
	s3Region   string
	s3Endpoint string
	ids        []string
}

func defaultUploader(ctx context.Context, cfg s3.Config) (*s3.Uploader, error) {
	return s3.NewUploader(ctx, cfg)
}

func newExportCmd(o *options) *cobra.Command {
	var (
		lf listFlags
		ef exportFlags
	)
	cmd := &cobra.Command{
		Use:   "export RESOURCE",
		Short: "Export the filtered, sorted rows as CSV",
		Example: `  console-admin export partners > partners.csv
  console-admin export scan-sessions --search failed -f sessions.csv
  console-admin export customers --s3 s3://reports/customers.csv
  console-admin export partners --id p1 --id p7`,
		Args: cobra.MatchAll(entityArg, cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ef.file != "" && ef.s3URI != "" {
				return errors.New("--file and --s3 are mutually exclusive")
			}
			if ef.s3URI != "" {
				if _, _, err := s3.ParseURI(ef.s3URI); err != nil {
					return err
				}
			}

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
			view.Table().Select(ef.ids...)
			rows := view.Table().ExportRows()

			dest, err := o.export(cmd, view.Schema(), rows, ef)
			if err != nil {
				return err
			}
			metrics.ExportsTotal.WithLabelValues(view.Schema().Name, dest).Inc()
			if dest != destStdout {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows.\n", len(rows))
			}
			return nil
		},
	}
	lf.register(cmd, false)
	cmd.Flags().StringVarP(&ef.file, "file", "f", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&ef.s3URI, "s3", "", "Upload to s3://bucket/key")
	cmd.Flags().StringSliceVar(&ef.ids, "id", nil, "Export only these record ids (repeatable)")
	cmd.Flags().StringVar(&ef.s3Region, "s3-region", os.Getenv("EXPORT_S3_REGION"), "S3 region (env: EXPORT_S3_REGION)")
	cmd.Flags().StringVar(&ef.s3Endpoint, "s3-endpoint", os.Getenv("EXPORT_S3_ENDPOINT"), "S3-compatible endpoint (env: EXPORT_S3_ENDPOINT)")
	return cmd
}

// export writes the CSV to its destination and names it.
func (o *options) export(cmd *cobra.Command, s *console.Schema, rows []console.Row, ef exportFlags) (string, error) {
	switch {
	case ef.s3URI != "":
		var buf bytes.Buffer
		if err := console.ExportCSV(&buf, s.Columns, rows); err != nil {
			return "", err
		}
		up, err := o.newUploader(cmd.Context(), s3.Config{
			Region:    ef.s3Region,
			Endpoint:  ef.s3Endpoint,
			AccessKey: os.Getenv("EXPORT_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("EXPORT_S3_SECRET_KEY"),
		})
		if err != nil {
			return "", err
		}
		if err := up.Upload(cmd.Context(), ef.s3URI, &buf, "text/csv"); err != nil {
			return "", err
		}
		return destS3, nil

	case ef.file != "":
		f, err := os.Create(expandPath(ef.file))
		if err != nil {
			return "", err
		}
		if err := writeCSV(f, s, rows); err != nil {
			_ = f.Close()
			return "", err
		}
		return destFile, f.Close()

	default:
		return destStdout, writeCSV(cmd.OutOrStdout(), s, rows)
	}
}

func writeCSV(w io.Writer, s *console.Schema, rows []console.Row) error {
	return console.ExportCSV(w, s.Columns, rows)
}
