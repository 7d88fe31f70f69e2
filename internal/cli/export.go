package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/rigmatch/internal/export"
	"github.com/roach88/rigmatch/internal/request"
	"github.com/roach88/rigmatch/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Out string
}

// NewExportCommand creates the export command: mirror active records
// to CSV.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export active records as CSV",
		Long: `Write all active records as CSV, for operators who mirror postings
into a spreadsheet.

Example:
  rigmatch export --db ./rigmatch.db --out requests.csv
  rigmatch export > requests.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "output file (default stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	records, err := st.FindActive(cmd.Context(), request.Kind(""), "")
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.Out != "" {
		f, err := os.Create(opts.Out)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.Out, err)
		}
		defer f.Close()
		w = f
	}

	return export.WriteCSV(w, records)
}
