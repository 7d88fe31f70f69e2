package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rigmatch/internal/request"
	"github.com/roach88/rigmatch/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Kind     string
	Location string
}

// NewListCommand creates the list command: show active records.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active records",
		Long: `List active records, optionally filtered by kind and location.

Example:
  rigmatch list --db ./rigmatch.db
  rigmatch list --kind supply --location springfield`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter by kind (demand|supply)")
	cmd.Flags().StringVar(&opts.Location, "location", "", "filter by location substring")

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	kind := request.Kind(opts.Kind)
	if opts.Kind != "" && !kind.Valid() {
		return fmt.Errorf("unknown kind %q: must be demand or supply", opts.Kind)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	records, err := st.FindActive(cmd.Context(), kind, opts.Location)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "no active records")
		return nil
	}
	for _, rec := range records {
		switch rec.Kind {
		case request.KindDemand:
			fmt.Fprintf(out, "%4d  demand  %-20s %s\n", rec.ID, rec.Location, rec.EquipmentType)
		case request.KindSupply:
			fmt.Fprintf(out, "%4d  supply  %-20s %s\n", rec.ID, rec.Location, rec.AvailableEquipment)
		}
	}
	return nil
}
