package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/rigmatch/internal/match"
	"github.com/roach88/rigmatch/internal/service"
	"github.com/roach88/rigmatch/internal/store"
)

// MatchOptions holds flags for the match command.
type MatchOptions struct {
	*RootOptions
	Record bool
	Notes  string
}

// NewMatchCommand creates the match command: rank active supply for a
// demand record.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "match <demand-id>",
		Short: "Rank active supply records for a demand",
		Long: `Compute ranked supply candidates for an existing demand record.

The query is read-only: it never changes any record's status. Passing
--record persists the top candidate as a dispatcher match row; driving
the records' lifecycle from there remains the dispatcher's decision.

Example:
  rigmatch match 42 --db ./rigmatch.db
  rigmatch match 42 --record --notes "called both parties"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			demandID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid demand id %q", args[0])
			}
			return runMatch(cmd, opts, demandID)
		},
	}

	cmd.Flags().BoolVar(&opts.Record, "record", false, "persist the top candidate as a match row")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "dispatcher notes for --record")

	return cmd
}

func runMatch(cmd *cobra.Command, opts *MatchOptions, demandID int64) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	intake := service.New(st, nil)
	demand, candidates, err := intake.Matches(cmd.Context(), demandID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(candidates); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "demand %d (%s in %s)\n", demand.ID, demand.EquipmentType, demand.Location)
		printCandidates(out, candidates)
	}

	if opts.Record && len(candidates) > 0 {
		top := candidates[0]
		id, inserted, err := st.RecordMatch(cmd.Context(), demandID, top.SupplyID, top.Score, opts.Notes)
		if err != nil {
			return fmt.Errorf("record match: %w", err)
		}
		if inserted {
			fmt.Fprintf(out, "match %d recorded: demand %d / supply %d\n", id, demandID, top.SupplyID)
		} else {
			fmt.Fprintf(out, "match already recorded as %d\n", id)
		}
	}

	return nil
}

// printCandidates renders a ranked candidate list as text.
func printCandidates(out io.Writer, candidates []match.Candidate) {
	if len(candidates) == 0 {
		fmt.Fprintln(out, "no qualifying supply candidates")
		return
	}
	for i, c := range candidates {
		fmt.Fprintf(out, "%2d. supply %d  score %.1f\n", i+1, c.SupplyID, c.Score)
	}
}
