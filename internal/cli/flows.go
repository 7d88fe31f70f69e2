package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rigmatch/internal/compiler"
	"github.com/roach88/rigmatch/internal/flow"
	"github.com/roach88/rigmatch/internal/request"
)

// NewFlowsCommand creates the flows command: compile and display the
// intake flow definitions.
func NewFlowsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flows [definitions.cue]",
		Short: "Validate and display intake flow definitions",
		Long: `Compile intake flow definitions and print the resulting step graphs.

Without an argument the embedded default flows are compiled. Pass a CUE
file to validate alternative definitions before deploying them.

Example:
  rigmatch flows
  rigmatch flows ./custom-flows.cue --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			graphs, err := loadFlows(args)
			if err != nil {
				return fmt.Errorf("compile flows: %w", err)
			}
			return printFlows(cmd, rootOpts.Format, graphs)
		},
	}
}

// loadFlows compiles either the embedded defaults or a CUE file.
func loadFlows(args []string) (flow.Set, error) {
	if len(args) == 0 {
		return compiler.DefaultFlows()
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		return nil, err
	}
	return compiler.CompileSource(src)
}

// flowSummary is the JSON shape for one compiled graph.
type flowSummary struct {
	Kind  request.Kind  `json:"kind"`
	Entry string        `json:"entry"`
	Steps []stepSummary `json:"steps"`
}

type stepSummary struct {
	ID     string         `json:"id"`
	Field  string         `json:"field"`
	Type   flow.ValueType `json:"type"`
	Next   string         `json:"next,omitempty"`
	Tokens []string       `json:"tokens,omitempty"`
}

func printFlows(cmd *cobra.Command, format string, graphs flow.Set) error {
	// Fixed kind order for deterministic output
	kinds := []request.Kind{request.KindDemand, request.KindSupply}

	if format == "json" {
		var summaries []flowSummary
		for _, kind := range kinds {
			g, ok := graphs.Graph(kind)
			if !ok {
				continue
			}
			summaries = append(summaries, summarize(g))
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	out := cmd.OutOrStdout()
	for _, kind := range kinds {
		g, ok := graphs.Graph(kind)
		if !ok {
			continue
		}
		fmt.Fprintf(out, "%s flow (%d steps, entry %s)\n", kind, g.Len(), g.Entry())
		for _, s := range g.Steps() {
			switch s.Type {
			case flow.TypeChoice:
				fmt.Fprintf(out, "  %-20s %-20s %-8s tokens: %s\n",
					s.ID, s.Field, s.Type, strings.Join(s.Tokens(), ", "))
			default:
				next := s.Next
				if next == flow.Terminal {
					next = "(end)"
				}
				fmt.Fprintf(out, "  %-20s %-20s %-8s next: %s\n", s.ID, s.Field, s.Type, next)
			}
		}
	}
	return nil
}

func summarize(g *flow.Graph) flowSummary {
	summary := flowSummary{Kind: g.Kind(), Entry: g.Entry()}
	for _, s := range g.Steps() {
		summary.Steps = append(summary.Steps, stepSummary{
			ID:     s.ID,
			Field:  s.Field,
			Type:   s.Type,
			Next:   s.Next,
			Tokens: s.Tokens(),
		})
	}
	return summary
}
