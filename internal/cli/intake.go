package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rigmatch/internal/compiler"
	"github.com/roach88/rigmatch/internal/engine"
	"github.com/roach88/rigmatch/internal/notify"
	"github.com/roach88/rigmatch/internal/request"
	"github.com/roach88/rigmatch/internal/service"
	"github.com/roach88/rigmatch/internal/store"
)

// IntakeOptions holds flags for the intake command.
type IntakeOptions struct {
	*RootOptions
	Kind      string
	OwnerID   int64
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

// NewIntakeCommand creates the intake command: run one guided intake
// conversation on stdin and persist the resulting record.
func NewIntakeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IntakeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "intake",
		Short: "Run a guided intake conversation",
		Long: `Run one guided intake conversation on standard input.

Answers are read line by line; choice steps list their tokens and
accept one of them. On completion the record is persisted and, for a
demand, matching supply records are ranked and printed.

Example:
  rigmatch intake --kind demand --owner 1001 --db ./rigmatch.db
  rigmatch intake --kind supply --owner 2002 --first-name Dan --phone +15550100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntake(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "request kind (demand|supply)")
	cmd.Flags().Int64Var(&opts.OwnerID, "owner", 0, "external owner identifier")
	cmd.Flags().StringVar(&opts.Username, "username", "", "owner username")
	cmd.Flags().StringVar(&opts.FirstName, "first-name", "", "owner first name")
	cmd.Flags().StringVar(&opts.LastName, "last-name", "", "owner last name")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "owner phone number")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func runIntake(cmd *cobra.Command, opts *IntakeOptions) error {
	kind := request.Kind(opts.Kind)
	if !kind.Valid() {
		return fmt.Errorf("unknown kind %q: must be demand or supply", opts.Kind)
	}

	graphs, err := compiler.DefaultFlows()
	if err != nil {
		return fmt.Errorf("compile flows: %w", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	eng := engine.New(graphs)
	intake := service.New(st, &notify.Log{})

	fields, err := converse(cmd, eng, kind)
	if err != nil {
		return err
	}
	if fields == nil {
		// Input ended mid-flow; nothing is persisted.
		fmt.Fprintln(cmd.OutOrStdout(), "intake abandoned, nothing saved")
		return nil
	}

	result, err := intake.Finalize(cmd.Context(), kind, fields, opts.OwnerID, request.OwnerProfile{
		Username:  opts.Username,
		FirstName: opts.FirstName,
		LastName:  opts.LastName,
		Phone:     opts.Phone,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "record %d created (%s, %s)\n", result.Record.ID, result.Record.Kind, result.Record.Location)
	if result.Record.Kind == request.KindDemand {
		printCandidates(out, result.Candidates)
	}
	return nil
}

// converse drives the engine against stdin until the flow completes.
// Returns nil fields if input ends before the terminal step.
func converse(cmd *cobra.Command, eng *engine.Engine, kind request.Kind) (request.Fields, error) {
	state, outcome, err := eng.StartFlow(kind)
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	for {
		switch outcome.Kind {
		case engine.OutcomeCompleted:
			return outcome.Collected, nil

		case engine.OutcomeValidationError:
			fmt.Fprintln(out, outcome.Message)

		default:
			fmt.Fprintln(out, outcome.Prompt)
			if outcome.Kind == engine.OutcomeAwaitingChoice {
				fmt.Fprintf(out, "choose one of: %s\n", strings.Join(outcome.Tokens, ", "))
			}
		}

		if !scanner.Scan() {
			eng.Abandon(state)
			return nil, scanner.Err()
		}
		line := scanner.Text()

		if awaitingChoice(eng, state) {
			outcome, err = eng.ProcessChoice(state, strings.TrimSpace(line))
		} else {
			outcome, err = eng.ProcessText(state, line)
		}
		if err != nil {
			eng.Abandon(state)
			return nil, err
		}
	}
}

// awaitingChoice reports whether the state sits on a choice step, so
// the next line is routed to ProcessChoice.
func awaitingChoice(eng *engine.Engine, state *engine.FlowState) bool {
	step, ok := eng.CurrentStep(state)
	return ok && step.IsChoice()
}
