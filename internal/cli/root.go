package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/modbuild/pulse/internal/cli/formatter"
	"github.com/modbuild/pulse/internal/config"
	"github.com/modbuild/pulse/internal/contract"
	"github.com/spf13/cobra"
)

// Wiring builds an App from resolved configuration. The returned close
// function releases whatever the App holds open.
type Wiring func(cfg config.Config) (*App, func() error, error)

// Options are the process-level inputs of a CLI run.
type Options struct {
	Env    map[string]string
	Wire   Wiring
	Stdout io.Writer
	Stderr io.Writer
	// StdoutIsTerminal selects text output for --output=auto.
	StdoutIsTerminal bool
}

const (
	outputAuto = "auto"
	outputText = "text"
	outputJSON = "json"
)

// session carries the App from the root command's pre-run hook to the
// subcommand being executed.
type session struct {
	opts   Options
	app    *App
	close  func() error
	output string
}

// Execute runs the pulse command tree against args.
func Execute(ctx context.Context, opts Options, args []string) error {
	s := &session{opts: opts}
	root := newRootCmd(s)
	root.SetArgs(args)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	err := root.ExecuteContext(ctx)
	if s.close != nil {
		if cerr := s.close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing store: %w", cerr)
		}
	}
	return err
}

func newRootCmd(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:           "pulse",
		Short:         "Derived metrics for a modular construction factory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.open(cmd)
		},
	}
	config.RegisterFlags(root.PersistentFlags())
	root.PersistentFlags().StringVarP(&s.output, "output", "o", outputAuto, "Output format: auto, text or json")

	root.AddCommand(
		newHealthCmd(s),
		newPortfolioCmd(s),
		newOEECmd(s),
		newDefectsCmd(s),
		newUtilizationCmd(s),
		newCrossTrainCmd(s),
		newLoadBoardCmd(s),
		newCapacityCmd(s),
		newPipelineCmd(s),
		newSeedCmd(s),
		newExportCmd(s),
		newServeCmd(s),
		newDashboardCmd(s),
	)
	return root
}

func (s *session) open(cmd *cobra.Command) error {
	switch s.output {
	case outputAuto, outputText, outputJSON:
	default:
		return fmt.Errorf("unknown output format %q", s.output)
	}
	cfg, err := config.Load(config.LoadInput{Env: s.opts.Env, Flags: cmd.Flags()})
	if err != nil {
		return err
	}
	app, closeFn, err := s.opts.Wire(cfg)
	if err != nil {
		return err
	}
	s.app, s.close = app, closeFn
	return nil
}

func (s *session) jsonOutput() bool {
	switch s.output {
	case outputJSON:
		return true
	case outputText:
		return false
	}
	return !s.opts.StdoutIsTerminal
}

// emit prints a scorer Result. Fetch failures still print the default
// metric and only warn; any other envelope error fails the command.
func emit[T any](s *session, res contract.Result[T], render func(T) string) error {
	if s.jsonOutput() {
		if err := writeJSON(s.opts.Stdout, res); err != nil {
			return err
		}
	} else {
		fmt.Fprint(s.opts.Stdout, render(res.Data))
	}
	if res.Error == nil {
		return nil
	}
	if res.Error.Code == contract.ErrFetchFailed {
		fmt.Fprintln(s.opts.Stderr, formatter.Warning("showing default values: "+res.Error.Message))
		return nil
	}
	return errors.New(res.Error.Message)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
