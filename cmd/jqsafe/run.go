package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corazon/jqsafe/jq"
	"github.com/corazon/jqsafe/resource"
	"github.com/corazon/jqsafe/span"
	"github.com/corazon/jqsafe/value"
)

// runConfig holds configuration for the run command.
type runConfig struct {
	inputPath string
	verbose   bool
	maxSteps  int
	maxDepth  int
	maxOutput int
	args      []string
}

// newRunCmd creates the run subcommand.
func newRunCmd() *cobra.Command {
	cfg := &runConfig{}

	cmd := &cobra.Command{
		Use:   "run <filter>",
		Short: "Run a jq filter against a JSON input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd, args[0], cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.inputPath, "input", "-", "input file, or - for stdin")
	cmd.Flags().BoolVar(&cfg.verbose, "verbose", false, "log run lifecycle to stderr")
	cmd.Flags().IntVar(&cfg.maxSteps, "max-steps", resource.DefaultLimits.Steps, "evaluation step cap")
	cmd.Flags().IntVar(&cfg.maxDepth, "max-depth", resource.DefaultLimits.Depth, "recursion depth cap")
	cmd.Flags().IntVar(&cfg.maxOutput, "max-outputs", resource.DefaultLimits.Outputs, "output value cap")
	cmd.Flags().StringArrayVar(&cfg.args, "arg", nil, "bind $name to a string value (name=value), repeatable")

	return cmd
}

// parseArgs turns repeated name=value --arg flags into the $var bindings
// jq.Options.Vars expects. jqsafe only binds string values via --arg (spec
// §6); jq's own --argjson/--jsonargs forms are out of scope.
func parseArgs(raw []string) (map[string]value.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	vars := make(map[string]value.Value, len(raw))
	for _, kv := range raw {
		name, val, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--arg %q: expected name=value", kv)
		}
		vars[name] = value.String(val)
	}
	return vars, nil
}

func runFilter(cmd *cobra.Command, filter string, cfg *runConfig) error {
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: verboseLevel(cfg.verbose),
	}))

	var raw []byte
	var err error
	if cfg.inputPath == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(cfg.inputPath)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	logger.Debug("read input", "bytes", len(raw), "source", cfg.inputPath)

	in, err := value.FromJSON(raw)
	if err != nil {
		return fmt.Errorf("decoding input: %w", err)
	}

	vars, err := parseArgs(cfg.args)
	if err != nil {
		return err
	}

	opts := jq.Options{
		Limits: resource.Limits{Steps: cfg.maxSteps, Depth: cfg.maxDepth, Outputs: cfg.maxOutput},
		Vars:   vars,
	}

	out, runErr := jq.Run(filter, in, opts)
	if runErr != nil {
		logger.Debug("run failed", "filter", filter, "error", runErr)
		printFault(cmd, filter, runErr)
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return runErr
	}
	logger.Debug("run produced output", "count", len(out))

	for _, v := range out {
		cmd.Println(value.ToJSON(v))
	}
	return nil
}

func verboseLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// printFault reports runErr the way the teacher's repl reports parse/eval
// errors, but with a source-span caret under the offending filter text
// instead of a bare message.
func printFault(cmd *cobra.Command, filter string, runErr error) {
	var sb strings.Builder
	if f, ok := runErr.(interface{ Span() span.Span }); ok {
		span.Fprint(&sb, filter, f.Span())
	}
	fmt.Fprintln(cmd.ErrOrStderr(), runErr)
	if sb.Len() > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), sb.String())
	}
}
