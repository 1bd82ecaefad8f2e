package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/presensi/internal/transport/console"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Input   string
	Workers int
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process JSON-lines events from stdin or a file",
		Long: `Read one JSON event per line and write one result line per event.

Events for the same user are handled in order; different users are handled
concurrently. Malformed lines produce an ignored outcome and do not stop the run.

Event shape:
  {"user_id":"42","display_name":"Ana","kind":"command","command":"/presensi"}
  {"user_id":"42","display_name":"Ana","kind":"location","location":{"latitude":-6.2,"longitude":106.8}}
  {"user_id":"42","kind":"text","text":"hello"}

Examples:
  presensi run < events.jsonl
  presensi run --input events.jsonl --format text`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "events file (default stdin)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "dispatch workers (default from config)")

	return cmd
}

func runConsole(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions, "", cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if opts.Input != "" {
		f, err := os.Open(opts.Input)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open input", err)
		}
		defer f.Close()
		in = f
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	a, err := openApp(ctx, opts.RootOptions, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			a.logger.Error("error closing resources", "error", closeErr)
		}
	}()

	workers := opts.Workers
	if workers <= 0 {
		workers = cfg.Dispatch.Workers
	}

	d := console.New(a.coord, console.Options{
		Workers: workers,
		Format:  opts.Format,
		Logger:  a.logger,
	})

	a.logger.Info("processing events", "workers", workers)
	summary, err := d.Run(ctx, in, cmd.OutOrStdout())
	if err != nil && ctx.Err() == nil {
		return WrapExitError(ExitFailure, "event processing failed", err)
	}

	a.logger.Info("events processed", "lines", summary.Lines)
	for kind, n := range summary.Outcomes {
		a.logger.Debug("outcome total", "outcome", string(kind), "count", n)
	}
	return nil
}

// signalContext returns the command context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// describeCount renders "1 record" or "2 records".
func describeCount(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
