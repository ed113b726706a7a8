package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/invaders/config"
	"github.com/lixenwraith/invaders/engine"
	"github.com/lixenwraith/invaders/render"
	"github.com/lixenwraith/invaders/status"
)

// Exit codes
const (
	exitOK     = 0
	exitFatal  = 1
	exitConfig = 2
)

// app carries what every subcommand shares
type app struct {
	stdout, stderr io.Writer

	configFile string
	envFile    string

	metrics *status.Registry
	logFile io.Closer
	last    engine.Snapshot
	ran     bool

	// isTerminal decides --render auto
	isTerminal func() bool
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:     stdout,
		stderr:     stderr,
		metrics:    status.NewRegistry(),
		isTerminal: stdoutIsTerminal,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "invaders",
		Short:         "Lock-step invaders simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", config.ErrInvalid, err)
	})

	pf := root.PersistentFlags()
	config.RegisterFlags(pf)
	pf.StringVar(&a.configFile, "config", "", "YAML, TOML or JSON config file")
	pf.StringVar(&a.envFile, "env-file", "", "dotenv file (default .env when present)")

	root.AddCommand(newRunCmd(a), newCoordinatorCmd(a), newWorkerCmd(a))
	return root
}

// load resolves the configuration and starts logging
func (a *app) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.Flags(), config.Sources{File: a.configFile, EnvFile: a.envFile})
	if err != nil {
		return config.Config{}, err
	}
	if f := setupLogging(cfg.Debug); f != nil {
		a.logFile = f
	}
	return cfg, nil
}

// observe records the latest round for the fatal report
func (a *app) observe(s engine.Snapshot) error {
	a.last = s
	a.ran = true
	return nil
}

// execute runs the command line and maps errors to exit codes
func execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(stdout, stderr)
	root := newRootCmd(a)
	root.SetArgs(args)

	cmd, err := root.ExecuteContextC(ctx)
	if cmd == nil {
		cmd = root
	}
	if a.logFile != nil {
		defer a.logFile.Close()
	}
	if a.metrics.Len() > 0 {
		a.metrics.WriteTo(stderr)
	}
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, config.ErrInvalid):
		fmt.Fprintf(stderr, "invaders: %v\n\n", err)
		cmd.SetOut(stderr)
		cmd.Usage()
		return exitConfig
	default:
		fmt.Fprintf(stderr, "invaders: %v\n", err)
		if a.ran {
			fmt.Fprintf(stderr, "last round (tick %d, %s):\n%s", a.last.Tick, a.last.Outcome, render.Frame(a.last))
		}
		return exitFatal
	}
}
