package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/invaders/config"
	"github.com/lixenwraith/invaders/sim"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run [rows cols]",
		Short: "Run the coordinator and every worker in this process",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("%w: run takes rows and cols or nothing, got %d arguments", config.ErrInvalid, len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load(cmd)
			if err != nil {
				return err
			}
			if cfg, err = withGrid(cfg, args); err != nil {
				return err
			}
			p, err := cfg.Params()
			if err != nil {
				return err
			}

			hub, err := a.buildHub(cfg)
			if err != nil {
				return err
			}
			if err := hub.StartAll(); err != nil {
				return err
			}
			_, runErr := sim.Local(cmd.Context(), p, cfg.Policy(), cfg.CollectTimeout, a.observers(hub)...)
			return errors.Join(runErr, a.finish(hub, cfg))
		},
	}
}

// withGrid applies positional rows and cols over the loaded settings
func withGrid(cfg config.Config, args []string) (config.Config, error) {
	if len(args) == 0 {
		return cfg, nil
	}
	rows, err := strconv.Atoi(args[0])
	if err != nil {
		return cfg, fmt.Errorf("%w: rows %q: %w", config.ErrInvalid, args[0], err)
	}
	cols, err := strconv.Atoi(args[1])
	if err != nil {
		return cfg, fmt.Errorf("%w: cols %q: %w", config.ErrInvalid, args[1], err)
	}
	cfg.Rows, cfg.Cols = rows, cols
	return cfg, cfg.Validate()
}
