package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/invaders/engine"
	"github.com/lixenwraith/invaders/network"
)

func newCoordinatorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "coordinator",
		Short: "Serve rounds to remote workers over TCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.load(cmd)
			if err != nil {
				return err
			}
			p, err := cfg.Params()
			if err != nil {
				return err
			}

			ncfg := network.DefaultConfig(cfg.Address, cfg.Rows, cfg.Cols)
			ncfg.CollectTimeout = cfg.CollectTimeout
			srv, err := network.Listen(ncfg)
			if err != nil {
				return err
			}
			defer srv.Close()

			hub, err := a.buildHub(cfg)
			if err != nil {
				return err
			}
			e, err := engine.New(p, srv, a.observers(hub)...)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.stderr, "waiting for %d workers on %s\n", ncfg.Workers(), srv.Addr())
			if err := srv.Accept(cmd.Context()); err != nil {
				return err
			}

			if err := hub.StartAll(); err != nil {
				return err
			}
			_, runErr := e.Run(cmd.Context())
			return errors.Join(runErr, a.finish(hub, cfg))
		},
	}
}
