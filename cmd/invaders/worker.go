package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/invaders/config"
	"github.com/lixenwraith/invaders/network"
	"github.com/lixenwraith/invaders/round"
	"github.com/lixenwraith/invaders/sim"
)

func newWorkerCmd(a *app) *cobra.Command {
	var ids string
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Connect entity workers to a coordinator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.load(cmd)
			if err != nil {
				return err
			}
			entities, err := parseIDs(ids, cfg.WorkerCount())
			if err != nil {
				return err
			}

			ncfg := network.DefaultConfig(cfg.Address, cfg.Rows, cfg.Cols)
			return sim.Workers(cmd.Context(), entities, cfg.Cols, cfg.Seed, cfg.Policy(),
				func(ctx context.Context, id int) (round.Endpoint, error) {
					return network.Dial(ctx, ncfg, id)
				})
		},
	}
	cmd.Flags().StringVar(&ids, "ids", "", "entity ids to run, e.g. 0-5 or 0,2,4 (default all)")
	return cmd
}

// parseIDs expands a list of ids and inclusive ranges; empty means every id
func parseIDs(list string, workers int) ([]int, error) {
	if strings.TrimSpace(list) == "" {
		out := make([]int, workers)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}

	seen := make(map[int]bool)
	var out []int
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		from, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("%w: ids %q: %w", config.ErrInvalid, part, err)
		}
		to := from
		if isRange {
			if to, err = strconv.Atoi(hi); err != nil {
				return nil, fmt.Errorf("%w: ids %q: %w", config.ErrInvalid, part, err)
			}
		}
		if from > to || from < 0 || to >= workers {
			return nil, fmt.Errorf("%w: ids %q outside 0..%d", config.ErrInvalid, part, workers-1)
		}
		for id := from; id <= to; id++ {
			if seen[id] {
				return nil, fmt.Errorf("%w: entity %d listed twice", config.ErrInvalid, id)
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out, nil
}
