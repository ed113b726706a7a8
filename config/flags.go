package config

import "github.com/spf13/pflag"

// RegisterFlags defines one flag per config key, defaulted from Defaults
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.Int(FlagName("rows"), d.Rows, "grid rows")
	fs.Int(FlagName("cols"), d.Cols, "grid columns")
	fs.Int(FlagName("workers"), d.Workers, "worker count, 0 for rows*cols")
	fs.Int64(FlagName("seed"), d.Seed, "run seed for every random stream")

	fs.Float64(FlagName("fire_probability"), d.FireProbability, "chance an eligible entity fires")
	fs.Int(FlagName("fire_cadence"), d.FireCadence, "ticks between entity fire windows, 0 disables")

	fs.Int(FlagName("base_delay"), d.BaseDelay, "fixed projectile travel rounds")
	fs.Int(FlagName("ledger_capacity"), d.LedgerCapacity, "projectile slots")
	fs.Float64(FlagName("compact_threshold"), d.CompactThreshold, "inactive slot fraction that triggers compaction")

	fs.String(FlagName("resolution"), d.Resolution, "defender impact policy: direct or stochastic")
	fs.Float64(FlagName("hit_chance"), d.HitChance, "stochastic hit band")
	fs.Float64(FlagName("deflect_left"), d.DeflectLeft, "stochastic left deflection band")
	fs.Float64(FlagName("deflect_right"), d.DeflectRight, "stochastic right deflection band")

	fs.Bool(FlagName("respawn"), d.Respawn, "enable the periodic respawn pass")
	fs.Int(FlagName("respawn_every"), d.RespawnEvery, "rounds between respawn passes")
	fs.Float64(FlagName("respawn_probability"), d.RespawnProbability, "revival chance of a flanked dead entity")

	fs.Duration(FlagName("collect_timeout"), d.CollectTimeout, "bound on one collection phase, 0 waits forever")
	fs.Duration(FlagName("round_delay"), d.RoundDelay, "pause between rounds")

	fs.String(FlagName("address"), d.Address, "coordinator TCP address")
	fs.String(FlagName("render"), d.Render, "auto, text, screen or none")
	fs.String(FlagName("summary"), d.Summary, "write a YAML run summary to this path")
	fs.String(FlagName("audio"), d.Audio, "write a WAV cue track of the run to this path")
	fs.String(FlagName("spectate"), d.Spectate, "serve a websocket spectator feed on this address")
	fs.Bool(FlagName("debug"), d.Debug, "write logs to logs/invaders.log")
}
