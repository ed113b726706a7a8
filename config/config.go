// Package config resolves run settings from flags, environment, an optional
// .env file and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/lixenwraith/invaders/engine"
	"github.com/lixenwraith/invaders/parameter"
	"github.com/lixenwraith/invaders/worker"
)

// ErrInvalid marks every configuration error; the CLI maps it to a usage exit
var ErrInvalid = errors.New("invalid configuration")

// Render modes
const (
	RenderAuto   = "auto"
	RenderText   = "text"
	RenderScreen = "screen"
	RenderNone   = "none"
)

// Config is the flat, user-facing settings set
type Config struct {
	Rows    int   `mapstructure:"rows"`
	Cols    int   `mapstructure:"cols"`
	Workers int   `mapstructure:"workers"` // 0 derives rows*cols
	Seed    int64 `mapstructure:"seed"`

	FireProbability float64 `mapstructure:"fire_probability"`
	FireCadence     int     `mapstructure:"fire_cadence"`

	BaseDelay        int     `mapstructure:"base_delay"`
	LedgerCapacity   int     `mapstructure:"ledger_capacity"`
	CompactThreshold float64 `mapstructure:"compact_threshold"`

	Resolution   string  `mapstructure:"resolution"`
	HitChance    float64 `mapstructure:"hit_chance"`
	DeflectLeft  float64 `mapstructure:"deflect_left"`
	DeflectRight float64 `mapstructure:"deflect_right"`

	Respawn            bool    `mapstructure:"respawn"`
	RespawnEvery       int     `mapstructure:"respawn_every"`
	RespawnProbability float64 `mapstructure:"respawn_probability"`

	CollectTimeout time.Duration `mapstructure:"collect_timeout"`
	RoundDelay     time.Duration `mapstructure:"round_delay"`

	Address  string `mapstructure:"address"`
	Render   string `mapstructure:"render"`
	Summary  string `mapstructure:"summary"`  // YAML run summary path
	Audio    string `mapstructure:"audio"`    // WAV cue track path
	Spectate string `mapstructure:"spectate"` // websocket feed listen address
	Debug    bool   `mapstructure:"debug"`
}

// Defaults returns the stock configuration
func Defaults() Config {
	return Config{
		Rows:               3,
		Cols:               4,
		FireProbability:    parameter.FireProbability,
		FireCadence:        parameter.FireCadence,
		BaseDelay:          parameter.BaseDelay,
		LedgerCapacity:     parameter.LedgerCapacity,
		CompactThreshold:   parameter.CompactThreshold,
		Resolution:         engine.ResolveDirect.String(),
		HitChance:          parameter.ResolveHitChance,
		DeflectLeft:        parameter.ResolveDeflectLeftChance,
		DeflectRight:       parameter.ResolveDeflectRightChance,
		Respawn:            parameter.RespawnEnabled,
		RespawnEvery:       parameter.RespawnEvery,
		RespawnProbability: parameter.RespawnProbability,
		CollectTimeout:     parameter.CollectTimeout,
		RoundDelay:         parameter.RoundDelay,
		Address:            parameter.NetworkAddress,
		Render:             RenderAuto,
	}
}

// WorkerCount is the number of workers the run expects
func (c Config) WorkerCount() int {
	if c.Workers == 0 {
		return c.Rows * c.Cols
	}
	return c.Workers
}

// Params converts the settings into engine knobs
func (c Config) Params() (engine.Params, error) {
	res, err := engine.ParseResolution(c.Resolution)
	if err != nil {
		return engine.Params{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return engine.Params{
		Rows:             c.Rows,
		Cols:             c.Cols,
		Workers:          c.WorkerCount(),
		Seed:             c.Seed,
		BaseDelay:        c.BaseDelay,
		LedgerCapacity:   c.LedgerCapacity,
		CompactThreshold: c.CompactThreshold,
		Resolution:       res,
		Deflection: engine.Deflection{
			Hit:   c.HitChance,
			Left:  c.DeflectLeft,
			Right: c.DeflectRight,
		},
		Respawn: engine.Respawn{
			Enabled:     c.Respawn,
			Every:       c.RespawnEvery,
			Probability: c.RespawnProbability,
		},
		RoundDelay: c.RoundDelay,
	}, nil
}

// Policy is the worker-side decision knobs
func (c Config) Policy() worker.Policy {
	return worker.Policy{
		FireProbability: c.FireProbability,
		FireCadence:     c.FireCadence,
	}
}

// Validate reports the first invalid setting, wrapped in ErrInvalid
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalid, c.Workers)
	}
	p, err := c.Params()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.FireProbability < 0 || c.FireProbability > 1 {
		return fmt.Errorf("%w: fire probability must be in [0,1], got %g", ErrInvalid, c.FireProbability)
	}
	if c.FireCadence < 0 {
		return fmt.Errorf("%w: fire cadence must not be negative, got %d", ErrInvalid, c.FireCadence)
	}
	if c.CollectTimeout < 0 {
		return fmt.Errorf("%w: collect timeout must not be negative", ErrInvalid)
	}
	switch c.Render {
	case RenderAuto, RenderText, RenderScreen, RenderNone:
	default:
		return fmt.Errorf("%w: render must be auto, text, screen or none, got %q", ErrInvalid, c.Render)
	}
	return nil
}
