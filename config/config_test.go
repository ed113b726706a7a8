package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return fs
}

// inTempDir keeps a stray .env in the working directory out of the test
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestDefaultsValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if got := Defaults().WorkerCount(); got != 12 {
		t.Fatalf("workers = %d, want 12", got)
	}
}

func TestWorkerMismatchRejected(t *testing.T) {
	c := Defaults()
	c.Rows, c.Cols, c.Workers = 2, 3, 5
	err := c.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rows", func(c *Config) { c.Rows = 0 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"fire probability", func(c *Config) { c.FireProbability = 1.5 }},
		{"negative cadence", func(c *Config) { c.FireCadence = -4 }},
		{"unknown resolution", func(c *Config) { c.Resolution = "bouncy" }},
		{"negative timeout", func(c *Config) { c.CollectTimeout = -time.Second }},
		{"render mode", func(c *Config) { c.Render = "vr" }},
		{"base delay", func(c *Config) { c.BaseDelay = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			tt.mutate(&c)
			if err := c.Validate(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParamsCarrySettings(t *testing.T) {
	c := Defaults()
	c.Resolution = "stochastic"
	c.Respawn = true
	c.Seed = 9
	p, err := c.Params()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	if p.Resolution.String() != "stochastic" || !p.Respawn.Enabled || p.Seed != 9 || p.Workers != 12 {
		t.Fatalf("params = %+v", p)
	}
	if pol := c.Policy(); pol.FireCadence != c.FireCadence || pol.FireProbability != c.FireProbability {
		t.Fatalf("policy = %+v", pol)
	}
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)
	c, err := Load(newFlags(t), Sources{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c != Defaults() {
		t.Fatalf("loaded %+v, want defaults", c)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := inTempDir(t)
	file := filepath.Join(dir, "invaders.yaml")
	body := "rows: 4\ncols: 5\nseed: 1\nround_delay: 250ms\nresolution: stochastic\n"
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INVADERS_SEED", "2")
	t.Setenv("INVADERS_COLS", "6")

	c, err := Load(newFlags(t, "--cols", "2"), Sources{File: file})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Rows != 4 {
		t.Errorf("rows = %d, want 4 from file", c.Rows)
	}
	if c.Seed != 2 {
		t.Errorf("seed = %d, want 2 from env", c.Seed)
	}
	if c.Cols != 2 {
		t.Errorf("cols = %d, want 2 from flag", c.Cols)
	}
	if c.RoundDelay != 250*time.Millisecond {
		t.Errorf("round delay = %v, want 250ms", c.RoundDelay)
	}
	if c.Resolution != "stochastic" {
		t.Errorf("resolution = %q", c.Resolution)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := inTempDir(t)
	if err := os.WriteFile(filepath.Join(dir, DefaultEnvFile), []byte("INVADERS_FIRE_CADENCE=7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("INVADERS_FIRE_CADENCE") })

	c, err := Load(newFlags(t), Sources{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.FireCadence != 7 {
		t.Fatalf("cadence = %d, want 7 from .env", c.FireCadence)
	}
}

func TestLoadRejectsMismatch(t *testing.T) {
	inTempDir(t)
	_, err := Load(newFlags(t, "--rows", "2", "--cols", "3", "--workers", "5"), Sources{})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	inTempDir(t)
	_, err := Load(nil, Sources{File: "does-not-exist.yaml"})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}
