package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lixenwraith/invaders/parameter"
)

// ErrInvalidParams is returned by Params.Validate and New
var ErrInvalidParams = errors.New("invalid engine parameters")

// Resolution selects how a defender projectile lands
type Resolution uint8

const (
	// ResolveDirect hits the target cell, falling back to the column frontier
	ResolveDirect Resolution = iota
	// ResolveStochastic draws once against hit, deflect-left, deflect-right and blocked bands
	ResolveStochastic
)

func (r Resolution) String() string {
	switch r {
	case ResolveDirect:
		return "direct"
	case ResolveStochastic:
		return "stochastic"
	default:
		return fmt.Sprintf("resolution(%d)", uint8(r))
	}
}

// ParseResolution maps a policy name to a Resolution
func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "direct":
		return ResolveDirect, nil
	case "stochastic":
		return ResolveStochastic, nil
	default:
		return ResolveDirect, fmt.Errorf("%w: unknown resolution policy %q", ErrInvalidParams, s)
	}
}

// Deflection holds the stochastic policy bands; whatever remains above their sum is blocked
type Deflection struct {
	Hit   float64
	Left  float64
	Right float64
}

// Respawn configures the periodic revival pass
type Respawn struct {
	Enabled     bool
	Every       int
	Probability float64
}

// Params are the coordinator's explicit knobs
type Params struct {
	Rows    int
	Cols    int
	Workers int
	Seed    int64

	BaseDelay        int
	LedgerCapacity   int
	CompactThreshold float64

	Resolution Resolution
	Deflection Deflection
	Respawn    Respawn

	// RoundDelay paces rounds for human viewing
	RoundDelay time.Duration
}

// DefaultParams returns the stock knobs for a rows x cols grid with one worker per cell
func DefaultParams(rows, cols int) Params {
	return Params{
		Rows:             rows,
		Cols:             cols,
		Workers:          rows * cols,
		BaseDelay:        parameter.BaseDelay,
		LedgerCapacity:   parameter.LedgerCapacity,
		CompactThreshold: parameter.CompactThreshold,
		Resolution:       ResolveDirect,
		Deflection: Deflection{
			Hit:   parameter.ResolveHitChance,
			Left:  parameter.ResolveDeflectLeftChance,
			Right: parameter.ResolveDeflectRightChance,
		},
		Respawn: Respawn{
			Enabled:     parameter.RespawnEnabled,
			Every:       parameter.RespawnEvery,
			Probability: parameter.RespawnProbability,
		},
		RoundDelay: parameter.RoundDelay,
	}
}

// Validate checks every precondition the round loop relies on
func (p Params) Validate() error {
	if p.Rows <= 0 || p.Cols <= 0 {
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalidParams, p.Rows, p.Cols)
	}
	if p.Rows > math.MaxInt/p.Cols {
		return fmt.Errorf("%w: %dx%d grid overflows the entity id range", ErrInvalidParams, p.Rows, p.Cols)
	}
	if p.Workers != p.Rows*p.Cols {
		return fmt.Errorf("%w: %dx%d grid needs %d workers, got %d",
			ErrInvalidParams, p.Rows, p.Cols, p.Rows*p.Cols, p.Workers)
	}
	if p.BaseDelay < 1 {
		return fmt.Errorf("%w: base delay must be at least 1, got %d", ErrInvalidParams, p.BaseDelay)
	}
	if p.LedgerCapacity < 1 {
		return fmt.Errorf("%w: ledger capacity must be positive, got %d", ErrInvalidParams, p.LedgerCapacity)
	}
	if p.CompactThreshold < 0 || p.CompactThreshold >= 1 {
		return fmt.Errorf("%w: compaction threshold must be in [0,1), got %g", ErrInvalidParams, p.CompactThreshold)
	}
	if p.Resolution > ResolveStochastic {
		return fmt.Errorf("%w: unknown resolution policy %d", ErrInvalidParams, p.Resolution)
	}
	d := p.Deflection
	if d.Hit < 0 || d.Left < 0 || d.Right < 0 || d.Hit+d.Left+d.Right > 1 {
		return fmt.Errorf("%w: deflection bands must be non-negative and sum to at most 1", ErrInvalidParams)
	}
	if p.Respawn.Enabled {
		if p.Respawn.Every < 1 {
			return fmt.Errorf("%w: respawn period must be positive, got %d", ErrInvalidParams, p.Respawn.Every)
		}
		if p.Respawn.Probability < 0 || p.Respawn.Probability > 1 {
			return fmt.Errorf("%w: respawn probability must be in [0,1], got %g", ErrInvalidParams, p.Respawn.Probability)
		}
	}
	if p.RoundDelay < 0 {
		return fmt.Errorf("%w: round delay must not be negative", ErrInvalidParams)
	}
	return nil
}
