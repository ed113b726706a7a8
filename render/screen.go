package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/invaders/engine"
)

// Styles per glyph
var (
	styleDefault    = tcell.StyleDefault
	styleAlive      = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleDead       = tcell.StyleDefault.Foreground(tcell.ColorDimGray)
	styleProjectile = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDefender   = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleWin        = tcell.StyleDefault.Foreground(tcell.ColorGreen).Reverse(true)
	styleLoss       = tcell.StyleDefault.Foreground(tcell.ColorRed).Reverse(true)
)

// Grid origin on screen, below the status lines
const (
	screenHeaderRows = 2
	screenMarginX    = 1
)

// Screen draws each round onto a tcell screen
type Screen struct {
	screen tcell.Screen
}

// NewScreen wraps s; a nil s opens the terminal on Start
func NewScreen(s tcell.Screen) *Screen {
	return &Screen{screen: s}
}

func (v *Screen) Name() string { return "screen" }

func (v *Screen) Start() error {
	if v.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		v.screen = s
	}
	if err := v.screen.Init(); err != nil {
		return err
	}
	v.screen.SetStyle(styleDefault)
	v.screen.HideCursor()
	v.screen.Clear()
	return nil
}

func (v *Screen) Observe(s engine.Snapshot) error {
	scr := v.screen
	if scr == nil {
		return fmt.Errorf("screen not started")
	}
	scr.Clear()

	v.text(0, 0, fmt.Sprintf("tick %-6d alive %d/%d  projectiles %d",
		s.Tick, s.AliveCount, s.Rows*s.Cols, len(s.Projectiles)), styleDefault)

	for y, line := range Cells(s) {
		for x, r := range line {
			scr.SetContent(screenMarginX+x, screenHeaderRows+y, r, nil, glyphStyle(r))
		}
	}

	if s.Outcome.Terminal() {
		style := styleLoss
		if s.Outcome == engine.OutcomeWin {
			style = styleWin
		}
		v.text(0, screenHeaderRows+s.Rows+2, fmt.Sprintf(" %s at tick %d ", s.Outcome, s.Tick), style)
	}

	scr.Show()
	return nil
}

// Stop releases the terminal; safe to call more than once
func (v *Screen) Stop() error {
	if v.screen != nil {
		v.screen.Fini()
		v.screen = nil
	}
	return nil
}

func (v *Screen) text(x, y int, s string, style tcell.Style) {
	for i, r := range s {
		v.screen.SetContent(x+i, y, r, nil, style)
	}
}

func glyphStyle(r rune) tcell.Style {
	switch r {
	case GlyphAlive:
		return styleAlive
	case GlyphDead:
		return styleDead
	case GlyphProjectile:
		return styleProjectile
	case GlyphDefender:
		return styleDefender
	default:
		return styleDefault
	}
}
