package main

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/lixenwraith/invaders/audio"
	"github.com/lixenwraith/invaders/config"
	"github.com/lixenwraith/invaders/engine"
	"github.com/lixenwraith/invaders/render"
	"github.com/lixenwraith/invaders/spectate"
)

var (
	screenMu     sync.Mutex
	activeScreen *render.Screen
)

// restoreTerminal releases a screen left open by a crash
func restoreTerminal() {
	screenMu.Lock()
	defer screenMu.Unlock()
	if activeScreen != nil {
		activeScreen.Stop()
		activeScreen = nil
	}
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// renderMode resolves auto against the attached terminal
func (a *app) renderMode(cfg config.Config) string {
	if cfg.Render != config.RenderAuto {
		return cfg.Render
	}
	if a.isTerminal() {
		return config.RenderScreen
	}
	return config.RenderText
}

// buildHub registers every sink the configuration asks for
func (a *app) buildHub(cfg config.Config) (*render.Hub, error) {
	hub := render.NewHub()

	var sinks []render.Sink
	switch mode := a.renderMode(cfg); mode {
	case config.RenderText:
		sinks = append(sinks, render.NewText(a.stdout, true))
	case config.RenderScreen:
		scr := render.NewScreen(nil)
		screenMu.Lock()
		activeScreen = scr
		screenMu.Unlock()
		sinks = append(sinks, scr)
	case config.RenderNone:
	default:
		return nil, fmt.Errorf("%w: render mode %q", config.ErrInvalid, mode)
	}
	if cfg.Summary != "" {
		sinks = append(sinks, render.NewSummary(cfg.Summary))
	}
	if cfg.Audio != "" {
		sinks = append(sinks, audio.NewTrack(cfg.Audio))
	}
	if cfg.Spectate != "" {
		sinks = append(sinks, spectate.NewFeed(cfg.Spectate))
	}

	for _, s := range sinks {
		if err := hub.Register(s); err != nil {
			return nil, err
		}
	}
	return hub, nil
}

// observers is the option set every coordinator run shares
func (a *app) observers(hub *render.Hub) []engine.Option {
	return []engine.Option{
		engine.WithMetrics(a.metrics),
		engine.WithObserver(engine.ObserverFunc(a.observe)),
		engine.WithObserver(hub),
	}
}

// finish stops the sinks and, for a screen run, repeats the last frame on stdout
func (a *app) finish(hub *render.Hub, cfg config.Config) error {
	err := hub.StopAll()
	screenMu.Lock()
	activeScreen = nil
	screenMu.Unlock()
	if a.ran && a.renderMode(cfg) == config.RenderScreen {
		fmt.Fprint(a.stdout, render.Frame(a.last))
		fmt.Fprintf(a.stdout, "%s at tick %d\n", a.last.Outcome, a.last.Tick)
	}
	return err
}
