package render

import (
	"fmt"
	"io"

	"github.com/lixenwraith/invaders/engine"
)

// Text prints every round as a tick header, the grid, the round's events and
// the outcome once decided
type Text struct {
	w      io.Writer
	events bool
}

// NewText creates a text sink writing to w; events adds one line per round event
func NewText(w io.Writer, events bool) *Text {
	return &Text{w: w, events: events}
}

func (t *Text) Name() string { return "text" }
func (t *Text) Start() error { return nil }
func (t *Text) Stop() error  { return nil }

func (t *Text) Observe(s engine.Snapshot) error {
	if _, err := fmt.Fprintf(t.w, "=== TICK %d ===\n%s", s.Tick, Frame(s)); err != nil {
		return err
	}
	if t.events {
		for _, ev := range s.Events {
			if _, err := fmt.Fprintf(t.w, "  %s\n", ev); err != nil {
				return err
			}
		}
	}
	if s.Outcome.Terminal() {
		_, err := fmt.Fprintf(t.w, "*** %s at tick %d, %d of %d entities left ***\n",
			s.Outcome, s.Tick, s.AliveCount, s.Rows*s.Cols)
		return err
	}
	return nil
}
