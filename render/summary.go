package render

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/invaders/engine"
)

// Report is the YAML document written at the end of a run
type Report struct {
	Outcome    string         `yaml:"outcome"`
	Rounds     int            `yaml:"rounds"`
	FinalTick  int            `yaml:"final_tick"`
	Rows       int            `yaml:"rows"`
	Cols       int            `yaml:"cols"`
	Alive      int            `yaml:"alive"`
	Version    uint64         `yaml:"version"`
	Events     map[string]int `yaml:"events"`
	Kills      []KillRecord   `yaml:"kills,omitempty"`
	Grid       []string       `yaml:"grid"`
	StartedAt  time.Time      `yaml:"started_at"`
	FinishedAt time.Time      `yaml:"finished_at"`
}

// KillRecord locates one destroyed entity
type KillRecord struct {
	Tick   int `yaml:"tick"`
	Entity int `yaml:"entity"`
	Row    int `yaml:"row"`
	Col    int `yaml:"col"`
}

// Summary accumulates a Report over the run and writes it on Stop
type Summary struct {
	path   string
	w      io.Writer
	now    func() time.Time
	report Report
	seen   bool
}

// NewSummary writes the report to path on Stop
func NewSummary(path string) *Summary {
	return &Summary{path: path, now: time.Now}
}

// NewSummaryWriter writes the report to w on Stop
func NewSummaryWriter(w io.Writer) *Summary {
	return &Summary{w: w, now: time.Now}
}

func (s *Summary) Name() string { return "summary" }

func (s *Summary) Start() error {
	s.report = Report{Events: make(map[string]int), StartedAt: s.now().UTC()}
	s.seen = false
	return nil
}

func (s *Summary) Observe(snap engine.Snapshot) error {
	r := &s.report
	// An abort after a published round repeats that round's snapshot
	repeat := s.seen && snap.Tick == r.FinalTick
	s.seen = true
	r.Outcome = snap.Outcome.String()
	r.FinalTick = snap.Tick
	r.Rows, r.Cols = snap.Rows, snap.Cols
	r.Alive = snap.AliveCount
	r.Version = snap.Version
	if !repeat {
		r.Rounds++
		for _, ev := range snap.Events {
			r.Events[ev.Kind.String()]++
			if ev.Kind == engine.EventKill {
				r.Kills = append(r.Kills, KillRecord{Tick: ev.Tick, Entity: ev.Entity, Row: ev.Row, Col: ev.Col})
			}
		}
	}
	lines := Cells(snap)
	r.Grid = r.Grid[:0]
	for _, line := range lines {
		r.Grid = append(r.Grid, string(line))
	}
	return nil
}

// Report returns the accumulated report
func (s *Summary) Report() Report {
	return s.report
}

func (s *Summary) Stop() error {
	s.report.FinishedAt = s.now().UTC()
	if s.w != nil {
		return s.encode(s.w)
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	if err := s.encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *Summary) encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s.report); err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	return enc.Close()
}
