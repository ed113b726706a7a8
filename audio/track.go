package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/lixenwraith/invaders/engine"
	"github.com/lixenwraith/invaders/parameter"
)

// Track is a sink that records one audio slice per round and writes a WAV on Stop
type Track struct {
	path string
	w    io.WriteSeeker

	segments []beep.Streamer
	cues     int
	lastTick int
	seen     bool
}

// NewTrack writes the finished track to path
func NewTrack(path string) *Track {
	return &Track{path: path}
}

// NewTrackWriter writes the finished track to w
func NewTrackWriter(w io.WriteSeeker) *Track {
	return &Track{w: w}
}

func (t *Track) Name() string { return "audio" }

func (t *Track) Start() error {
	t.segments = t.segments[:0]
	t.cues = 0
	t.seen = false
	return nil
}

// Observe appends the round's slice; a repeated tick (abort after publish) adds nothing
func (t *Track) Observe(s engine.Snapshot) error {
	if t.seen && s.Tick == t.lastTick {
		return nil
	}
	t.seen = true
	t.lastTick = s.Tick

	mixer := &beep.Mixer{}
	for _, ev := range s.Events {
		if cue := Cue(ev); cue != nil {
			mixer.Add(gain(cue, parameter.AudioCueGain))
			t.cues++
		}
	}
	t.segments = append(t.segments, beep.Take(SampleRate.N(parameter.AudioRoundDuration), mixer))
	return nil
}

// Rounds is the number of slices recorded
func (t *Track) Rounds() int { return len(t.segments) }

// Cues is the number of voiced events recorded
func (t *Track) Cues() int { return t.cues }

// Samples is the track length in frames
func (t *Track) Samples() int {
	return len(t.segments) * SampleRate.N(parameter.AudioRoundDuration)
}

func (t *Track) Stop() error {
	if len(t.segments) == 0 {
		return nil
	}
	if t.w != nil {
		return t.encode(t.w)
	}
	f, err := os.Create(t.path)
	if err != nil {
		return fmt.Errorf("audio track: %w", err)
	}
	if err := t.encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (t *Track) encode(w io.WriteSeeker) error {
	if err := wav.Encode(w, beep.Seq(t.segments...), Format); err != nil {
		return fmt.Errorf("audio track: %w", err)
	}
	return nil
}
