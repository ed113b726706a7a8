package audio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/invaders/engine"
	"github.com/lixenwraith/invaders/parameter"
)

func drain(s beep.Streamer) int {
	buf := make([][2]float64, 256)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			return total
		}
	}
}

func TestCueVoices(t *testing.T) {
	if Cue(engine.Event{Kind: engine.EventMiss}) != nil {
		t.Fatal("miss should be silent")
	}
	if Cue(engine.Event{Kind: engine.EventDropped}) != nil {
		t.Fatal("dropped should be silent")
	}
	fire := Cue(engine.Event{Kind: engine.EventEntityFire, Tick: 4, Projectile: 9})
	if fire == nil {
		t.Fatal("entity fire has no voice")
	}
	if got, want := drain(fire), SampleRate.N(parameter.EntityFireCueDuration); got != want {
		t.Fatalf("entity fire cue = %d samples, want %d", got, want)
	}
}

func TestEnvelopeRamps(t *testing.T) {
	osc := newOscillator(100, parameter.DefenderHitCueDuration, WaveSquare, 1)
	env := withEnvelope(osc, parameter.DefenderHitCueDuration)
	buf := make([][2]float64, SampleRate.N(parameter.DefenderHitCueDuration))
	n, _ := env.Stream(buf)
	if n != len(buf) {
		t.Fatalf("streamed %d of %d", n, len(buf))
	}
	if buf[0][0] != 0 {
		t.Fatalf("first sample = %v, want silent attack start", buf[0][0])
	}
	mid := buf[n/2][0]
	if mid != 1 && mid != -1 {
		t.Fatalf("mid sample = %v, want full-scale square", mid)
	}
	if last := buf[n-1][0]; last > 0.1 || last < -0.1 {
		t.Fatalf("last sample = %v, want near silent release", last)
	}
}

func rounds() []engine.Snapshot {
	return []engine.Snapshot{
		{Tick: 0, Events: []engine.Event{{Kind: engine.EventDefenderFire, Projectile: 1}}},
		{Tick: 1, Events: []engine.Event{{Kind: engine.EventDefenderFire, Projectile: 2}, {Kind: engine.EventBlocked, Projectile: 1}}},
		{Tick: 2, Events: []engine.Event{{Kind: engine.EventKill, Entity: 0, Projectile: 2}}, Outcome: engine.OutcomeWin},
		{Tick: 2, Outcome: engine.OutcomeAborted},
	}
}

func record(t *testing.T, path string) *Track {
	t.Helper()
	tr := NewTrack(path)
	if err := tr.Start(); err != nil {
		t.Fatal(err)
	}
	for _, s := range rounds() {
		if err := tr.Observe(s); err != nil {
			t.Fatal(err)
		}
	}
	if err := tr.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	return tr
}

func TestTrackWritesWav(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.wav")
	tr := record(t, path)

	if tr.Rounds() != 3 {
		t.Fatalf("rounds = %d, want 3", tr.Rounds())
	}
	if tr.Cues() != 4 {
		t.Fatalf("cues = %d, want 4", tr.Cues())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("not a wav file: % x", data[:min(len(data), 16)])
	}
	frameBytes := parameter.AudioChannels * parameter.AudioPrecision
	if got, want := len(data)-44, tr.Samples()*frameBytes; got != want {
		t.Fatalf("payload = %d bytes, want %d", got, want)
	}

	again := filepath.Join(dir, "again.wav")
	record(t, again)
	other, err := os.ReadFile(again)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, other) {
		t.Fatal("same rounds rendered different audio")
	}
}

func TestEmptyTrackWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.wav")
	tr := NewTrack(path)
	if err := tr.Start(); err != nil {
		t.Fatal(err)
	}
	if err := tr.Stop(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("stat err = %v, want not exist", err)
	}
}
