// Package audio renders a run as a WAV cue track: one fixed slice of sound
// per round, with a short voice mixed in for every event of that round.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"

	"github.com/lixenwraith/invaders/engine"
	"github.com/lixenwraith/invaders/parameter"
	"github.com/lixenwraith/invaders/rng"
)

// SampleRate of every generated stream
const SampleRate = beep.SampleRate(parameter.AudioSampleRate)

// Format of the encoded track
var Format = beep.Format{
	SampleRate:  SampleRate,
	NumChannels: parameter.AudioChannels,
	Precision:   parameter.AudioPrecision,
}

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSquare WaveType = iota
	WaveSaw
	WaveNoise
)

// oscillator generates raw non-sine waves; sine comes from beep/generators
// Noise draws from a seeded stream so the same run renders the same track
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	noise    *rng.FastRand
}

func newOscillator(freq float64, d time.Duration, wave WaveType, seed uint64) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: SampleRate.N(d),
		wave:     wave,
		noise:    rng.NewFastRand(seed),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = o.noise.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(SampleRate)
		o.phase = o.phase - math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack/release ramp over a stream of known length
type envelope struct {
	s       beep.Streamer
	total   int
	attack  int
	release int
	pos     int
}

func withEnvelope(s beep.Streamer, d time.Duration) beep.Streamer {
	return &envelope{
		s:       beep.Take(SampleRate.N(d), s),
		total:   SampleRate.N(d),
		attack:  SampleRate.N(parameter.AudioCueAttack),
		release: SampleRate.N(parameter.AudioCueRelease),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.s.Stream(samples)
	releaseStart := e.total - e.release
	if releaseStart < e.attack {
		releaseStart = e.attack
	}
	for i := 0; i < n; i++ {
		vol := 1.0
		switch {
		case e.pos < e.attack && e.attack > 0:
			vol = float64(e.pos) / float64(e.attack)
		case e.pos >= releaseStart && e.release > 0:
			vol = float64(e.total-e.pos) / float64(e.release)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

func sine(freq float64, d time.Duration) beep.Streamer {
	s, err := generators.SineTone(SampleRate, freq)
	if err != nil {
		// Only fails above Nyquist; cue frequencies are constants well below it
		return beep.Silence(SampleRate.N(d))
	}
	return withEnvelope(s, d)
}

func gain(s beep.Streamer, g float64) beep.Streamer {
	return &effects.Gain{Streamer: s, Gain: g - 1}
}

// Cue builds the voice for one event, nil for events without a voice
func Cue(ev engine.Event) beep.Streamer {
	seed := uint64(ev.Tick)<<32 | uint64(ev.Projectile)
	switch ev.Kind {
	case engine.EventKill:
		return beep.Mix(
			gain(sine(parameter.KillCueFreq, parameter.KillCueDuration), 0.7),
			gain(sine(2*parameter.KillCueFreq, parameter.KillCueDuration), 0.3),
		)
	case engine.EventEntityFire:
		return withEnvelope(newOscillator(parameter.EntityFireCueFreq, parameter.EntityFireCueDuration, WaveSquare, seed), parameter.EntityFireCueDuration)
	case engine.EventDefenderFire:
		return withEnvelope(newOscillator(parameter.DefenderFireCueFreq, parameter.DefenderFireCueDuration, WaveSquare, seed), parameter.DefenderFireCueDuration)
	case engine.EventDefenderHit:
		return withEnvelope(newOscillator(parameter.DefenderHitCueFreq, parameter.DefenderHitCueDuration, WaveSaw, seed), parameter.DefenderHitCueDuration)
	case engine.EventRespawn:
		return beep.Seq(
			sine(parameter.RespawnCueFreq1, parameter.RespawnCueDuration),
			sine(parameter.RespawnCueFreq2, parameter.RespawnCueDuration),
		)
	case engine.EventDeflect, engine.EventBlocked:
		return withEnvelope(newOscillator(0, parameter.DeflectCueDuration, WaveNoise, seed), parameter.DeflectCueDuration)
	default:
		return nil
	}
}
