package parameter

import "time"

// Audio Format
const (
	AudioSampleRate = 22050
	AudioChannels   = 2
	AudioPrecision  = 2 // bytes per sample, 16-bit
)

// Cue Track Timing
const (
	// AudioRoundDuration is the slice of track time given to one round
	AudioRoundDuration = 120 * time.Millisecond

	// AudioCueAttack and AudioCueRelease shape every cue
	AudioCueAttack  = 5 * time.Millisecond
	AudioCueRelease = 40 * time.Millisecond

	// AudioCueGain scales each cue before mixing so a busy round does not clip
	AudioCueGain = 0.35
)

// Cue Voices
const (
	// Kill: bell, fundamental plus octave overtone
	KillCueFreq     = 880.0
	KillCueDuration = 100 * time.Millisecond

	// Entity fire: short low square blip
	EntityFireCueFreq     = 220.0
	EntityFireCueDuration = 40 * time.Millisecond

	// Defender fire: short high square blip
	DefenderFireCueFreq     = 660.0
	DefenderFireCueDuration = 25 * time.Millisecond

	// Defender hit: saw buzz
	DefenderHitCueFreq     = 100.0
	DefenderHitCueDuration = 110 * time.Millisecond

	// Respawn: two rising sine notes
	RespawnCueFreq1    = 523.25
	RespawnCueFreq2    = 783.99
	RespawnCueDuration = 50 * time.Millisecond

	// Blocked and deflected shots: noise burst
	DeflectCueDuration = 30 * time.Millisecond
)
