// Package rng provides small deterministic random streams.
// Every entity owns one stream derived from the run seed and its id, so a fixed
// seed reproduces a run exactly regardless of goroutine scheduling.
package rng

// Source is the draw interface consumed by deciders and resolution policies
type Source interface {
	// Float64 returns a uniform value in [0, 1)
	Float64() float64
}

// FastRand is a xorshift64 generator
type FastRand struct {
	state uint64
}

// NewFastRand seeds a generator; a zero seed is remapped since xorshift sticks at 0
func NewFastRand(seed uint64) *FastRand {
	if seed == 0 {
		seed = 1
	}
	return &FastRand{state: seed}
}

// Next advances the generator
func (r *FastRand) Next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Intn returns a value in [0, n)
func (r *FastRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint64(n))
}

// Float64 uses the top 53 bits for a uniform mantissa
func (r *FastRand) Float64() float64 {
	return float64(r.Next()>>11) / (1 << 53)
}

// CoordinatorStream is the stream id reserved for the coordinator's own draws
const CoordinatorStream = -1

// Stream derives an independent generator for stream id from the run seed
func Stream(seed int64, id int) *FastRand {
	return NewFastRand(mix(uint64(seed) ^ mix(uint64(int64(id))+0x9e3779b97f4a7c15)))
}

// mix is the splitmix64 finalizer; spreads adjacent ids across the state space
func mix(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Fixed replays a scripted sequence of draws, then repeats the last value
// Used to force decisions in scenario tests
type Fixed struct {
	values []float64
	pos    int
	draws  int
}

// NewFixed creates a scripted source
func NewFixed(values ...float64) *Fixed {
	if len(values) == 0 {
		values = []float64{0}
	}
	return &Fixed{values: values}
}

// Float64 returns the next scripted value
func (f *Fixed) Float64() float64 {
	v := f.values[f.pos]
	f.draws++
	if f.pos < len(f.values)-1 {
		f.pos++
	}
	return v
}

// Draws reports how many values were consumed
func (f *Fixed) Draws() int {
	return f.draws
}
