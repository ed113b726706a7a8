// Package protocol defines the round message and worker response exchanged
// between the coordinator and workers, and their wire encoding.
package protocol

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/invaders/parameter"
)

// ErrMalformed is returned for buffers that do not decode to a valid message
var ErrMalformed = errors.New("malformed message")

// RoundMessage is the per-round broadcast
// Layout on the wire: [tick, defender_col, defender_fires, frontier_0 .. frontier_cols-1]
type RoundMessage struct {
	Tick          int
	DefenderCol   int
	DefenderFires bool
	Frontier      []int // entity id per column, parameter.NoFrontier if empty
}

// Sentinel is the terminal broadcast; workers exit on it without answering
func Sentinel(cols int) RoundMessage {
	front := make([]int, cols)
	for i := range front {
		front[i] = parameter.NoFrontier
	}
	return RoundMessage{
		Tick:        parameter.SentinelTick,
		DefenderCol: parameter.NoFrontier,
		Frontier:    front,
	}
}

// Terminal reports whether this is the sentinel broadcast
func (m RoundMessage) Terminal() bool {
	return m.Tick == parameter.SentinelTick
}

// FrontierOf returns the frontier id for col, parameter.NoFrontier if out of range
func (m RoundMessage) FrontierOf(col int) int {
	if col < 0 || col >= len(m.Frontier) {
		return parameter.NoFrontier
	}
	return m.Frontier[col]
}

// Encode flattens the message into the fixed-length integer layout
func (m RoundMessage) Encode() []int32 {
	buf := make([]int32, parameter.RoundHeaderLen+len(m.Frontier))
	buf[0] = int32(m.Tick)
	buf[1] = int32(m.DefenderCol)
	if m.DefenderFires {
		buf[2] = 1
	}
	for i, id := range m.Frontier {
		buf[parameter.RoundHeaderLen+i] = int32(id)
	}
	return buf
}

// DecodeRound parses the integer layout; cols must match the grid width
func DecodeRound(buf []int32, cols int) (RoundMessage, error) {
	if len(buf) != parameter.RoundHeaderLen+cols {
		return RoundMessage{}, fmt.Errorf("%w: round length %d, want %d", ErrMalformed, len(buf), parameter.RoundHeaderLen+cols)
	}
	if buf[2] != 0 && buf[2] != 1 {
		return RoundMessage{}, fmt.Errorf("%w: defender_fires = %d", ErrMalformed, buf[2])
	}
	m := RoundMessage{
		Tick:          int(buf[0]),
		DefenderCol:   int(buf[1]),
		DefenderFires: buf[2] == 1,
		Frontier:      make([]int, cols),
	}
	for i := range m.Frontier {
		m.Frontier[i] = int(buf[parameter.RoundHeaderLen+i])
	}
	return m, nil
}

// Event is the single-integer worker response: 0 no event, k fire from column k-1
type Event int32

// NoEvent is the idle response
const NoEvent Event = 0

// FireFrom builds the fire event for a column
func FireFrom(col int) Event {
	return Event(col + 1)
}

// Fire returns the firing column, ok false for NoEvent
func (e Event) Fire() (col int, ok bool) {
	if e <= 0 {
		return 0, false
	}
	return int(e) - 1, true
}

// Validate checks the event against the grid width
func (e Event) Validate(cols int) error {
	if e < 0 || int(e) > cols {
		return fmt.Errorf("%w: event %d outside 0..%d", ErrMalformed, e, cols)
	}
	return nil
}

// Response is an event tagged with its sender and the tick it answers
type Response struct {
	Sender int
	Tick   int
	Event  Event
}
