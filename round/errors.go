package round

import (
	"errors"
	"fmt"
)

// ErrProtocol is the class of every fatal exactly-once contract breach
var ErrProtocol = errors.New("protocol violation")

var (
	ErrDuplicateResponse = errors.New("duplicate response")
	ErrStaleResponse     = errors.New("response for another tick")
	ErrUnknownSender     = errors.New("unknown sender")
	ErrMalformedResponse = errors.New("malformed response")
	ErrCollectTimeout    = errors.New("collect timed out")
	ErrNotConsumed       = errors.New("previous broadcast not consumed")
	ErrWorkerLost        = errors.New("worker lost")
	ErrIneligibleFire    = errors.New("ineligible fire")
)

// ErrClosed is returned by endpoints once the link is shut down
var ErrClosed = errors.New("link closed")

// ViolationError records which sender broke the contract on which tick
// Matches both ErrProtocol and the specific cause under errors.Is
type ViolationError struct {
	Sender int // -1 when no single sender is at fault
	Tick   int
	Err    error
}

func (e *ViolationError) Error() string {
	if e.Sender < 0 {
		return fmt.Sprintf("protocol violation at tick %d: %v", e.Tick, e.Err)
	}
	return fmt.Sprintf("protocol violation at tick %d by worker %d: %v", e.Tick, e.Sender, e.Err)
}

func (e *ViolationError) Unwrap() []error {
	return []error{ErrProtocol, e.Err}
}

// Violation builds a ViolationError
func Violation(sender, tick int, err error) error {
	return &ViolationError{Sender: sender, Tick: tick, Err: err}
}
