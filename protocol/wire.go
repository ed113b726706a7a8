package protocol

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Frame payload encodings. The round message keeps its flat integer layout
// inside a msgpack array; responses and hellos are positional arrays

type wireResponse struct {
	_msgpack struct{} `msgpack:",as_array"`
	Sender   int32
	Tick     int32
	Event    int32
}

// Hello is the first payload a remote worker sends: the entity it controls
type Hello struct {
	_msgpack struct{} `msgpack:",as_array"`
	Entity   int32
	Cols     int32
}

// Welcome acknowledges a hello with the grid shape the coordinator runs
type Welcome struct {
	_msgpack struct{} `msgpack:",as_array"`
	Rows     int32
	Cols     int32
}

// MarshalRound encodes a round message payload
func MarshalRound(m RoundMessage) ([]byte, error) {
	return msgpack.Marshal(m.Encode())
}

// UnmarshalRound decodes a round message payload
func UnmarshalRound(b []byte, cols int) (RoundMessage, error) {
	var buf []int32
	if err := msgpack.Unmarshal(b, &buf); err != nil {
		return RoundMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return DecodeRound(buf, cols)
}

// MarshalResponse encodes a response payload
func MarshalResponse(r Response) ([]byte, error) {
	return msgpack.Marshal(&wireResponse{
		Sender: int32(r.Sender),
		Tick:   int32(r.Tick),
		Event:  int32(r.Event),
	})
}

// UnmarshalResponse decodes a response payload
func UnmarshalResponse(b []byte) (Response, error) {
	var w wireResponse
	if err := msgpack.Unmarshal(b, &w); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Response{Sender: int(w.Sender), Tick: int(w.Tick), Event: Event(w.Event)}, nil
}

// MarshalHello encodes a hello payload
func MarshalHello(h Hello) ([]byte, error) {
	return msgpack.Marshal(&h)
}

// UnmarshalHello decodes a hello payload
func UnmarshalHello(b []byte) (Hello, error) {
	var h Hello
	if err := msgpack.Unmarshal(b, &h); err != nil {
		return Hello{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return h, nil
}

// MarshalWelcome encodes a welcome payload
func MarshalWelcome(w Welcome) ([]byte, error) {
	return msgpack.Marshal(&w)
}

// UnmarshalWelcome decodes a welcome payload
func UnmarshalWelcome(b []byte) (Welcome, error) {
	var w Welcome
	if err := msgpack.Unmarshal(b, &w); err != nil {
		return Welcome{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return w, nil
}
