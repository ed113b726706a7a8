package network

import (
	"encoding/binary"
	"errors"
	"io"
)

// MessageType identifies the payload carried by a frame
type MessageType uint8

const (
	// Handshake
	MsgHello   MessageType = 0x01 // Worker claims an entity
	MsgWelcome MessageType = 0x02 // Coordinator accepts, echoes grid shape
	MsgReject  MessageType = 0x03 // Coordinator refuses, payload is the reason

	// Lock-step rounds
	MsgRound    MessageType = 0x10 // Coordinator broadcast
	MsgResponse MessageType = 0x11 // Worker answer
)

func (t MessageType) String() string {
	switch t {
	case MsgHello:
		return "hello"
	case MsgWelcome:
		return "welcome"
	case MsgReject:
		return "reject"
	case MsgRound:
		return "round"
	case MsgResponse:
		return "response"
	default:
		return "unknown"
	}
}

// HeaderSize precedes every frame on the wire
// Fixed 12 bytes: [Type:1][Flags:1][Seq:4][Ack:4][Len:2]
const HeaderSize = 12

// MaxPayload is the largest payload the length field can describe
const MaxPayload = 65535

// Header flags
const (
	FlagNone     uint8 = 0x00
	FlagTerminal uint8 = 0x01 // Round frame carries the sentinel
)

var ErrPayloadTooLarge = errors.New("payload exceeds maximum size")

// Message is one framed unit
type Message struct {
	Type    MessageType
	Flags   uint8
	Seq     uint32 // Sender's sequence number
	Ack     uint32 // Last sequence received from the peer
	Payload []byte
}

// Encode writes header and payload
func (m *Message) Encode(w io.Writer) error {
	payloadLen := len(m.Payload)
	if payloadLen > MaxPayload {
		return ErrPayloadTooLarge
	}

	header := make([]byte, HeaderSize)
	header[0] = byte(m.Type)
	header[1] = m.Flags
	binary.BigEndian.PutUint32(header[2:6], m.Seq)
	binary.BigEndian.PutUint32(header[6:10], m.Ack)
	binary.BigEndian.PutUint16(header[10:12], uint16(payloadLen))

	if _, err := w.Write(header); err != nil {
		return err
	}
	if payloadLen > 0 {
		if _, err := w.Write(m.Payload); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads one frame
func Decode(r io.Reader) (*Message, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	payloadLen := binary.BigEndian.Uint16(header[10:12])

	m := &Message{
		Type:  MessageType(header[0]),
		Flags: header[1],
		Seq:   binary.BigEndian.Uint32(header[2:6]),
		Ack:   binary.BigEndian.Uint32(header[6:10]),
	}

	if payloadLen > 0 {
		m.Payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, m.Payload); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NewMessage creates a frame with the given type and payload
func NewMessage(t MessageType, payload []byte) *Message {
	return &Message{
		Type:    t,
		Flags:   FlagNone,
		Payload: payload,
	}
}
