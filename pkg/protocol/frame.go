package protocol

import (
	"errors"
	"io"
)

// FrameHeaderSize is the size of the frame header in bytes.
const FrameHeaderSize = 6

// MaxPayloadSize caps a single frame's payload (16MB).
const MaxPayloadSize = 16 * 1024 * 1024

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FrameCommit FrameType = 0x01 // One commit's mutations
	FrameError  FrameType = 0x02 // A failed render pass (UTF-8 message)
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameCommit:
		return "Commit"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// FrameFlags are optional flags for frame processing.
type FrameFlags uint8

const (
	FlagInitial FrameFlags = 0x01 // First commit of a container
)

// Has returns true if the flags contain the specified flag.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag != 0
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame represents a protocol frame with header and payload.
//
// Wire format (6 bytes header + variable payload):
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (4 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// Encode encodes the frame to bytes including the header.
func (f *Frame) Encode() []byte {
	e := NewEncoder()
	f.EncodeTo(e)
	return e.Bytes()
}

// EncodeTo encodes the frame using the provided encoder.
func (f *Frame) EncodeTo(e *Encoder) {
	e.WriteByte(byte(f.Type))
	e.WriteByte(byte(f.Flags))
	e.WriteUint32(uint32(len(f.Payload)))
	e.WriteBytes(f.Payload)
}

// DecodeFrame decodes a frame from bytes.
func DecodeFrame(data []byte) (*Frame, error) {
	d := NewDecoder(data)
	ft, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	flags, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	length, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	if length > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}

	t := FrameType(ft)
	if t != FrameCommit && t != FrameError {
		return nil, ErrInvalidFrameType
	}
	if uint32(d.Remaining()) < length {
		return nil, io.ErrUnexpectedEOF
	}

	payload := make([]byte, length)
	copy(payload, data[FrameHeaderSize:FrameHeaderSize+int(length)])
	return &Frame{Type: t, Flags: FrameFlags(flags), Payload: payload}, nil
}

// NewCommitFrame wraps an encoded commit in a frame.
func NewCommitFrame(cf *CommitFrame, flags FrameFlags) *Frame {
	return &Frame{Type: FrameCommit, Flags: flags, Payload: EncodeCommit(cf)}
}

// NewErrorFrame wraps an error message in a frame.
func NewErrorFrame(msg string) *Frame {
	return &Frame{Type: FrameError, Payload: []byte(msg)}
}
