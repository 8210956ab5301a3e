package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// FrameLen is the fixed size of every frame on the wire.
const FrameLen = 4

// Tag is the two-byte ASCII frame tag.
type Tag [2]byte

var (
	TagCredit  = Tag{'C', 'R'}
	TagDebit   = Tag{'D', 'B'}
	TagBalance = Tag{'B', 'A'}
	TagError   = Tag{'E', 'R'}
)

// String returns the tag as text.
func (t Tag) String() string {
	return string(t[:])
}

// ParseTag converts a two-character string into a Tag.
func ParseTag(s string) (Tag, error) {
	if len(s) != 2 {
		return Tag{}, fmt.Errorf("wire: tag must be 2 bytes, got %q", s)
	}
	return Tag{s[0], s[1]}, nil
}

var (
	// ErrConnectionClosed is returned by ReadFrame when the peer closes the
	// stream before a full frame has arrived.
	ErrConnectionClosed = errors.New("wire: connection closed")

	// ErrInvalidLength is returned when decoding a buffer that is not FrameLen bytes.
	ErrInvalidLength = errors.New("wire: invalid frame length")
)

// Frame is one complete wire message.
type Frame struct {
	Tag   Tag
	Value uint16
}

// Encode returns the four-byte representation of f.
func (f Frame) Encode() [FrameLen]byte {
	var b [FrameLen]byte
	b[0], b[1] = f.Tag[0], f.Tag[1]
	binary.BigEndian.PutUint16(b[2:4], f.Value)
	return b
}

// Decode parses a four-byte frame. Any tag is accepted.
func Decode(b []byte) (Frame, error) {
	if len(b) != FrameLen {
		return Frame{}, fmt.Errorf("%w: %d", ErrInvalidLength, len(b))
	}
	return Frame{
		Tag:   Tag{b[0], b[1]},
		Value: binary.BigEndian.Uint16(b[2:4]),
	}, nil
}

// ReadFrame blocks until a full frame is read from r.
func ReadFrame(r io.Reader) (Frame, error) {
	var buf [FrameLen]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Frame{}, ErrConnectionClosed
		}
		return Frame{}, err
	}
	return Decode(buf[:])
}

// WriteFrame writes all four bytes of f, retrying short writes.
func WriteFrame(w io.Writer, f Frame) error {
	b := f.Encode()
	buf := b[:]
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		buf = buf[n:]
	}
	return nil
}
