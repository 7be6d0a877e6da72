package wire

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/prxssh/peerwire/pkg/bitfield"
)

// Decoder decodes complete wire frames against a torrent geometry.
// Geometry is required; Peer and Logger are optional and affect only
// diagnostic output.
//
// A Decoder holds no mutable state, so one instance may be shared across
// goroutines decoding different connections.
type Decoder struct {
	Geometry Geometry

	// Peer, when set, names the remote end in trace output.
	Peer Peer

	// Logger, when set, traces every successfully decoded message at
	// debug level.
	Logger *slog.Logger
}

// Decode parses a single complete frame with the given geometry. It is
// shorthand for Decoder{Geometry: geo}.Decode(frame).
func Decode(frame []byte, geo Geometry) (*Message, error) {
	d := Decoder{Geometry: geo}
	return d.Decode(frame)
}

// Decode parses frame into a validated Message. The caller must supply a
// fully buffered frame: the 4-byte length prefix followed by exactly the
// announced number of bytes. A mismatch is a *FramingError; a message
// that is structurally sound but impossible for the torrent's geometry is
// a *ValidationError. On error no message is returned.
func (d *Decoder) Decode(frame []byte) (*Message, error) {
	if len(frame) < lengthFieldSize {
		return nil, &FramingError{
			Offset: 0,
			Reason: fmt.Sprintf(
				"frame shorter than length prefix: %d bytes", len(frame),
			),
		}
	}

	declared := binary.BigEndian.Uint32(frame[:lengthFieldSize])
	if declared == 0 {
		// Keep-alive: no type byte, nothing further consumed.
		msg := &Message{kind: KeepAlive, frame: frame[:lengthFieldSize]}
		d.trace(msg)
		return msg, nil
	}

	if uint64(declared) != uint64(len(frame)-lengthFieldSize) {
		return nil, &FramingError{
			Offset: lengthFieldSize,
			Reason: fmt.Sprintf(
				"announced length %d, %d bytes follow the prefix",
				declared, len(frame)-lengthFieldSize,
			),
		}
	}

	typeByte := frame[lengthFieldSize]
	kind, ok := KindForByte(typeByte)
	if !ok {
		return nil, &FramingError{
			Offset: lengthFieldSize,
			Reason: fmt.Sprintf("unknown message type byte 0x%02x", typeByte),
		}
	}

	msg := &Message{kind: kind, frame: frame}
	if err := decodeFields(msg, frame[lengthFieldSize+1:]); err != nil {
		return nil, err
	}
	if err := msg.validate(d.Geometry); err != nil {
		return nil, err
	}

	d.trace(msg)
	return msg, nil
}

// decodeFields fills in the kind-specific fields from the payload bytes
// following the type byte. Fixed fields consume exactly their width;
// whatever remains is the kind's variable-length payload.
func decodeFields(m *Message, payload []byte) error {
	switch m.kind {
	case Choke, Unchoke, Interested, NotInterested:
		return nil

	case Have:
		if len(payload) < 4 {
			return shortPayload(m.kind, 4, len(payload))
		}
		m.piece = binary.BigEndian.Uint32(payload[0:4])
		return nil

	case Bitfield:
		// A zero-length bit array is legal on the wire.
		m.bits = bitfield.FromBytes(payload)
		return nil

	case Request, Cancel:
		if len(payload) < 12 {
			return shortPayload(m.kind, 12, len(payload))
		}
		m.piece = binary.BigEndian.Uint32(payload[0:4])
		m.offset = binary.BigEndian.Uint32(payload[4:8])
		m.length = binary.BigEndian.Uint32(payload[8:12])
		return nil

	case Piece:
		if len(payload) < 8 {
			return shortPayload(m.kind, 8, len(payload))
		}
		m.piece = binary.BigEndian.Uint32(payload[0:4])
		m.offset = binary.BigEndian.Uint32(payload[4:8])
		m.tailOff = len(m.frame) - (len(payload) - 8)
		return nil

	case Port:
		// Lenient peers send port frames with missing bytes; decode
		// succeeds with no value and validation rejects it. Byte order
		// is big-endian per protocol convention.
		if len(payload) >= 2 {
			m.port = binary.BigEndian.Uint16(payload[0:2])
			m.hasPort = true
		}
		return nil

	case Extension:
		if len(payload) < 1 {
			return shortPayload(m.kind, 1, len(payload))
		}
		m.extID = payload[0]
		m.tailOff = len(m.frame) - (len(payload) - 1)
		return nil

	default:
		return &FramingError{
			Offset: lengthFieldSize,
			Reason: fmt.Sprintf("no field decoder for kind %s", m.kind),
		}
	}
}

func shortPayload(kind Kind, want, got int) error {
	return &FramingError{
		Offset: lengthFieldSize + 1,
		Reason: fmt.Sprintf(
			"%s payload needs at least %d bytes, got %d", kind, want, got,
		),
	}
}

func (d *Decoder) trace(m *Message) {
	if d.Logger == nil {
		return
	}

	attrs := []any{slog.Any("message", m)}
	if d.Peer != nil {
		attrs = append(attrs, slog.String("peer", d.Peer.DisplayAddress()))
	}
	d.Logger.Debug("decoded wire message", attrs...)
}
