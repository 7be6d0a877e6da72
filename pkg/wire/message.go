package wire

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/prxssh/peerwire/pkg/bitfield"
)

// Message is a single peer wire message, tagged by Kind. A Message owns
// its complete wire frame (length prefix included) and is immutable once
// constructed, whether it came from Decode or from one of the builders.
//
// Variable-length fields (the Piece block, the Extension payload) are
// zero-copy views into the owning frame and stay valid exactly as long as
// the Message itself.
type Message struct {
	kind  Kind
	frame []byte

	piece   uint32
	offset  uint32
	length  uint32
	bits    bitfield.Bitfield
	port    uint16
	hasPort bool
	extID   uint8

	// tailOff marks where the Piece block or Extension payload starts
	// within frame.
	tailOff int
}

// Kind returns the message's discriminant.
func (m *Message) Kind() Kind { return m.kind }

// WireBytes returns the exact on-wire frame for this message, length
// prefix included. The returned slice is the message's backing storage
// and must not be modified.
func (m *Message) WireBytes() []byte { return m.frame }

// Data returns a fresh reader over the message's wire frame. Every call
// yields an independent cursor, so multiple consumers can read the same
// message concurrently without sharing position state.
func (m *Message) Data() *bytes.Reader { return bytes.NewReader(m.frame) }

// PieceIndex returns the piece index for Have, Request, Piece and Cancel
// messages. It is zero for every other kind.
func (m *Message) PieceIndex() uint32 { return m.piece }

// Offset returns the block offset for Request, Piece and Cancel messages.
func (m *Message) Offset() uint32 { return m.offset }

// Length returns the block length for Request and Cancel messages.
func (m *Message) Length() uint32 { return m.length }

// Bits returns the piece set carried by a Bitfield message. The returned
// value is the message's backing storage and must not be modified.
func (m *Message) Bits() bitfield.Bitfield { return m.bits }

// Block returns the data block of a Piece message as a view into the
// owning frame, valid for the lifetime of the message. It is nil for
// every other kind.
func (m *Message) Block() []byte {
	if m.kind != Piece {
		return nil
	}
	return m.frame[m.tailOff:]
}

// PortValue returns the DHT listen port of a Port message. ok is false
// when the frame carried fewer than 2 trailing bytes and no port could be
// decoded.
func (m *Message) PortValue() (port uint16, ok bool) {
	return m.port, m.hasPort
}

// ExtensionID returns the extended message id of an Extension message.
func (m *Message) ExtensionID() uint8 { return m.extID }

// ExtensionPayload returns the opaque payload of an Extension message as
// a view into the owning frame. Structured decoding is left to an
// external registry; see the extension package.
func (m *Message) ExtensionPayload() []byte {
	if m.kind != Extension {
		return nil
	}
	return m.frame[m.tailOff:]
}

// String renders a short human-readable summary of the message for
// logging. It has no protocol effect.
func (m *Message) String() string {
	switch m.kind {
	case Have:
		return fmt.Sprintf("%s #%d", m.kind, m.piece)
	case Bitfield:
		return fmt.Sprintf("%s %d", m.kind, m.bits.Count())
	case Request, Cancel:
		return fmt.Sprintf("%s #%d (%d@%d)", m.kind, m.piece, m.length, m.offset)
	case Piece:
		return fmt.Sprintf("%s #%d (%d@%d)", m.kind, m.piece, len(m.Block()), m.offset)
	case Port:
		if !m.hasPort {
			return fmt.Sprintf("%s <absent>", m.kind)
		}
		return fmt.Sprintf("%s %d", m.kind, m.port)
	case Extension:
		return fmt.Sprintf("%s id=%d (%d bytes)", m.kind, m.extID, len(m.ExtensionPayload()))
	default:
		return m.kind.String()
	}
}

// LogValue implements slog.LogValuer so messages log as structured attrs
// rather than raw byte dumps.
func (m *Message) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("kind", m.kind.String())}

	switch m.kind {
	case Have:
		attrs = append(attrs, slog.Uint64("piece", uint64(m.piece)))
	case Bitfield:
		attrs = append(attrs,
			slog.Int("pieces", m.bits.Count()),
			slog.Int("bits", m.bits.Len()),
		)
	case Request, Cancel:
		attrs = append(attrs,
			slog.Uint64("piece", uint64(m.piece)),
			slog.Uint64("offset", uint64(m.offset)),
			slog.Uint64("length", uint64(m.length)),
		)
	case Piece:
		attrs = append(attrs,
			slog.Uint64("piece", uint64(m.piece)),
			slog.Uint64("offset", uint64(m.offset)),
			slog.Int("block", len(m.Block())),
		)
	case Port:
		if m.hasPort {
			attrs = append(attrs, slog.Uint64("port", uint64(m.port)))
		} else {
			attrs = append(attrs, slog.Bool("absent", true))
		}
	case Extension:
		attrs = append(attrs,
			slog.Uint64("id", uint64(m.extID)),
			slog.Int("payload", len(m.ExtensionPayload())),
		)
	}

	return slog.GroupValue(attrs...)
}
