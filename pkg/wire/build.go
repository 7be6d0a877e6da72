package wire

import (
	"encoding/binary"

	"github.com/prxssh/peerwire/pkg/bitfield"
)

// Builders construct outgoing messages with their wire frame ready to
// send. They never validate: the decode path defends against untrusted
// input, the encode path trusts its caller.

// newFrame allocates a frame for a message with the given payload size
// (type byte excluded) and writes the prefix and type byte.
func newFrame(kind Kind, payloadSize int) []byte {
	typeByte, ok := kind.TypeByte()
	if !ok {
		// Only KeepAlive lacks a type byte and it never comes here.
		panic("wire: kind has no type byte")
	}

	frame := make([]byte, lengthFieldSize+1+payloadSize)
	binary.BigEndian.PutUint32(frame, uint32(1+payloadSize))
	frame[lengthFieldSize] = typeByte
	return frame
}

// NewKeepAlive builds a keep-alive message: a 4-byte zero length prefix
// and nothing else.
func NewKeepAlive() *Message {
	return &Message{kind: KeepAlive, frame: make([]byte, lengthFieldSize)}
}

// NewChoke builds a choke message.
func NewChoke() *Message {
	return &Message{kind: Choke, frame: newFrame(Choke, 0)}
}

// NewUnchoke builds an unchoke message.
func NewUnchoke() *Message {
	return &Message{kind: Unchoke, frame: newFrame(Unchoke, 0)}
}

// NewInterested builds an interested message.
func NewInterested() *Message {
	return &Message{kind: Interested, frame: newFrame(Interested, 0)}
}

// NewNotInterested builds a not_interested message.
func NewNotInterested() *Message {
	return &Message{kind: NotInterested, frame: newFrame(NotInterested, 0)}
}

// NewHave builds a have message for the given piece index.
func NewHave(piece uint32) *Message {
	frame := newFrame(Have, 4)
	binary.BigEndian.PutUint32(frame[5:], piece)

	return &Message{kind: Have, frame: frame, piece: piece}
}

// NewBitfield builds a bitfield message from the given piece set. The bit
// array is trimmed to the bytes needed for the highest set index; a set
// with no bits yields an empty bit array.
func NewBitfield(bits bitfield.Bitfield) *Message {
	var raw []byte
	if highest, ok := bits.HighestSet(); ok {
		raw = bits.ToBytes()[:highest/8+1]
	}

	frame := newFrame(Bitfield, len(raw))
	copy(frame[5:], raw)

	return &Message{
		kind:  Bitfield,
		frame: frame,
		bits:  bitfield.FromBytes(raw),
	}
}

// NewRequest builds a request message for the block at offset of the
// given length within a piece.
func NewRequest(piece, offset, length uint32) *Message {
	frame := newFrame(Request, 12)
	binary.BigEndian.PutUint32(frame[5:9], piece)
	binary.BigEndian.PutUint32(frame[9:13], offset)
	binary.BigEndian.PutUint32(frame[13:17], length)

	return &Message{
		kind: Request, frame: frame,
		piece: piece, offset: offset, length: length,
	}
}

// NewPiece builds a piece message carrying block for the given piece
// index and offset. The block is copied into the frame, so the message
// does not alias the caller's slice.
func NewPiece(piece, offset uint32, block []byte) *Message {
	frame := newFrame(Piece, 8+len(block))
	binary.BigEndian.PutUint32(frame[5:9], piece)
	binary.BigEndian.PutUint32(frame[9:13], offset)
	copy(frame[13:], block)

	return &Message{
		kind: Piece, frame: frame,
		piece: piece, offset: offset,
		tailOff: 13,
	}
}

// NewCancel builds a cancel message for a previously requested block.
func NewCancel(piece, offset, length uint32) *Message {
	frame := newFrame(Cancel, 12)
	binary.BigEndian.PutUint32(frame[5:9], piece)
	binary.BigEndian.PutUint32(frame[9:13], offset)
	binary.BigEndian.PutUint32(frame[13:17], length)

	return &Message{
		kind: Cancel, frame: frame,
		piece: piece, offset: offset, length: length,
	}
}

// NewPort builds a port message announcing a DHT listen port.
func NewPort(port uint16) *Message {
	frame := newFrame(Port, 2)
	binary.BigEndian.PutUint16(frame[5:], port)

	return &Message{kind: Port, frame: frame, port: port, hasPort: true}
}

// NewExtension builds an extension message with the given extended
// message id and opaque payload. The payload is copied into the frame.
func NewExtension(id uint8, payload []byte) *Message {
	frame := newFrame(Extension, 1+len(payload))
	frame[5] = id
	copy(frame[6:], payload)

	return &Message{kind: Extension, frame: frame, extID: id, tailOff: 6}
}
