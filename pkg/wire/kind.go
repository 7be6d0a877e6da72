// Package wire implements the BitTorrent peer wire protocol codec: it
// decodes complete length-prefixed frames into typed, validated messages
// and builds the exact byte sequence a peer expects for outgoing ones
// (BEP 3, plus the BEP 10 extension envelope).
//
// The package performs no I/O. Callers are expected to read the 4-byte
// length prefix and exactly that many additional bytes before handing the
// buffer to Decode; short buffers surface as a FramingError.
package wire

// Kind identifies a wire message type. The zero value is KeepAlive, the
// only kind with no type byte on the wire.
type Kind uint8

const (
	KeepAlive Kind = iota
	Choke
	Unchoke
	Interested
	NotInterested
	Have
	Bitfield
	Request
	Piece
	Cancel
	Port
	Extension
)

// lengthFieldSize is the size of the length prefix in bytes.
const lengthFieldSize = 4

// Default and maximum block sizes peers conventionally use for Request
// messages (BEP 3).
const (
	DefaultBlockSize = 16384
	MaxBlockSize     = 131072
)

var kindNames = map[Kind]string{
	KeepAlive:     "keep-alive",
	Choke:         "choke",
	Unchoke:       "unchoke",
	Interested:    "interested",
	NotInterested: "not_interested",
	Have:          "have",
	Bitfield:      "bitfield",
	Request:       "request",
	Piece:         "piece",
	Cancel:        "cancel",
	Port:          "port",
	Extension:     "extension",
}

var typeBytes = map[Kind]byte{
	Choke:         0,
	Unchoke:       1,
	Interested:    2,
	NotInterested: 3,
	Have:          4,
	Bitfield:      5,
	Request:       6,
	Piece:         7,
	Cancel:        8,
	Port:          9,
	Extension:     20,
}

var kindsByByte = map[byte]Kind{
	0:  Choke,
	1:  Unchoke,
	2:  Interested,
	3:  NotInterested,
	4:  Have,
	5:  Bitfield,
	6:  Request,
	7:  Piece,
	8:  Cancel,
	9:  Port,
	20: Extension,
}

// String returns the protocol name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// TypeByte returns the wire type byte for the kind. ok is false for
// KeepAlive, which has no byte representation: it is inferred purely from
// a zero length prefix.
func (k Kind) TypeByte() (b byte, ok bool) {
	b, ok = typeBytes[k]
	return b, ok
}

// KindForByte maps a wire type byte to its Kind. ok is false for
// unrecognized bytes; the decoder reports those as framing errors.
func KindForByte(b byte) (k Kind, ok bool) {
	k, ok = kindsByByte[b]
	return k, ok
}

// Geometry is the read-only torrent shape the validator checks messages
// against. PieceSize may differ for the final piece index.
type Geometry interface {
	PieceCount() uint32
	PieceSize(index uint32) uint64
}

// Peer identifies the remote end of a connection. It is consumed only for
// diagnostic formatting and never influences protocol decisions.
type Peer interface {
	DisplayAddress() string
}
