package wire

import (
	"crypto/sha1"
	"fmt"
)

// Handshake is the fixed-format exchange that precedes any wire message:
// <pstrlen><pstr><reserved:8><info_hash:20><peer_id:20>. Like the rest of
// this package it is a pure codec; performing the exchange over a socket
// belongs to the connection layer.
type Handshake struct {
	Pstr     string
	Reserved [reservedSize]byte
	InfoHash [sha1.Size]byte
	PeerID   [sha1.Size]byte
}

const (
	// ProtocolString is the standard BitTorrent protocol identifier.
	ProtocolString = "BitTorrent protocol"

	reservedSize = 8

	// extendedReservedByte/Bit flag BEP 10 extension support in the
	// reserved field.
	extendedReservedByte = 5
	extendedReservedBit  = 0x10
)

// NewHandshake returns a Handshake with the standard protocol string, no
// reserved bits set, and the provided infohash and peer ID.
func NewHandshake(infoHash, peerID [sha1.Size]byte) *Handshake {
	return &Handshake{
		Pstr:     ProtocolString,
		InfoHash: infoHash,
		PeerID:   peerID,
	}
}

// SupportsExtended reports whether the reserved field advertises the
// BEP 10 extension protocol.
func (h *Handshake) SupportsExtended() bool {
	return h.Reserved[extendedReservedByte]&extendedReservedBit != 0
}

// SetExtended marks the reserved field as supporting BEP 10.
func (h *Handshake) SetExtended() {
	h.Reserved[extendedReservedByte] |= extendedReservedBit
}

// Serialize encodes the handshake into its wire form.
func (h *Handshake) Serialize() []byte {
	buf := make([]byte, 1+len(h.Pstr)+reservedSize+2*sha1.Size)

	buf[0] = byte(len(h.Pstr))
	offset := 1
	offset += copy(buf[offset:], h.Pstr)
	offset += copy(buf[offset:], h.Reserved[:])
	offset += copy(buf[offset:], h.InfoHash[:])
	copy(buf[offset:], h.PeerID[:])

	return buf
}

// ParseHandshake decodes a complete handshake from buf. The buffer must
// contain exactly one handshake; too few bytes for the announced protocol
// string is a *FramingError.
func ParseHandshake(buf []byte) (*Handshake, error) {
	if len(buf) < 1 {
		return nil, &FramingError{Offset: 0, Reason: "empty handshake"}
	}

	pstrlen := int(buf[0])
	if pstrlen == 0 {
		return nil, &FramingError{Offset: 0, Reason: "zero-length protocol string"}
	}

	want := 1 + pstrlen + reservedSize + 2*sha1.Size
	if len(buf) != want {
		return nil, &FramingError{
			Offset: 1,
			Reason: fmt.Sprintf(
				"handshake needs %d bytes for pstrlen %d, got %d",
				want, pstrlen, len(buf),
			),
		}
	}

	h := &Handshake{Pstr: string(buf[1 : 1+pstrlen])}
	offset := 1 + pstrlen
	offset += copy(h.Reserved[:], buf[offset:])
	offset += copy(h.InfoHash[:], buf[offset:])
	copy(h.PeerID[:], buf[offset:])

	return h, nil
}
