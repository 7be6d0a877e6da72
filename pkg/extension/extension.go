// Package extension decodes BEP 10 extended-message payloads. The wire
// codec treats extension payloads as opaque bytes; this package is the
// pluggable registry the connection layer consults when it wants
// structure out of them.
package extension

import (
	"bytes"
	"fmt"

	bencode "github.com/jackpal/bencode-go"

	"github.com/prxssh/peerwire/pkg/wire"
)

// HandshakeID is the extended message id reserved for the extension
// handshake.
const HandshakeID uint8 = 0

// Handshake is the bencoded dictionary exchanged as extended message 0.
// M maps extension names (e.g. "ut_metadata", "ut_pex") to the message
// ids the remote peer will use for them.
type Handshake struct {
	M            map[string]int64 `bencode:"m"`
	Version      string           `bencode:"v"`
	Port         int64            `bencode:"p"`
	MetadataSize int64            `bencode:"metadata_size"`
	RequestQueue int64            `bencode:"reqq"`
}

// Supports reports whether the remote peer advertised the named extension
// with a nonzero message id.
func (h *Handshake) Supports(name string) bool {
	return h.M[name] > 0
}

// ParseHandshake decodes an extension handshake payload.
func ParseHandshake(payload []byte) (*Handshake, error) {
	var h Handshake
	if err := bencode.Unmarshal(bytes.NewReader(payload), &h); err != nil {
		return nil, fmt.Errorf("extension: failed to decode handshake: %w", err)
	}
	return &h, nil
}

// DecodeFunc turns a raw extended-message payload into a structured
// value.
type DecodeFunc func(payload []byte) (any, error)

// Registry maps extended message ids to decoders. Build it once at
// startup; it is safe for concurrent reads but not concurrent mutation.
type Registry struct {
	decoders map[uint8]DecodeFunc
}

// NewRegistry returns a Registry with the handshake decoder registered
// under HandshakeID.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[uint8]DecodeFunc)}
	r.Register(HandshakeID, func(payload []byte) (any, error) {
		return ParseHandshake(payload)
	})
	return r
}

// Register installs a decoder for the given extended message id,
// replacing any previous one.
func (r *Registry) Register(id uint8, fn DecodeFunc) {
	r.decoders[id] = fn
}

// Decode dispatches an Extension wire message to the decoder registered
// for its id. Messages of any other kind, and ids with no registered
// decoder, are errors.
func (r *Registry) Decode(m *wire.Message) (any, error) {
	if m.Kind() != wire.Extension {
		return nil, fmt.Errorf(
			"extension: cannot decode a %s message", m.Kind(),
		)
	}

	fn, ok := r.decoders[m.ExtensionID()]
	if !ok {
		return nil, fmt.Errorf(
			"extension: no decoder registered for id %d", m.ExtensionID(),
		)
	}

	return fn(m.ExtensionPayload())
}
