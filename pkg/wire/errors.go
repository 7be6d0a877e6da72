package wire

import "fmt"

// FramingError reports a frame that cannot be interpreted at all: the
// declared length does not match the bytes available, or the type byte is
// not a known message type. The connection should be treated as
// desynchronized; there is no recovery within the codec.
type FramingError struct {
	// Offset is the byte offset within the frame where the problem was
	// detected.
	Offset int
	Reason string
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("wire: framing error at offset %d: %s", e.Offset, e.Reason)
}

// ValidationError reports a structurally well-formed message that fails a
// semantic check against the torrent geometry.
type ValidationError struct {
	Kind   Kind
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf(
		"wire: invalid %s message: %s: %s",
		e.Kind, e.Field, e.Reason,
	)
}
