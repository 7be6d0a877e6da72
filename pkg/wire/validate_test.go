package wire

import (
	"errors"
	"testing"
)

func wantValidationError(t *testing.T, frame []byte, g Geometry, kind Kind, field string) {
	t.Helper()

	_, err := Decode(frame, g)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Decode(% x) error = %v; want ValidationError", frame, err)
	}
	if vErr.Kind != kind || vErr.Field != field {
		t.Fatalf(
			"ValidationError kind/field = %v/%q; want %v/%q",
			vErr.Kind, vErr.Field, kind, field,
		)
	}
}

func TestValidateHaveOffByOne(t *testing.T) {
	// piece == pieceCount is the classic off-by-one.
	frame := NewHave(geo.count).WireBytes()
	wantValidationError(t, frame, geo, Have, "piece")

	// The last valid index passes.
	if _, err := Decode(NewHave(geo.count-1).WireBytes(), geo); err != nil {
		t.Fatalf("Decode(have %d) error = %v", geo.count-1, err)
	}
}

func TestValidateRequestBounds(t *testing.T) {
	size := uint32(geo.size)

	// offset+length one byte past the end of the piece.
	frame := NewRequest(0, size-1, 2).WireBytes()
	wantValidationError(t, frame, geo, Request, "length")

	// Exactly the whole piece is allowed.
	if _, err := Decode(NewRequest(0, 0, size).WireBytes(), geo); err != nil {
		t.Fatalf("Decode(request whole piece) error = %v", err)
	}

	// Out-of-range piece index trumps block arithmetic.
	frame = NewRequest(geo.count, 0, 1).WireBytes()
	wantValidationError(t, frame, geo, Request, "piece")
}

func TestValidateRequestNoOverflowWrap(t *testing.T) {
	// Hostile 32-bit values whose sum wraps must still be rejected.
	frame := NewRequest(0, 0xFFFFFFFF, 0xFFFFFFFF).WireBytes()
	wantValidationError(t, frame, geo, Request, "length")
}

func TestValidateCancelBounds(t *testing.T) {
	frame := NewCancel(0, uint32(geo.size)-1, 2).WireBytes()
	wantValidationError(t, frame, geo, Cancel, "length")
}

func TestValidatePieceBounds(t *testing.T) {
	tiny := testGeometry{count: 4, size: 8}

	frame := NewPiece(0, 6, []byte{1, 2, 3}).WireBytes()
	wantValidationError(t, frame, tiny, Piece, "length")

	// A block ending exactly at the piece boundary passes.
	frame = NewPiece(0, 6, []byte{1, 2}).WireBytes()
	if _, err := Decode(frame, tiny); err != nil {
		t.Fatalf("Decode(piece at boundary) error = %v", err)
	}
}

func TestValidateNoFieldKindsAlwaysAccept(t *testing.T) {
	// Geometry with zero pieces still accepts kinds with nothing to
	// check.
	none := testGeometry{count: 0, size: 0}

	for _, msg := range []*Message{
		NewKeepAlive(),
		NewChoke(),
		NewUnchoke(),
		NewInterested(),
		NewNotInterested(),
		NewExtension(3, []byte{0xFF}),
	} {
		if _, err := Decode(msg.WireBytes(), none); err != nil {
			t.Fatalf("%s rejected: %v", msg.Kind(), err)
		}
	}
}
