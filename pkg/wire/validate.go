package wire

import "fmt"

// validate checks the message against the torrent geometry. It is a pure
// function of the message and the geometry snapshot; kinds with no
// checkable fields are accepted unconditionally.
func (m *Message) validate(geo Geometry) error {
	switch m.kind {
	case Have:
		return m.checkPieceIndex(geo)

	case Request, Cancel:
		if err := m.checkPieceIndex(geo); err != nil {
			return err
		}
		return m.checkBlockBounds(geo, uint64(m.length))

	case Piece:
		if err := m.checkPieceIndex(geo); err != nil {
			return err
		}
		return m.checkBlockBounds(geo, uint64(len(m.Block())))

	case Bitfield:
		highest, ok := m.bits.HighestSet()
		if ok && uint64(highest) >= uint64(geo.PieceCount()) {
			return &ValidationError{
				Kind:  m.kind,
				Field: "bitfield",
				Reason: fmt.Sprintf(
					"bit %d set, torrent has %d pieces",
					highest, geo.PieceCount(),
				),
			}
		}
		return nil

	case Port:
		if !m.hasPort {
			return &ValidationError{
				Kind:   m.kind,
				Field:  "port",
				Reason: "fewer than 2 payload bytes, no port value",
			}
		}
		return nil

	default:
		return nil
	}
}

func (m *Message) checkPieceIndex(geo Geometry) error {
	if m.piece < geo.PieceCount() {
		return nil
	}
	return &ValidationError{
		Kind:  m.kind,
		Field: "piece",
		Reason: fmt.Sprintf(
			"index %d out of range, torrent has %d pieces",
			m.piece, geo.PieceCount(),
		),
	}
}

// checkBlockBounds verifies offset+size stays within the piece. The sum
// is computed in uint64 so hostile 32-bit values cannot wrap.
func (m *Message) checkBlockBounds(geo Geometry, size uint64) error {
	pieceSize := geo.PieceSize(m.piece)
	if uint64(m.offset)+size <= pieceSize {
		return nil
	}
	return &ValidationError{
		Kind:  m.kind,
		Field: "length",
		Reason: fmt.Sprintf(
			"block %d@%d exceeds piece size %d",
			size, m.offset, pieceSize,
		),
	}
}
