package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// geometry.toml key mapping to the torrent shape wiretap validates
// against.
type fileConfig struct {
	PieceCount      uint32 `toml:"piece_count"`
	PieceLength     uint64 `toml:"piece_length"`
	LastPieceLength uint64 `toml:"last_piece_length"`
}

// dumpGeometry implements wire.Geometry for a dump described by a
// geometry.toml file.
type dumpGeometry struct {
	pieceCount      uint32
	pieceLength     uint64
	lastPieceLength uint64
}

func (g *dumpGeometry) PieceCount() uint32 { return g.pieceCount }

func (g *dumpGeometry) PieceSize(index uint32) uint64 {
	if index == g.pieceCount-1 {
		return g.lastPieceLength
	}
	return g.pieceLength
}

func loadGeometry(path string) (*dumpGeometry, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load geometry config: %w", err)
	}

	if raw.PieceCount == 0 {
		return nil, fmt.Errorf("%s: piece_count must be set and nonzero", path)
	}
	if raw.PieceLength == 0 {
		return nil, fmt.Errorf("%s: piece_length must be set and nonzero", path)
	}

	g := &dumpGeometry{
		pieceCount:      raw.PieceCount,
		pieceLength:     raw.PieceLength,
		lastPieceLength: raw.PieceLength,
	}
	if meta.IsDefined("last_piece_length") {
		if raw.LastPieceLength == 0 || raw.LastPieceLength > raw.PieceLength {
			return nil, fmt.Errorf(
				"%s: last_piece_length must be in (0, piece_length]", path,
			)
		}
		g.lastPieceLength = raw.LastPieceLength
	}

	return g, nil
}
