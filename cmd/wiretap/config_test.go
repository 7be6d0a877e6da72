package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "geometry.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadGeometry(t *testing.T) {
	path := writeConfig(t, "piece_count = 4\npiece_length = 16384\n")

	geo, err := loadGeometry(path)
	require.NoError(t, err)

	require.Equal(t, uint32(4), geo.PieceCount())
	require.Equal(t, uint64(16384), geo.PieceSize(0))
	// Without last_piece_length the final piece defaults to full size.
	require.Equal(t, uint64(16384), geo.PieceSize(3))
}

func TestLoadGeometryLastPiece(t *testing.T) {
	path := writeConfig(
		t,
		"piece_count = 4\npiece_length = 16384\nlast_piece_length = 100\n",
	)

	geo, err := loadGeometry(path)
	require.NoError(t, err)

	require.Equal(t, uint64(16384), geo.PieceSize(2))
	require.Equal(t, uint64(100), geo.PieceSize(3))
}

func TestLoadGeometryErrors(t *testing.T) {
	cases := map[string]string{
		"missing piece_count":  "piece_length = 16384\n",
		"zero piece_length":    "piece_count = 4\npiece_length = 0\n",
		"oversized last piece": "piece_count = 4\npiece_length = 8\nlast_piece_length = 9\n",
		"zero last piece":      "piece_count = 4\npiece_length = 8\nlast_piece_length = 0\n",
		"not toml":             "{\"piece_count\": 4}",
	}

	for name, contents := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := loadGeometry(writeConfig(t, contents))
			require.Error(t, err)
		})
	}
}

func TestLoadGeometryMissingFile(t *testing.T) {
	_, err := loadGeometry(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
