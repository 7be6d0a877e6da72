// wiretap decodes captured BitTorrent peer wire frames. Each input file
// is a concatenation of length-prefixed frames as they appeared on the
// wire; wiretap splits them, decodes every frame against the configured
// torrent geometry, and pretty-prints the result.
//
// Usage:
//
//	wiretap -geometry geometry.toml [-debug] dump1.bin [dump2.bin ...]
package main

import (
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/prxssh/peerwire/pkg/logging"
	"github.com/prxssh/peerwire/pkg/wire"
)

// dumpSource names an input file as the "peer" for diagnostics.
type dumpSource string

func (s dumpSource) DisplayAddress() string { return string(s) }

func main() {
	geometryPath := flag.String("geometry", "geometry.toml", "path to the torrent geometry config")
	debug := flag.Bool("debug", false, "enable per-frame debug tracing")
	noColor := flag.Bool("no-color", false, "disable colored output")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logging.Setup(os.Stdout, level, !*noColor)

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: wiretap -geometry geometry.toml dump1.bin [dump2.bin ...]")
		os.Exit(2)
	}

	geo, err := loadGeometry(*geometryPath)
	if err != nil {
		slog.Error("failed to load geometry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var grp errgroup.Group
	for _, path := range flag.Args() {
		path := path
		grp.Go(func() error {
			return inspectDump(path, geo)
		})
	}

	if err := grp.Wait(); err != nil {
		slog.Error("inspection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// inspectDump splits one dump file into frames and decodes each. Framing
// errors abort the file (the stream is desynchronized past them);
// validation errors are logged and skipped.
func inspectDump(path string, geo wire.Geometry) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	decoder := &wire.Decoder{
		Geometry: geo,
		Peer:     dumpSource(path),
		Logger:   slog.Default(),
	}

	var decoded, rejected int
	for pos := 0; pos < len(data); {
		frame, next, err := nextFrame(data, pos)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		msg, err := decoder.Decode(frame)
		if err != nil {
			var vErr *wire.ValidationError
			if errors.As(err, &vErr) {
				rejected++
				slog.Warn(
					"rejected message",
					slog.String("dump", path),
					slog.String("error", vErr.Error()),
				)
				pos = next
				continue
			}
			return fmt.Errorf("%s: frame at offset %d: %w", path, pos, err)
		}

		decoded++
		slog.Info(
			"message",
			slog.String("dump", path),
			slog.Any("message", msg),
		)
		pos = next
	}

	slog.Info(
		"dump complete",
		slog.String("dump", path),
		slog.Int("decoded", decoded),
		slog.Int("rejected", rejected),
	)
	return nil
}

// nextFrame cuts the complete frame starting at pos out of data, doing
// the connection layer's framing duty: read the 4-byte prefix, then
// exactly that many more bytes.
func nextFrame(data []byte, pos int) (frame []byte, next int, err error) {
	if len(data)-pos < 4 {
		return nil, 0, fmt.Errorf(
			"truncated length prefix at offset %d", pos,
		)
	}

	declared := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	end := pos + 4 + declared
	if end > len(data) {
		return nil, 0, fmt.Errorf(
			"truncated frame at offset %d: announced %d bytes, %d available",
			pos, declared, len(data)-pos-4,
		)
	}

	return data[pos:end], end, nil
}
