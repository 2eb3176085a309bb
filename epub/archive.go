package epub

import (
	"archive/zip"
	"context"
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"
	"time"

	"github.com/klauspost/compress/flate"
)

// Phase identifies a step of a package build.
type Phase int

const (
	PhaseReset Phase = iota
	PhaseCollect
	PhaseHeader
	PhaseDescriptors
	PhaseContent
	PhaseFinalize
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseReset:
		return "reset"
	case PhaseCollect:
		return "collect"
	case PhaseHeader:
		return "header"
	case PhaseDescriptors:
		return "descriptors"
	case PhaseContent:
		return "content"
	case PhaseFinalize:
		return "finalize"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MimetypeEntry is the name of the format marker entry.
const MimetypeEntry = "mimetype"

// Assembler writes package entries to a ZIP archive. The mimetype marker
// must be written first and is stored uncompressed; every other entry is
// deflated at maximum compression.
type Assembler struct {
	zw       *zip.Writer
	out      *contextWriter
	modified time.Time
	logger   *slog.Logger
	header   bool
	entries  int
}

// NewAssembler creates an assembler writing to w. Writes fail once ctx is
// done. Entry modification times are set to modified.
func NewAssembler(ctx context.Context, w io.Writer, modified time.Time, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	out := &contextWriter{ctx: ctx, w: w}
	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(dst io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(dst, flate.BestCompression)
	})

	return &Assembler{
		zw:       zw,
		out:      out,
		modified: modified,
		logger:   logger,
	}
}

// WriteHeader appends the uncompressed mimetype marker. The entry is written
// raw so that it carries neither a data descriptor nor an extra field, which
// places the media type at a fixed offset readers can sniff.
func (a *Assembler) WriteHeader() error {
	if a.entries > 0 {
		return fmt.Errorf("epub: mimetype must be the first entry, %d already written", a.entries)
	}

	data := []byte(MediaTypeEPUB)
	w, err := a.zw.CreateRaw(&zip.FileHeader{
		Name:               MimetypeEntry,
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE(data),
		CompressedSize64:   uint64(len(data)),
		UncompressedSize64: uint64(len(data)),
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", MimetypeEntry, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", MimetypeEntry, err)
	}

	a.header = true
	a.entries++
	return nil
}

// WriteEntry appends a compressed entry.
func (a *Assembler) WriteEntry(name string, content []byte) error {
	if !a.header {
		return fmt.Errorf("epub: %s written before the mimetype entry", name)
	}

	w, err := a.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: a.modified,
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	a.logger.Debug("archive entry", "name", name, "bytes", len(content))

	a.entries++
	return nil
}

// Finalize writes the central directory and flushes all buffered data.
func (a *Assembler) Finalize() error {
	if err := a.zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}

// Written returns the number of bytes written to the destination so far.
func (a *Assembler) Written() int64 {
	return a.out.n
}

// Write serializes the plan: mimetype, container, package document, then
// every resource in manifest order.
func (p *Plan) Write(ctx context.Context, w io.Writer) (int64, error) {
	logger := p.opts.Logger
	a := NewAssembler(ctx, w, p.modified, logger)
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	logger.Debug("build phase", "phase", PhaseHeader)
	if err := a.WriteHeader(); err != nil {
		return a.Written(), err
	}

	logger.Debug("build phase", "phase", PhaseDescriptors)
	if err := a.WriteEntry(ContainerPath, p.container); err != nil {
		return a.Written(), err
	}
	if err := a.WriteEntry(p.opts.PackagePath(), p.pkg); err != nil {
		return a.Written(), err
	}

	logger.Debug("build phase", "phase", PhaseContent, "resources", len(p.resources))
	for _, r := range p.resources {
		if err := ctx.Err(); err != nil {
			return a.Written(), err
		}
		if err := a.WriteEntry(r.Path, r.Content); err != nil {
			return a.Written(), err
		}
	}

	logger.Debug("build phase", "phase", PhaseFinalize)
	if err := a.Finalize(); err != nil {
		return a.Written(), err
	}
	return a.Written(), nil
}

// contextWriter fails writes once its context is done.
type contextWriter struct {
	ctx context.Context
	w   io.Writer
	n   int64
}

func (cw *contextWriter) Write(p []byte) (int, error) {
	if err := cw.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
