// Package rawio implements the Parallel I/O component (spec.md §4.6,
// component C6): each rank reads its own sub-rectangle out of a raw,
// headerless pixel file and writes its sub-rectangle back. Ranges are
// disjoint, so no cross-rank ordering or locking is required — every rank
// opens the same path and issues independent positioned reads/writes.
package rawio

import (
	"io"
	"os"

	"github.com/ajroetker/blurconv/internal/config"
	"github.com/ajroetker/blurconv/internal/tile"
)

// OutputPath derives the sibling output filename `blur_<input-basename>`
// in the current working directory (spec.md §4.6, §6). Go's string
// concatenation sizes itself correctly, resolving spec.md §9's "the source
// allocates the output-filename buffer with an off-by-few size" bug by
// construction.
func OutputPath(base string) string {
	return "blur_" + base
}

// ReadTile opens path read-only and fills buf's interior with this rank's
// r×c sub-rectangle, row by row, at the positioned byte offsets spec.md
// §4.6 specifies: (R0+i-1)*W + C0 for GREY, 3*((R0+i-1)*W + C0) for RGB.
func ReadTile(path string, buf *tile.Buffer, r0, c0, width int) error {
	f, err := os.Open(path)
	if err != nil {
		return config.Errorf(config.KindIO, "rawio: open %s: %w", path, err)
	}
	defer f.Close()

	bpp := buf.Bpp()
	for i := 1; i <= buf.Rows(); i++ {
		globalRow := r0 + i - 1
		offset := int64(globalRow*width+c0) * int64(bpp)
		row := buf.InteriorRow(i)
		if _, err := preadFull(f, row, offset); err != nil {
			return config.Errorf(config.KindIO, "rawio: read row %d of %s at offset %d: %w", i, path, offset, err)
		}
	}
	return nil
}

// WriteTile opens (creating if necessary) the output path and writes this
// rank's r×c sub-rectangle back at the same positioned offsets used to read
// it, preserving a bit-identical raw byte layout (spec.md §4.6, "Parallel
// I/O ... preserves a bit-identical raw byte image").
func WriteTile(path string, buf *tile.Buffer, r0, c0, width int) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return config.Errorf(config.KindIO, "rawio: open %s for write: %w", path, err)
	}
	defer f.Close()

	bpp := buf.Bpp()
	for i := 1; i <= buf.Rows(); i++ {
		globalRow := r0 + i - 1
		offset := int64(globalRow*width+c0) * int64(bpp)
		row := buf.InteriorRow(i)
		if err := pwriteFull(f, row, offset); err != nil {
			return config.Errorf(config.KindIO, "rawio: write row %d of %s at offset %d: %w", i, path, offset, err)
		}
	}
	return nil
}

// preadFull reads len(buf) bytes from f at the given offset, retrying short
// positioned reads (io.ReaderAt's contract allows them).
func preadFull(r io.ReaderAt, buf []byte, offset int64) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.ReadAt(buf[total:], offset+int64(total))
		total += n
		if err != nil {
			if err == io.EOF && total == len(buf) {
				return total, nil
			}
			return total, err
		}
		if n == 0 {
			return total, io.ErrNoProgress
		}
	}
	return total, nil
}

// pwriteFull writes all of buf to w at the given offset, retrying short
// positioned writes.
func pwriteFull(w io.WriterAt, buf []byte, offset int64) error {
	total := 0
	for total < len(buf) {
		n, err := w.WriteAt(buf[total:], offset+int64(total))
		total += n
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}
	return nil
}
