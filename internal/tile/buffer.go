// Package tile implements the Tile Buffer (spec.md §4.2, component C2): a
// zero-initialized pixel buffer carrying a one-pixel halo border, plus the
// double-buffer pair a rank swaps between iterations.
package tile

// Buffer is one rank's own rectangular pixel storage: r×c interior pixels
// plus a one-pixel halo on every side, so the backing storage is
// (r+2)×(c+2) pixels. Storage is row-major and packed, matching spec.md §3.
type Buffer struct {
	data   []byte
	rows   int // r: interior rows
	cols   int // c: interior columns
	bpp    int // bytes per pixel: 1 (grey) or 3 (rgb)
	stride int // bytes per storage row: (c+2)*bpp
}

// New allocates a zero-initialized buffer sized for an r×c interior with the
// given bytes-per-pixel. Buffers are allocated once at startup and never
// reallocated (spec.md §3 "Lifecycles", §4.2).
func New(rows, cols, bpp int) *Buffer {
	stride := (cols + 2) * bpp
	return &Buffer{
		data:   make([]byte, (rows+2)*stride),
		rows:   rows,
		cols:   cols,
		bpp:    bpp,
		stride: stride,
	}
}

// Rows returns r, the interior row count.
func (b *Buffer) Rows() int { return b.rows }

// Cols returns c, the interior column count.
func (b *Buffer) Cols() int { return b.cols }

// Bpp returns the bytes per pixel (1 or 3).
func (b *Buffer) Bpp() int { return b.bpp }

// Stride returns the number of bytes per storage row, c+2 pixels wide.
func (b *Buffer) Stride() int { return b.stride }

// offset returns the byte offset of storage cell (i, j), where i and j are
// 0-based storage indices (0 and rows+1/cols+1 are halo positions).
func (b *Buffer) offset(i, j int) int {
	return i*b.stride + j*b.bpp
}

// Pixel returns the bpp-byte slice for storage cell (i, j). i ranges over
// [0, rows+1], j over [0, cols+1]; (1,1) is the interior's top-left pixel.
func (b *Buffer) Pixel(i, j int) []byte {
	off := b.offset(i, j)
	return b.data[off : off+b.bpp]
}

// Row returns the full storage row i (including the two halo pixels at
// either end), as a slice of (cols+2)*bpp bytes.
func (b *Buffer) Row(i int) []byte {
	off := b.offset(i, 0)
	return b.data[off : off+b.stride]
}

// InteriorRow returns just the interior c pixels of storage row i (i.e.
// excluding the west/east halo columns), as c*bpp bytes.
func (b *Buffer) InteriorRow(i int) []byte {
	off := b.offset(i, 1)
	return b.data[off : off+b.cols*b.bpp]
}

// Raw exposes the full backing storage, used by parallel I/O (internal/rawio)
// to read/write the interior via positioned file access, and by tests that
// need to compare whole buffers.
func (b *Buffer) Raw() []byte { return b.data }

// Clear zeroes the whole buffer (interior and halo), reproducing the
// zero-initialized halo that stands in for the Dirichlet boundary condition
// (spec.md §3, §7).
func (b *Buffer) Clear() {
	for i := range b.data {
		b.data[i] = 0
	}
}

// Pair owns the two equally-shaped buffers a rank convolves between: the
// kernel reads from Src and writes to Dst, then Swap exchanges which is
// which (spec.md §3 "Buffer pair", §9 "pointer-swap double buffer" — here
// realized as swapping the two owned *Buffer handles; no data is copied).
type Pair struct {
	Src, Dst *Buffer
}

// NewPair allocates both buffers of an r×c/bpp pair.
func NewPair(rows, cols, bpp int) *Pair {
	return &Pair{
		Src: New(rows, cols, bpp),
		Dst: New(rows, cols, bpp),
	}
}

// Swap exchanges Src and Dst. Both interior and halo of the new Src have
// already been written this iteration (interior by the kernel, halo
// refreshed next iteration) — spec.md §3's swap-atomicity invariant.
func (p *Pair) Swap() {
	p.Src, p.Dst = p.Dst, p.Src
}
