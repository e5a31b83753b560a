// Package stencil implements the Stencil Kernel (spec.md §4.3, component
// C3): the 3×3 convolution applied over a rectangular sub-range of a tile,
// with GREY (one channel) and RGB (three independent channels, shared
// coefficients) variants. The kernel never reads from dst nor writes to src,
// so disjoint ranges can run concurrently (spec.md §4.3, §5).
package stencil

import (
	"github.com/ajroetker/blurconv/internal/filter"
	"github.com/ajroetker/blurconv/internal/tile"
	"github.com/ajroetker/blurconv/internal/workerpool"
)

// Range is an inclusive rectangular range of storage indices, in the same
// 1-based coordinate space as tile.Buffer (1..rows for rows, 1..cols for
// columns).
type Range struct {
	RowLo, RowHi int
	ColLo, ColHi int
}

// Empty reports whether the range contains no cells.
func (r Range) Empty() bool {
	return r.RowLo > r.RowHi || r.ColLo > r.ColHi
}

// Convolve applies the 3×3 filter over every cell in r, reading the 3×3
// neighborhood from src and writing the truncated result to dst. It is
// parallelized over disjoint row ranges using pool (spec.md §5: "the
// Stencil Kernel MAY use a parallel fork/join over the outer two loops,
// statically partitioned, with no inter-thread communication"). A nil pool
// runs sequentially.
func Convolve(pool *workerpool.Pool, src, dst *tile.Buffer, r Range, f filter.Matrix, policy filter.OverflowPolicy) {
	if r.Empty() {
		return
	}

	n := r.RowHi - r.RowLo + 1
	work := func(start, end int) {
		for off := start; off < end; off++ {
			i := r.RowLo + off
			convolveRow(src, dst, i, r.ColLo, r.ColHi, f, policy)
		}
	}

	if pool == nil {
		work(0, n)
		return
	}
	pool.ParallelFor(n, work)
}

// convolveRow convolves every cell (i, j) for j in [colLo, colHi].
func convolveRow(src, dst *tile.Buffer, i, colLo, colHi int, f filter.Matrix, policy filter.OverflowPolicy) {
	bpp := src.Bpp()
	above := src.Row(i - 1)
	mid := src.Row(i)
	below := src.Row(i + 1)

	for j := colLo; j <= colHi; j++ {
		lo := (j - 1) * bpp
		hi := lo + 3*bpp
		a := above[lo:hi]
		m := mid[lo:hi]
		b := below[lo:hi]
		out := dst.Pixel(i, j)

		for ch := 0; ch < bpp; ch++ {
			sum := f[0][0]*float32(a[0*bpp+ch]) + f[0][1]*float32(a[1*bpp+ch]) + f[0][2]*float32(a[2*bpp+ch]) +
				f[1][0]*float32(m[0*bpp+ch]) + f[1][1]*float32(m[1*bpp+ch]) + f[1][2]*float32(m[2*bpp+ch]) +
				f[2][0]*float32(b[0*bpp+ch]) + f[2][1]*float32(b[1*bpp+ch]) + f[2][2]*float32(b[2*bpp+ch])
			out[ch] = filter.Truncate(sum, policy)
		}
	}
}
