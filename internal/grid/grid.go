// Package grid implements the Tile Planner (spec.md §4.1, component C1): it
// chooses a P_r × P_c process grid that exactly divides the image and
// minimizes the per-tile half-perimeter H/P_r + W/P_c.
package grid

import (
	"github.com/ajroetker/blurconv/internal/config"
	"github.com/samber/lo"
)

// Plan is the immutable decision the Tile Planner produces. Once computed it
// never changes for the lifetime of the job (spec.md §3 "Lifecycles").
type Plan struct {
	H, W       int // global image dimensions
	P          int // total number of ranks
	Rows, Cols int // P_r, P_c: the process grid shape
	TileH      int // r = H / Rows
	TileW      int // c = W / Cols
}

// Choose chooses P_r (and derives P_c = P/P_r) such that P_r divides P, P_r
// divides H, and P_c divides W, minimizing H/P_r + W/P_c. Ties are broken by
// the smallest P_r (spec.md §4.1). Returns a KindConfig error if no
// candidate satisfies the divisibility constraints — the job aborts before
// any buffer allocation (spec.md §7).
func Choose(h, w, p int) (Plan, error) {
	if h <= 0 || w <= 0 || p <= 0 {
		return Plan{}, config.Errorf(config.KindConfig, "grid: H, W and P must be positive, got H=%d W=%d P=%d", h, w, p)
	}

	candidates := lo.Filter(lo.Range(p+1), func(pr, _ int) bool {
		return pr >= 1 && p%pr == 0 && h%pr == 0 && w%(p/pr) == 0
	})
	if len(candidates) == 0 {
		return Plan{}, config.Errorf(config.KindConfig, "grid: cannot divide %dx%d image across %d processes (indivisible)", h, w, p)
	}

	perimeter := func(pr int) int { return h/pr + w/(p/pr) }
	bestRows := lo.MinBy(candidates, func(a, b int) bool { return perimeter(a) < perimeter(b) })

	cols := p / bestRows
	return Plan{
		H: h, W: w, P: p,
		Rows: bestRows, Cols: cols,
		TileH: h / bestRows,
		TileW: w / cols,
	}, nil
}

// RankCoord returns the (row, col) grid coordinate of a rank id, using the
// row-major numbering of spec.md §3: row = id / P_c, col = id mod P_c.
func (pl Plan) RankCoord(id int) (row, col int) {
	return id / pl.Cols, id % pl.Cols
}

// RankID is the inverse of RankCoord.
func (pl Plan) RankID(row, col int) int {
	return row*pl.Cols + col
}

// StartRowCol returns the global (R0, C0) origin of the tile owned by rank id.
func (pl Plan) StartRowCol(id int) (r0, c0 int) {
	row, col := pl.RankCoord(id)
	return row * pl.TileH, col * pl.TileW
}
