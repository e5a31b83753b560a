package schedule

import (
	"github.com/ajroetker/blurconv/internal/grid"
	"github.com/ajroetker/blurconv/internal/halo"
)

// Neighbors maps each present direction to the rank id of the neighbor tile
// in that direction. A direction absent from the map has "no neighbor"
// (spec.md §3: "absence encoded as sentinel 'no neighbor'").
type Neighbors map[halo.Direction]int

// ComputeNeighbors derives the (up to) eight neighbor ranks of tile id in
// plan pl, using the row-major grid numbering of spec.md §3: neighbors are
// id ± 1 / ± P_c, present only when the tile isn't already on that edge of
// the process grid. Corner neighbors require both adjacent edges to be
// present (spec.md §4.4's original C source: "nw := (north != -1 && west !=
// -1) ? ... : -1").
func ComputeNeighbors(pl grid.Plan, id int) Neighbors {
	row, col := pl.RankCoord(id)
	n := Neighbors{}

	hasNorth := row > 0
	hasSouth := row < pl.Rows-1
	hasWest := col > 0
	hasEast := col < pl.Cols-1

	if hasNorth {
		n[halo.North] = pl.RankID(row-1, col)
	}
	if hasSouth {
		n[halo.South] = pl.RankID(row+1, col)
	}
	if hasWest {
		n[halo.West] = pl.RankID(row, col-1)
	}
	if hasEast {
		n[halo.East] = pl.RankID(row, col+1)
	}
	if hasNorth && hasWest {
		n[halo.NorthWest] = pl.RankID(row-1, col-1)
	}
	if hasNorth && hasEast {
		n[halo.NorthEast] = pl.RankID(row-1, col+1)
	}
	if hasSouth && hasWest {
		n[halo.SouthWest] = pl.RankID(row+1, col-1)
	}
	if hasSouth && hasEast {
		n[halo.SouthEast] = pl.RankID(row+1, col+1)
	}
	return n
}
