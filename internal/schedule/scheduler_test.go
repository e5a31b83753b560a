package schedule

import (
	"testing"

	"github.com/ajroetker/blurconv/internal/fabric"
	"github.com/ajroetker/blurconv/internal/filter"
	"github.com/ajroetker/blurconv/internal/grid"
	"github.com/ajroetker/blurconv/internal/halo"
	"github.com/ajroetker/blurconv/internal/tile"
	"github.com/ajroetker/blurconv/internal/workerpool"
	"github.com/google/go-cmp/cmp"
)

func TestComputeNeighborsCorner(t *testing.T) {
	// Scenario 6 (spec.md §8): RGB 6x6, P=9 (3x3 grid) -- a corner tile
	// (rank 0, top-left) communicates with exactly 3 neighbors: E, S, SE.
	pl, err := grid.Choose(6, 6, 9)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	n := ComputeNeighbors(pl, 0)
	if len(n) != 3 {
		t.Fatalf("corner tile has %d neighbors, want 3: %v", len(n), n)
	}
}

func TestComputeNeighborsSingleProcess(t *testing.T) {
	pl, err := grid.Choose(6, 6, 1)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	n := ComputeNeighbors(pl, 0)
	if len(n) != 0 {
		t.Fatalf("single-process job should have no neighbors, got %v", n)
	}
}

// TestRunIterationMatchesSingleProcess drives two side-by-side 4x4 tiles
// (a 1x2 grid splitting a 4x8 GREY image) through one iteration of the box
// blur and checks the east/west halo exchange reproduces the same output a
// single 4x8 tile would produce — the property-based law from spec.md §8:
// "distributing the same inputs to any valid (P_r, P_c) produces the same
// output as P=1".
func TestRunIterationMatchesSingleProcess(t *testing.T) {
	const rows, bigCols, tileCols, bpp = 4, 8, 4, 1
	seed := func(b *tile.Buffer, colOffset int) {
		for i := 1; i <= rows; i++ {
			row := b.InteriorRow(i)
			for k := range row {
				row[k] = byte((i*13 + (k+colOffset)*7) % 200)
			}
		}
	}

	// Reference: single tile covering the whole 4x8 image.
	refPair := tile.NewPair(rows, bigCols, bpp)
	seed(refPair.Src, 0)
	pool := workerpool.New(2)
	defer pool.Close()
	refEx := NewExchanger(fabric.New(1), 0, Neighbors{}, rows, bigCols, bpp)
	if err := RunIteration(refPair, refEx, pool, filter.Box.Coeffs, filter.PolicyClamp); err != nil {
		t.Fatalf("reference RunIteration: %v", err)
	}

	// Distributed: two 4x4 tiles side by side, fabric-connected.
	fab := fabric.New(2)
	leftPair := tile.NewPair(rows, tileCols, bpp)
	rightPair := tile.NewPair(rows, tileCols, bpp)
	seed(leftPair.Src, 0)
	seed(rightPair.Src, tileCols)

	// Rank 0's only neighbor is rank 1 to its East; rank 1's only neighbor
	// is rank 0 to its West.
	leftNeighbors := Neighbors{halo.East: 1}
	rightNeighbors := Neighbors{halo.West: 0}

	ex0 := NewExchanger(fab, 0, leftNeighbors, rows, tileCols, bpp)
	ex1 := NewExchanger(fab, 1, rightNeighbors, rows, tileCols, bpp)

	errCh := make(chan error, 2)
	go func() { errCh <- RunIteration(leftPair, ex0, pool, filter.Box.Coeffs, filter.PolicyClamp) }()
	go func() { errCh <- RunIteration(rightPair, ex1, pool, filter.Box.Coeffs, filter.PolicyClamp) }()
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			t.Fatalf("RunIteration: %v", err)
		}
	}

	for i := 1; i <= rows; i++ {
		leftRow := leftPair.Src.InteriorRow(i)
		rightRow := rightPair.Src.InteriorRow(i)
		refRow := refPair.Src.InteriorRow(i)
		got := append(append([]byte{}, leftRow...), rightRow...)
		if diff := cmp.Diff(refRow, got); diff != "" {
			t.Errorf("row %d mismatch (-ref +distributed):\n%s", i, diff)
		}
	}
}
