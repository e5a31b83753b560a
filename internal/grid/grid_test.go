package grid

import "testing"

func TestChooseMinimizesPerimeter(t *testing.T) {
	// 8x8, P=4: candidates are 1x4 (perimeter 8+2=10), 2x2 (4+4=8), 4x1 (2+8=10).
	pl, err := Choose(8, 8, 4)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if pl.Rows != 2 || pl.Cols != 2 {
		t.Errorf("Choose(8,8,4) = %dx%d, want 2x2", pl.Rows, pl.Cols)
	}
	if pl.TileH != 4 || pl.TileW != 4 {
		t.Errorf("tile size = %dx%d, want 4x4", pl.TileH, pl.TileW)
	}
}

func TestChooseTieBreakSmallestRows(t *testing.T) {
	// 4x4, P=2: 1x2 -> 4+2=6; 2x1 -> 2+4=6. A genuine tie, so the smaller
	// P_r (1) wins.
	pl, err := Choose(4, 4, 2)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if pl.Rows != 1 || pl.Cols != 2 {
		t.Errorf("Choose(4,4,2) = %dx%d, want 1x2", pl.Rows, pl.Cols)
	}
}

func TestChooseIndivisibleRejection(t *testing.T) {
	// Scenario 5 from spec.md §8: H=10, W=10, P=3.
	_, err := Choose(10, 10, 3)
	if err == nil {
		t.Fatal("Choose(10,10,3) should fail: no P_r divides 3 and 10 with matching P_c dividing 10")
	}
}

func TestChooseSingleProcess(t *testing.T) {
	pl, err := Choose(6, 6, 1)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if pl.Rows != 1 || pl.Cols != 1 || pl.TileH != 6 || pl.TileW != 6 {
		t.Errorf("Choose(6,6,1) = %+v, want 1x1 tile 6x6", pl)
	}
}

func TestRankCoordRoundTrip(t *testing.T) {
	pl, err := Choose(6, 6, 9)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	for id := 0; id < pl.P; id++ {
		row, col := pl.RankCoord(id)
		if got := pl.RankID(row, col); got != id {
			t.Errorf("RankID(RankCoord(%d)) = %d, want %d", id, got, id)
		}
	}
}

func TestStartRowCol(t *testing.T) {
	pl, err := Choose(6, 6, 9) // 3x3 grid, 2x2 tiles
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	r0, c0 := pl.StartRowCol(4) // rank 4 -> row 1, col 1
	if r0 != 2 || c0 != 2 {
		t.Errorf("StartRowCol(4) = (%d,%d), want (2,2)", r0, c0)
	}
}
