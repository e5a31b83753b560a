package cluster

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ajroetker/blurconv/internal/config"
	"github.com/ajroetker/blurconv/internal/filter"
	"github.com/ajroetker/blurconv/internal/rawio"
)

func TestRunDistributedMatchesSingleProcess(t *testing.T) {
	const n = 4
	img := make([]byte, n*n)
	for i := range img {
		img[i] = byte(50 + i)
	}

	single := t.TempDir()
	distributed := t.TempDir()
	const name = "img.raw"
	for _, dir := range []string{single, distributed} {
		if err := os.WriteFile(filepath.Join(dir, name), img, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	run := func(dir string, processes int) []byte {
		oldwd, _ := os.Getwd()
		if err := os.Chdir(dir); err != nil {
			t.Fatalf("Chdir: %v", err)
		}
		defer os.Chdir(oldwd)

		job, err := config.Parse(name, n, n, 2, "grey")
		if err != nil {
			t.Fatalf("config.Parse: %v", err)
		}
		job.Filter = filter.Box
		job.Processes = processes
		job.Workers = 2

		if _, err := Run(job); err != nil {
			t.Fatalf("Run(processes=%d): %v", processes, err)
		}
		out, err := os.ReadFile(rawio.OutputPath(name))
		if err != nil {
			t.Fatalf("ReadFile output: %v", err)
		}
		return out
	}

	want := run(single, 1)
	got := run(distributed, 4)
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("pixel %d: single-process=%d distributed(P=4)=%d", i, want[i], got[i])
		}
	}
}

// TestRunAbortsOnTruncatedInputInsteadOfHanging reproduces a rank whose
// positioned read runs past a truncated file before any rank reaches the
// startup barrier (spec.md §4.7): with H=8, W=4 split 2x1, rank 0 owns rows
// 0-3 and rank 1 owns rows 4-7, but the file only has enough bytes for
// rank 0's rows. Rank 1 fails with a KindIO error and closes the fabric
// without ever calling Barrier.Wait; rank 0's read succeeds and it blocks
// on the barrier next. Run must still return a fatal error promptly instead
// of the whole job hanging forever on that barrier (spec.md §5 "fail-fast").
func TestRunAbortsOnTruncatedInputInsteadOfHanging(t *testing.T) {
	const width, height = 4, 8
	dir := t.TempDir()
	path := filepath.Join(dir, "truncated.raw")
	// Only rank 0's 4 rows (16 bytes) are present; rank 1's rows 4-7 are
	// entirely missing from the file.
	if err := os.WriteFile(path, make([]byte, width*(height/2)), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	oldwd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer os.Chdir(oldwd)

	job, err := config.Parse(filepath.Base(path), width, height, 1, "grey")
	if err != nil {
		t.Fatalf("config.Parse: %v", err)
	}
	job.Processes = 2
	job.Workers = 1

	done := make(chan error, 1)
	go func() {
		_, err := Run(job)
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Run should fail on a truncated input file, got nil error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run hung instead of aborting — the startup barrier deadlocked on a pre-barrier fatal error")
	}
}

func TestRunRejectsIndivisibleGrid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "odd.raw")
	if err := os.WriteFile(path, make([]byte, 10*10), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	job, err := config.Parse(path, 10, 10, 0, "grey")
	if err != nil {
		t.Fatalf("config.Parse: %v", err)
	}
	job.Processes = 3 // spec.md §8 scenario 5: 10x10 over P=3 is indivisible
	if _, err := Run(job); err == nil {
		t.Fatal("expected a KindConfig error for an indivisible grid")
	}
}
