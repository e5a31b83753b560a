// Package config resolves CLI arguments into a validated job configuration
// and defines the four fatal error kinds from spec.md §7. All are terminal:
// the job aborts on the first one raised, with no local recovery.
package config

import (
	"fmt"

	"github.com/ajroetker/blurconv/internal/filter"
)

// Kind identifies which of the four fatal error categories a JobError is.
type Kind int

const (
	// KindConfig covers bad arguments and an indivisible process grid.
	// Abort happens before any buffer allocation.
	KindConfig Kind = iota
	// KindIO covers a failure to open, read, or write the image file.
	KindIO
	// KindOom covers a failed buffer allocation.
	KindOom
	// KindComm covers a send/recv/wait failure in the halo exchanger.
	KindComm
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "ConfigError"
	case KindIO:
		return "IOError"
	case KindOom:
		return "OomError"
	case KindComm:
		return "CommError"
	default:
		return "UnknownError"
	}
}

// JobError is a fatal, unrecoverable error raised by any component of the
// job. It wraps an underlying cause using the teacher's own `fmt.Errorf(...:
// %w", err)` style rather than a bespoke error-handling framework.
type JobError struct {
	Kind Kind
	Err  error
}

func (e *JobError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

// Errorf builds a JobError of the given kind, formatting like fmt.Errorf.
func Errorf(kind Kind, format string, args ...any) error {
	return &JobError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// ImageType distinguishes single-channel GREY from interleaved RGB, per
// spec.md §3.
type ImageType int

const (
	RGB ImageType = iota
	Grey
)

func (t ImageType) String() string {
	if t == Grey {
		return "grey"
	}
	return "rgb"
}

// BytesPerPixel returns 1 for Grey, 3 for RGB.
func (t ImageType) BytesPerPixel() int {
	if t == Grey {
		return 1
	}
	return 3
}

// Job is the fully resolved configuration for one run: everything the
// sequential fallback or the distributed driver needs, with no further
// parsing required.
type Job struct {
	ImagePath string
	Width     int
	Height    int
	Loops     int
	Type      ImageType
	Filter    filter.Filter
	Policy    filter.OverflowPolicy
	Workers   int // intra-rank thread count (spec.md §5, default 4)
	Processes int // number of ranks/tiles (spec.md §2, default 1)
	NoOutput  bool
}

// Parse resolves the five mandatory positional CLI arguments from spec.md §6
// (image-path, width, height, loops, rgb|grey), validates basic shape
// constraints, and fills the optional settings (filter, policy, workers,
// processes) with their defaults; the caller overrides those afterwards. The process-grid
// divisibility check (C1, §4.1) happens later, once the process count is
// known, and is reported as a KindConfig error as well.
func Parse(imagePath string, width, height, loops int, typeName string) (Job, error) {
	if width <= 0 || height <= 0 {
		return Job{}, Errorf(KindConfig, "width and height must be positive, got %dx%d", width, height)
	}
	if loops < 0 {
		return Job{}, Errorf(KindConfig, "loops must be non-negative, got %d", loops)
	}
	var it ImageType
	switch typeName {
	case "rgb":
		it = RGB
	case "grey":
		it = Grey
	default:
		return Job{}, Errorf(KindConfig, "image type must be rgb or grey, got %q", typeName)
	}
	return Job{
		ImagePath: imagePath,
		Width:     width,
		Height:    height,
		Loops:     loops,
		Type:      it,
		Filter:    filter.Gaussian,
		Policy:    filter.PolicyClamp,
		Workers:   4,
		Processes: 1,
	}, nil
}
