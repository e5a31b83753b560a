// Command blurconv distributes a 3x3 stencil convolution filter across a
// grid of tile workers, halo-exchanging their borders between iterations.
//
// Usage:
//
//	blurconv <image-path> <width> <height> <loops> <rgb|grey>
//
// The five positional arguments are mandatory. Optional flags select the
// process-grid size, the intra-rank worker-thread count, the overflow
// policy, and the filter.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/ajroetker/blurconv/internal/cluster"
	"github.com/ajroetker/blurconv/internal/config"
	"github.com/ajroetker/blurconv/internal/filter"
)

var (
	processes = flag.Int("processes", 1, "Number of tile workers (ranks) to distribute across")
	workers   = flag.Int("workers", 4, "Intra-rank worker thread count")
	policy    = flag.String("policy", "clamp", "Overflow policy: clamp|wrap")
	filterFl  = flag.String("filter", "gaussian", "Convolution filter: box|gaussian|edge|identity")
	noOutput  = flag.Bool("noout", false, "Suppress writing the output file")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <image-path> <width> <height> <loops> <rgb|grey>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 5 {
		fmt.Fprintf(os.Stderr, "%s: exactly 5 positional arguments required, got %d\n", os.Args[0], flag.NArg())
		flag.Usage()
		os.Exit(1)
	}

	job, err := buildJob(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		os.Exit(1)
	}

	result, err := cluster.Run(job)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		os.Exit(1)
	}

	fmt.Printf("%.6f\n", result.ElapsedMax.Seconds())
}

func buildJob(args []string) (config.Job, error) {
	imagePath := args[0]
	width, err := strconv.Atoi(args[1])
	if err != nil {
		return config.Job{}, config.Errorf(config.KindConfig, "width must be an integer, got %q", args[1])
	}
	height, err := strconv.Atoi(args[2])
	if err != nil {
		return config.Job{}, config.Errorf(config.KindConfig, "height must be an integer, got %q", args[2])
	}
	loops, err := strconv.Atoi(args[3])
	if err != nil {
		return config.Job{}, config.Errorf(config.KindConfig, "loops must be an integer, got %q", args[3])
	}
	typeName := args[4]

	job, err := config.Parse(imagePath, width, height, loops, typeName)
	if err != nil {
		return config.Job{}, err
	}

	f, err := filter.Parse(*filterFl)
	if err != nil {
		return config.Job{}, err
	}
	job.Filter = f

	p, err := filter.ParsePolicy(*policy)
	if err != nil {
		return config.Job{}, err
	}
	job.Policy = p

	if *processes <= 0 {
		return config.Job{}, config.Errorf(config.KindConfig, "-processes must be positive, got %d", *processes)
	}
	if *workers <= 0 {
		return config.Job{}, config.Errorf(config.KindConfig, "-workers must be positive, got %d", *workers)
	}
	job.Processes = *processes
	job.Workers = *workers
	job.NoOutput = *noOutput

	return job, nil
}
