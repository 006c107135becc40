// Command parafordemo exercises the three parafor dispatch modes against
// a toy workload, to sanity-check a pool end to end.
//
// Usage:
//
//	parafordemo -count 1000000 -mode load-balancing
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/osor-io/parafor"
)

var (
	count      = flag.Int("count", 1_000_000, "Number of items to process")
	modeFlag   = flag.String("mode", "contiguous", "Dispatch mode: contiguous, load-balancing, per-thread")
	minWorkers = flag.Int("min-workers", 4, "Minimum worker count")
	verbose    = flag.Bool("v", false, "Enable info-level logging")
)

func parseMode(s string) (parafor.Mode, error) {
	switch s {
	case "contiguous":
		return parafor.Contiguous, nil
	case "load-balancing":
		return parafor.LoadBalancing, nil
	case "per-thread":
		return parafor.PerThread, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want contiguous, load-balancing, or per-thread)", s)
	}
}

func main() {
	flag.Parse()

	mode, err := parseMode(*modeFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}

	logger := zap.NewNop()
	if *verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	defer logger.Sync()

	pool, err := parafor.New(
		parafor.WithMinWorkers(*minWorkers),
		parafor.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	results := make([]float64, *count)

	start := time.Now()
	pool.Dispatch(*count, mode, func(i int) {
		results[i] = math.Sqrt(float64(i))
	})
	elapsed := time.Since(start)

	var sum float64
	for _, r := range results {
		sum += r
	}

	fmt.Printf("mode=%s workers=%d count=%d elapsed=%s checksum=%.2f\n",
		mode, pool.WorkerCount(), *count, elapsed, sum)
}
