// Package workload runs the CPU-bound hashing hot loop used to exercise
// and measure register tuning. The hash functions themselves are
// third-party; this package only owns thread placement, the guarded
// execution of each batch, and rate accounting.
package workload

import (
	"context"
	"encoding/binary"
	goerrors "errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"rxtune/internal/guard"
	"rxtune/internal/logger"
)

// batchSize is the number of hashes per guarded region. Small enough that
// an unwound batch loses negligible work, large enough to keep the guard
// overhead out of the hot path.
const batchSize = 1024

// Options configures a benchmark run.
type Options struct {
	Threads  int           // worker goroutines (0 = one per hot core, else NumCPU)
	HotCores []int         // cores to pin workers to, round-robin; empty = unpinned
	Algo     string        // "xxh3" (default) or "blake3"
	Duration time.Duration // total run time
	BufSize  int           // hashed message size in bytes (0 = 4096)
}

// Result is the aggregate outcome of a run.
type Result struct {
	Hashes  uint64
	Faults  uint64
	Elapsed time.Duration
	Rate    float64 // hashes per second across all workers
}

type hashFunc func([]byte) uint64

func hasherFor(algo string) (hashFunc, error) {
	switch algo {
	case "", "xxh3":
		return xxh3.Hash, nil
	case "blake3":
		return func(b []byte) uint64 {
			sum := blake3.Sum256(b)
			return binary.LittleEndian.Uint64(sum[:8])
		}, nil
	}
	return nil, fmt.Errorf("unknown hash algorithm %q", algo)
}

// Run executes the hashing loop on the requested threads until the
// duration elapses or ctx is cancelled. Each batch runs through the
// recovery frame; caught faults are counted and the worker continues.
func Run(ctx context.Context, opts Options, frame *guard.Frame, log logger.Logger) (Result, error) {
	hash, err := hasherFor(opts.Algo)
	if err != nil {
		return Result{}, err
	}

	threads := opts.Threads
	if threads <= 0 {
		if len(opts.HotCores) > 0 {
			threads = len(opts.HotCores)
		} else {
			threads = runtime.NumCPU()
		}
	}
	bufSize := opts.BufSize
	if bufSize <= 0 {
		bufSize = 4096
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if opts.Duration > 0 {
		runCtx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	var hashes, faults atomic.Uint64
	start := time.Now()

	g, runCtx := errgroup.WithContext(runCtx)
	for i := 0; i < threads; i++ {
		core := -1
		if len(opts.HotCores) > 0 {
			core = opts.HotCores[i%len(opts.HotCores)]
		}
		seed := rand.Int63()

		g.Go(func() error {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			if core >= 0 {
				if err := pinThread(core); err != nil {
					log.Warn("Failed to pin worker thread", "core", core, "error", err)
				}
			}

			buf := make([]byte, bufSize)
			rand.New(rand.NewSource(seed)).Read(buf)

			for {
				select {
				case <-runCtx.Done():
					return nil
				default:
				}

				err := frame.RunGuarded(func() error {
					for n := 0; n < batchSize; n++ {
						// Feed each digest back into the message so the
						// loop cannot be optimized away
						binary.LittleEndian.PutUint64(buf, hash(buf))
					}
					return nil
				})
				if err != nil {
					var fe *guard.FaultError
					if goerrors.As(err, &fe) {
						faults.Add(1)
						continue
					}
					return err
				}
				hashes.Add(batchSize)
			}
		})
	}

	err = g.Wait()
	elapsed := time.Since(start)

	res := Result{
		Hashes:  hashes.Load(),
		Faults:  faults.Load(),
		Elapsed: elapsed,
	}
	if elapsed > 0 {
		res.Rate = float64(res.Hashes) / elapsed.Seconds()
	}
	return res, err
}
