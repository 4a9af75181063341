// Command once-stress hammers write-once cells with racing writers and
// polling readers, verifying the single-winner and torn-read guarantees
// under real contention.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dustin/go-humanize"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-faster/once"
	"github.com/go-faster/once/internal/version"
)

func fill(n int, v uint64) []uint64 {
	buf := make([]uint64, n)
	for i := range buf {
		buf[i] = v
	}
	return buf
}

func run(ctx context.Context, lg *zap.Logger) (re error) {
	var arg struct {
		Writers int
		Readers int
		Elems   int
		Cells   int
		Profile string
	}
	flag.IntVar(&arg.Writers, "w", 4, "racing writers")
	flag.IntVar(&arg.Readers, "r", 4, "polling readers")
	flag.IntVar(&arg.Elems, "n", 1024, "elements per cell")
	flag.IntVar(&arg.Cells, "c", 100_000, "cells")
	flag.StringVar(&arg.Profile, "profile", "", "cpu profile")
	flag.Parse()

	lg.Info("Start",
		zap.String("run_id", uuid.New().String()),
		zap.String("version", version.Get().Raw),
		zap.Int("writers", arg.Writers),
		zap.Int("readers", arg.Readers),
		zap.Int("cells", arg.Cells),
		zap.Int("elems", arg.Elems),
	)

	if arg.Profile != "" {
		f, err := os.Create(arg.Profile)
		if err != nil {
			return errors.Wrap(err, "create profile")
		}
		defer func() {
			if err := f.Close(); err != nil {
				re = multierr.Append(re, err)
			}

			fmt.Println("Done, profile wrote to", arg.Profile)
		}()
		if err := pprof.StartCPUProfile(f); err != nil {
			return errors.Wrap(err, "start profile")
		}
		defer pprof.StopCPUProfile()
	}

	var (
		wins   atomic.Uint64
		losses atomic.Uint64
		reads  atomic.Uint64
	)
	cells := make([]once.Slice[uint64], arg.Cells)
	g, ctx := errgroup.WithContext(ctx)
	start := time.Now()
	for w := 0; w < arg.Writers; w++ {
		w := w
		g.Go(func() error {
			buf := fill(arg.Elems, uint64(w+1))
			for i := range cells {
				if err := ctx.Err(); err != nil {
					return err
				}
				if cells[i].Set(buf) {
					wins.Inc()
					// Cell owns buf now, next cell needs a fresh one.
					buf = fill(arg.Elems, uint64(w+1))
				} else {
					losses.Inc()
				}
			}
			return nil
		})
	}
	for r := 0; r < arg.Readers; r++ {
		g.Go(func() error {
			for i := range cells {
				bo := backoff.NewExponentialBackOff()
				bo.InitialInterval = 10 * time.Microsecond
				bo.MaxInterval = time.Millisecond

				var got []uint64
				if err := backoff.Retry(func() error {
					v, ok := cells[i].Get()
					if !ok {
						return errors.New("unset")
					}
					got = v
					return nil
				}, backoff.WithContext(bo, ctx)); err != nil {
					return errors.Wrapf(err, "wait for cell %d", i)
				}
				if len(got) != arg.Elems {
					return errors.Errorf("[%d]: bad length %d", i, len(got))
				}
				winner := got[0]
				for j, v := range got {
					if v != winner {
						return errors.Errorf("[%d][%d]: torn read %d != %d", i, j, v, winner)
					}
				}
				reads.Inc()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "wait")
	}
	if got := wins.Load(); got != uint64(arg.Cells) {
		return errors.Errorf("want %d wins, got %d", arg.Cells, got)
	}

	duration := time.Since(start)
	published := uint64(arg.Cells) * uint64(arg.Elems) * 8
	fmt.Println(duration.Round(time.Millisecond),
		humanize.Comma(int64(wins.Load())), "wins",
		humanize.Comma(int64(losses.Load())), "losses",
		humanize.Comma(int64(reads.Load())), "verified reads",
		humanize.Bytes(uint64(float64(published)/duration.Seconds()))+"/s published",
	)

	return nil
}

func main() {
	lg, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	if err := run(context.Background(), lg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(2)
	}
}
