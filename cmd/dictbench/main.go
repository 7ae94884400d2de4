// Command dictbench drives a set of dicts with a mixed workload and
// reports how incremental rehashing behaves: per-operation latency,
// rehash progress and table shape.
//
// Each worker owns its dicts, as a store shard would; a separate
// goroutine periodically disables resizing for a while to mimic a
// copy-on-write snapshot window.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/llxisdsh/dict"
)

type options struct {
	workers       int
	dicts         int
	keys          int
	ops           int
	deleteRatio   float64
	seed          uint64
	rehashBudget  time.Duration
	snapshotEvery time.Duration
	snapshotFor   time.Duration
	verbose       bool
}

func main() {
	var o options
	flag.IntVar(&o.workers, "workers", 4, "number of worker goroutines")
	flag.IntVar(&o.dicts, "dicts", 4, "dicts per worker")
	flag.IntVar(&o.keys, "keys", 1_000_000, "key space per dict")
	flag.IntVar(&o.ops, "ops", 2_000_000, "operations per worker")
	flag.Float64Var(&o.deleteRatio, "delete", 0.2, "fraction of operations that delete")
	flag.Uint64Var(&o.seed, "seed", 0, "hash seed (0 = random)")
	flag.DurationVar(&o.rehashBudget, "rehash-budget", time.Millisecond, "active rehash budget per maintenance tick")
	flag.DurationVar(&o.snapshotEvery, "snapshot-every", 0, "disable resizing periodically (0 = never)")
	flag.DurationVar(&o.snapshotFor, "snapshot-for", 50*time.Millisecond, "length of a resize-disabled window")
	flag.BoolVar(&o.verbose, "v", false, "log rehash events")
	flag.Parse()

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, o, logger); err != nil {
		logger.Error("dictbench failed", "err", err)
		os.Exit(1)
	}
}

type workerResult struct {
	id       int
	elapsed  time.Duration
	ops      int
	rehashed int
	sampled  int
	scanned  int
	stats    []*dict.Stats
}

func run(ctx context.Context, o options, logger *slog.Logger) error {
	if o.workers <= 0 || o.dicts <= 0 || o.keys <= 0 {
		return fmt.Errorf("workers, dicts and keys must be positive")
	}
	seed := o.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	env := dict.NewEnv(seed)
	logger.Info("starting", "workers", o.workers, "dicts", o.dicts,
		"keys", o.keys, "ops", o.ops, "seed", seed)

	results := make([]workerResult, o.workers)
	g, ctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	if o.snapshotEvery > 0 {
		g.Go(func() error {
			return snapshotLoop(ctx, env, o, logger, done)
		})
	}

	workers, wctx := errgroup.WithContext(ctx)
	for w := 0; w < o.workers; w++ {
		workers.Go(func() error {
			r, err := runWorker(wctx, w, env, o, logger)
			results[w] = r
			return err
		})
	}
	g.Go(func() error {
		defer close(done)
		return workers.Wait()
	})
	if err := g.Wait(); err != nil {
		if !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Info("interrupted")
	}

	for _, r := range results {
		logger.Info("worker done",
			"worker", r.id,
			"elapsed", r.elapsed,
			"ns/op", strconv.FormatFloat(float64(r.elapsed.Nanoseconds())/float64(max(r.ops, 1)), 'f', 1, 64),
			"rehashed", r.rehashed,
			"sampled", r.sampled,
			"scanned", r.scanned)
		if o.verbose {
			for i, s := range r.stats {
				fmt.Fprintf(os.Stdout, "worker %d dict %d\n%s", r.id, i, s.ToString())
			}
		}
	}
	return nil
}

// snapshotLoop turns resizing off for snapshotFor every snapshotEvery,
// until the workers are done.
func snapshotLoop(ctx context.Context, env *dict.Env, o options, logger *slog.Logger, done <-chan struct{}) error {
	ticker := time.NewTicker(o.snapshotEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			env.EnableResize()
			return nil
		case <-done:
			env.EnableResize()
			return nil
		case <-ticker.C:
			logger.Debug("snapshot window: resize disabled")
			env.DisableResize()
			select {
			case <-time.After(o.snapshotFor):
			case <-done:
			case <-ctx.Done():
			}
			env.EnableResize()
			logger.Debug("snapshot window: resize enabled")
		}
	}
}

func runWorker(ctx context.Context, id int, env *dict.Env, o options, logger *slog.Logger) (workerResult, error) {
	r := workerResult{id: id}
	rnd := rand.New(rand.NewPCG(uint64(id), env.HashSeed()))
	dicts := make([]*dict.Dict[string, int64], o.dicts)
	rehashers := make([]dict.Rehasher, o.dicts)
	for i := range dicts {
		dicts[i] = dict.New[string, int64](dict.StringCopyKeyType[int64](),
			dict.WithEnv(env),
			dict.WithRand(rnd),
			dict.WithLogger(logger.With("worker", id, "dict", i)),
			dict.WithAutoShrink())
		rehashers[i] = dicts[i]
	}

	var buf []byte
	start := time.Now()
	for n := 0; n < o.ops; n++ {
		if n&4095 == 0 {
			if err := ctx.Err(); err != nil {
				return r, err
			}
			r.rehashed += dict.ActiveRehash(o.rehashBudget, rehashers...)
		}
		d := dicts[rnd.IntN(len(dicts))]
		buf = strconv.AppendInt(buf[:0], int64(rnd.IntN(o.keys)), 10)
		key := string(buf)

		switch x := rnd.Float64(); {
		case x < o.deleteRatio:
			_ = d.Delete(key)
		case x < o.deleteRatio+0.01:
			r.sampled += len(d.SomeKeys(16))
		case x < o.deleteRatio+0.02:
			if d.RandomKey() != nil {
				r.sampled++
			}
		default:
			e, inserted := d.AddRaw(key)
			if inserted {
				e.SetInt64(1)
			} else {
				e.SetInt64(e.Int64() + 1)
			}
		}
		r.ops++
	}

	// one full scan pass per dict, as a keyspace walk would do
	for _, d := range dicts {
		var cursor uint64
		for {
			cursor = d.Scan(cursor, func(*dict.Entry[string, int64]) { r.scanned++ })
			if cursor == 0 {
				break
			}
		}
	}
	r.elapsed = time.Since(start)
	for _, d := range dicts {
		r.stats = append(r.stats, d.Stats())
	}
	return r, nil
}
