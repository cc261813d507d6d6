// Package batch resolves many IMDb ids through the metadata client in small,
// paced batches so a prefetch never bursts past the upstream rate limit.
package batch

//go:generate mockgen -destination=mocks/mock_lookup.go -package=mocks github.com/moodflix/moodflix/internal/batch MovieLookup

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/moodflix/moodflix/internal/metrics"
	"github.com/moodflix/moodflix/internal/omdb"
)

const (
	// DefaultSize is the number of lookups issued concurrently per batch.
	DefaultSize = 3
	// DefaultDelay is the pause between consecutive batches.
	DefaultDelay = 100 * time.Millisecond
)

// MovieLookup resolves a single id. *omdb.Client implements it.
type MovieLookup interface {
	LookupByID(ctx context.Context, id string, plot omdb.Plot) (*omdb.Movie, bool, error)
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Job describes one resolution run. Zero Size and negative Delay select the
// orchestrator defaults; a zero Delay disables pacing.
type Job struct {
	IDs   []string
	Size  int
	Delay time.Duration
	Plot  omdb.Plot
}

// Orchestrator partitions ids into batches and resolves each batch
// concurrently. It holds no per-job state and is safe for concurrent use.
type Orchestrator struct {
	lookup      MovieLookup
	size        int
	delay       time.Duration
	itemTimeout time.Duration
	sleep       SleepFunc
	log         *slog.Logger
	metrics     *metrics.Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSize sets the default batch size.
func WithSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.size = n
		}
	}
}

// WithDelay sets the default inter-batch pause.
func WithDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.delay = d
		}
	}
}

// WithItemTimeout bounds each lookup. Zero leaves lookups bounded only by
// the caller's context and the HTTP client timeout.
func WithItemTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.itemTimeout = d
	}
}

// WithSleep replaces the pause implementation (for testing).
func WithSleep(fn SleepFunc) Option {
	return func(o *Orchestrator) {
		o.sleep = fn
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log.With("component", "batch")
		}
	}
}

// WithMetrics records resolved and dropped counts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// New creates an orchestrator over lookup.
func New(lookup MovieLookup, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		lookup: lookup,
		size:   DefaultSize,
		delay:  DefaultDelay,
		sleep:  sleepContext,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ResolveMany resolves ids with the default size, delay and short plot.
func (o *Orchestrator) ResolveMany(ctx context.Context, ids []string) []*omdb.Movie {
	return o.Run(ctx, Job{IDs: ids, Delay: -1})
}

// Run resolves every id in job. Absent and failed lookups are dropped; the
// survivors keep their input order. Batches run strictly one after another.
// If ctx is cancelled the records resolved so far are returned.
func (o *Orchestrator) Run(ctx context.Context, job Job) []*omdb.Movie {
	size := job.Size
	if size <= 0 {
		size = o.size
	}
	delay := job.Delay
	if delay < 0 {
		delay = o.delay
	}
	plot := job.Plot
	if plot == "" {
		plot = omdb.PlotShort
	}

	batches := Partition(job.IDs, size)
	movies := make([]*omdb.Movie, 0, len(job.IDs))
	dropped := 0

	for i, ids := range batches {
		if ctx.Err() != nil {
			o.log.Warn("batch job abandoned", "batch", i, "batches", len(batches), "error", ctx.Err())
			break
		}

		resolved := o.resolveBatch(ctx, ids, plot)
		missed := 0
		for _, m := range resolved {
			if m != nil {
				movies = append(movies, m)
			} else {
				missed++
			}
		}
		o.metrics.Batch(len(ids)-missed, missed)
		dropped += missed

		if i < len(batches)-1 && delay > 0 {
			if err := o.sleep(ctx, delay); err != nil {
				o.log.Warn("batch job abandoned during pause", "batch", i, "error", err)
				break
			}
		}
	}

	o.log.Debug("batch job complete", "requested", len(job.IDs), "resolved", len(movies), "dropped", dropped, "batches", len(batches))
	return movies
}

// resolveBatch looks up every id concurrently. The returned slice is parallel
// to ids; failed or absent entries are nil.
func (o *Orchestrator) resolveBatch(ctx context.Context, ids []string, plot omdb.Plot) []*omdb.Movie {
	results := make([]*omdb.Movie, len(ids))

	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			results[i] = o.resolveOne(ctx, id, plot)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (o *Orchestrator) resolveOne(ctx context.Context, id string, plot omdb.Plot) (movie *omdb.Movie) {
	defer func() {
		if p := recover(); p != nil {
			o.log.Error("lookup panicked", "id", id, "panic", p)
			movie = nil
		}
	}()

	if o.itemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.itemTimeout)
		defer cancel()
	}

	m, found, err := o.lookup.LookupByID(ctx, id, plot)
	if err != nil {
		o.log.Warn("lookup failed, dropping item", "id", id, "error", err)
		return nil
	}
	if !found {
		o.log.Debug("lookup found nothing, dropping item", "id", id)
		return nil
	}
	return m
}

// Partition splits ids into consecutive chunks of at most size elements.
func Partition(ids []string, size int) [][]string {
	if size <= 0 {
		size = DefaultSize
	}
	var out [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
