package pipeline

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/bodymeasure/logging"
	"go.viam.com/bodymeasure/measure"
	"go.viam.com/bodymeasure/rimage"
)

// Stats counts what a Runner did.
type Stats struct {
	Measured uint64
	Skipped  uint64
}

// Runner is the single consumer of a Source. It measures a frame and delivers its report before
// pulling the next one, so at most one frame is in flight and the engine's workspace is never
// shared.
type Runner struct {
	source Source
	engine *measure.Engine
	sink   Sink
	logger logging.Logger

	mu    sync.Mutex
	stats Stats
}

// NewRunner returns a runner that measures frames from source with engine.
func NewRunner(source Source, engine *measure.Engine, sink Sink, logger logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Global().Sublogger("pipeline")
	}
	return &Runner{source: source, engine: engine, sink: sink, logger: logger}
}

// Run consumes frames until the source is exhausted, ctx is done or the sink fails. Frames that
// cannot be read or do not fit the engine's geometry are logged and skipped. Exhausting the
// source is not an error.
func (r *Runner) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame, err := r.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err == nil {
			var report *measure.Report
			report, err = r.engine.Measure(frame)
			if err == nil {
				if err := r.sink.Deliver(ctx, report); err != nil {
					return errors.Wrapf(err, "delivering frame %d", report.Sequence)
				}
				r.count(func(s *Stats) { s.Measured++ })
				continue
			}
		}
		if !skippable(err) {
			return err
		}
		r.count(func(s *Stats) { s.Skipped++ })
		r.logger.Warnw("skipping frame", "error", err)
	}
}

func skippable(err error) bool {
	return errors.Is(err, ErrUnreadableFrame) ||
		errors.Is(err, rimage.ErrBufferSizeMismatch) ||
		errors.Is(err, measure.ErrIncompleteFrame)
}

func (r *Runner) count(f func(s *Stats)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f(&r.stats)
}

// Stats returns the counts so far.
func (r *Runner) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
