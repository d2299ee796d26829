package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/multierr"

	"go.viam.com/bodymeasure/logging"
	"go.viam.com/bodymeasure/measure"
)

// A Sink receives every report. Deliver runs on the consumer goroutine, so a report's mask is
// still valid while it runs.
type Sink interface {
	Deliver(ctx context.Context, report *measure.Report) error
}

// FuncSink adapts a function to a Sink.
type FuncSink func(ctx context.Context, report *measure.Report) error

// Deliver calls f.
func (f FuncSink) Deliver(ctx context.Context, report *measure.Report) error {
	return f(ctx, report)
}

// LogSink writes one structured log line per report.
type LogSink struct {
	Logger logging.Logger
}

// Deliver logs report.
func (s LogSink) Deliver(ctx context.Context, report *measure.Report) error {
	fields := []interface{}{
		"seq", report.Sequence,
		"occupied", report.OccupiedPixels,
		"tracked", report.TrackedBodies,
		"skeletal", report.SkeletalHeight.String(),
		"height", report.SegmentationHeight.String(),
		"width", report.SegmentationWidth.String(),
	}
	if report.Issues != nil {
		fields = append(fields, "issues", report.Issues.Error())
	}
	s.Logger.Infow("measurement", fields...)
	return nil
}

// TableSink collects reports into a table that Render writes out.
type TableSink struct {
	out io.Writer

	mu     sync.Mutex
	writer table.Writer
	rows   int
}

// NewTableSink returns a sink that renders to out.
func NewTableSink(out io.Writer) *TableSink {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Frame", "Occupied", "Bodies", "Skeletal", "Seg. height", "Seg. width", "Issues"})
	return &TableSink{out: out, writer: t}
}

// Deliver appends a row for report. Results computed from an invalid depth are marked with *.
func (s *TableSink) Deliver(ctx context.Context, report *measure.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer.AppendRow(table.Row{
		report.Sequence,
		report.OccupiedPixels,
		report.TrackedBodies,
		cell(report.SkeletalHeight),
		cell(report.SegmentationHeight),
		cell(report.SegmentationWidth),
		len(multierr.Errors(report.Issues)),
	})
	s.rows++
	return nil
}

func cell(r measure.Result) string {
	if r.InvalidDepth {
		return r.String() + "*"
	}
	return r.String()
}

// Rows returns how many reports were collected.
func (s *TableSink) Rows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}

// Render writes the table.
func (s *TableSink) Render() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.out, s.writer.Render())
	return err
}

// MultiSink delivers to each sink in turn and stops at the first error.
type MultiSink []Sink

// Deliver delivers report to every sink.
func (ms MultiSink) Deliver(ctx context.Context, report *measure.Report) error {
	for _, s := range ms {
		if err := s.Deliver(ctx, report); err != nil {
			return err
		}
	}
	return nil
}
