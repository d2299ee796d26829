// Package pipeline feeds frames to a measure.Engine one at a time and hands the reports to a
// Sink.
package pipeline

import (
	"context"
	"io"
	"sync"

	"go.uber.org/atomic"

	"go.viam.com/bodymeasure/measure"
)

// A Source produces frames in order. Next returns io.EOF once no more frames will come.
type Source interface {
	Next(ctx context.Context) (*measure.Frame, error)
	Close() error
}

// SourceFunc adapts a function to a Source with nothing to close.
type SourceFunc func(ctx context.Context) (*measure.Frame, error)

// Next calls f.
func (f SourceFunc) Next(ctx context.Context) (*measure.Frame, error) {
	return f(ctx)
}

// Close does nothing.
func (f SourceFunc) Close() error {
	return nil
}

// Slot is a one frame hand-off between a producer and the single consumer. A frame offered
// while another is still waiting is dropped.
type Slot struct {
	frames    chan *measure.Frame
	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Uint64
}

// NewSlot returns an empty, open slot.
func NewSlot() *Slot {
	return &Slot{
		frames: make(chan *measure.Frame, 1),
		done:   make(chan struct{}),
	}
}

// Offer places frame in the slot if it is empty and reports whether it did.
func (s *Slot) Offer(frame *measure.Frame) bool {
	select {
	case <-s.done:
		s.dropped.Inc()
		return false
	default:
	}
	select {
	case s.frames <- frame:
		return true
	default:
		s.dropped.Inc()
		return false
	}
}

// Next waits for a frame. After Close it drains the waiting frame, if any, then returns io.EOF.
func (s *Slot) Next(ctx context.Context) (*measure.Frame, error) {
	select {
	case frame := <-s.frames:
		return frame, nil
	default:
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case frame := <-s.frames:
		return frame, nil
	case <-s.done:
		select {
		case frame := <-s.frames:
			return frame, nil
		default:
			return nil, io.EOF
		}
	}
}

// Dropped returns how many offered frames were discarded.
func (s *Slot) Dropped() uint64 {
	return s.dropped.Load()
}

// Close stops accepting frames.
func (s *Slot) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}
