package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/bodymeasure/measure"
	"go.viam.com/bodymeasure/rimage"
	"go.viam.com/bodymeasure/skeleton"
)

// Capture file suffixes. A frame is stored as <stem>.depth, <stem>.bodyindex and
// <stem>.bodies.json; the raw files may also be gzip compressed with a trailing .gz.
const (
	DepthSuffix     = ".depth"
	BodyIndexSuffix = ".bodyindex"
	BodiesSuffix    = ".bodies.json"
)

// ErrUnreadableFrame is the root of every error caused by capture files that are missing or
// cannot be parsed. Such a frame is skipped; the ones after it are still read.
var ErrUnreadableFrame = errors.New("frame files cannot be read")

// FrameReadError reports which frame could not be read and why.
type FrameReadError struct {
	Stem string
	Err  error
}

func (e *FrameReadError) Error() string {
	return fmt.Sprintf("frame %s: %v", filepath.Base(e.Stem), e.Err)
}

// Unwrap returns the underlying cause, e.g. a *rimage.BufferSizeError.
func (e *FrameReadError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrUnreadableFrame.
func (e *FrameReadError) Is(target error) bool {
	return target == ErrUnreadableFrame
}

// ReadFrame loads the capture files of stem into new buffers. The bodies file is optional.
// Errors match ErrUnreadableFrame.
func ReadFrame(stem string, width, height int) (*measure.Frame, error) {
	frame, err := newFrame(width, height)
	if err != nil {
		return nil, err
	}
	if err := loadFrame(stem, frame); err != nil {
		return nil, err
	}
	return frame, nil
}

func newFrame(width, height int) (*measure.Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("bad frame geometry %dx%d", width, height)
	}
	bodyIndex, err := rimage.NewBodyIndexFrame(width, height, make([]uint8, width*height))
	if err != nil {
		return nil, err
	}
	return &measure.Frame{Depth: rimage.NewEmptyDepthFrame(width, height), BodyIndex: bodyIndex}, nil
}

// loadFrame refills frame's buffers from the capture files of stem.
func loadFrame(stem string, frame *measure.Frame) error {
	if err := frame.Depth.LoadFile(existing(stem + DepthSuffix)); err != nil {
		return &FrameReadError{Stem: stem, Err: err}
	}
	if err := frame.BodyIndex.LoadFile(existing(stem + BodyIndexSuffix)); err != nil {
		return &FrameReadError{Stem: stem, Err: err}
	}
	bodies, err := readBodies(stem + BodiesSuffix)
	if err != nil {
		return &FrameReadError{Stem: stem, Err: err}
	}
	frame.Bodies = bodies
	return nil
}

// existing returns fn, or its .gz variant when only that exists.
func existing(fn string) string {
	if _, err := os.Stat(fn); err != nil {
		if _, gzErr := os.Stat(fn + ".gz"); gzErr == nil {
			return fn + ".gz"
		}
	}
	return fn
}

func readBodies(fn string) ([]skeleton.Body, error) {
	//nolint:gosec
	data, err := os.ReadFile(fn)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var bodies []skeleton.Body
	if err := json.Unmarshal(data, &bodies); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", fn)
	}
	return bodies, nil
}

// WriteFrame stores frame under stem. The bodies file is written last and renamed into place so
// a directory watcher never sees it before the raw buffers are complete.
func WriteFrame(stem string, frame *measure.Frame) error {
	if err := writeRaw(stem+DepthSuffix, frame.Depth); err != nil {
		return err
	}
	if err := writeRaw(stem+BodyIndexSuffix, frame.BodyIndex); err != nil {
		return err
	}
	bodies := frame.Bodies
	if bodies == nil {
		bodies = []skeleton.Body{}
	}
	data, err := json.MarshalIndent(bodies, "", "  ")
	if err != nil {
		return err
	}
	tmp := stem + BodiesSuffix + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, stem+BodiesSuffix)
}

func writeRaw(fn string, w io.WriterTo) (err error) {
	//nolint:gosec
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	_, err = w.WriteTo(f)
	return err
}

// CaptureSource replays a directory of captured frames in lexical order of their stems. Every
// frame is loaded into the same buffers, so a frame is only valid until the next call to Next.
type CaptureSource struct {
	stems []string
	next  int
	frame *measure.Frame
}

// NewCaptureSource lists the frames in dir. Every file ending in .depth or .depth.gz names a
// frame.
func NewCaptureSource(dir string, width, height int) (*CaptureSource, error) {
	frame, err := newFrame(width, height)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var stems []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".gz")
		if !strings.HasSuffix(name, DepthSuffix) {
			continue
		}
		stems = append(stems, filepath.Join(dir, strings.TrimSuffix(name, DepthSuffix)))
	}
	if len(stems) == 0 {
		return nil, errors.Errorf("no %s files in %s", DepthSuffix, dir)
	}
	sort.Strings(stems)
	return &CaptureSource{stems: lo.Uniq(stems), frame: frame}, nil
}

// Len returns the number of frames in the capture.
func (cs *CaptureSource) Len() int {
	return len(cs.stems)
}

// Next loads the next frame. A frame that cannot be read is still consumed, so the caller may
// skip it and continue.
func (cs *CaptureSource) Next(ctx context.Context) (*measure.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cs.next >= len(cs.stems) {
		return nil, io.EOF
	}
	seq := cs.next
	cs.next++
	if err := loadFrame(cs.stems[seq], cs.frame); err != nil {
		return nil, err
	}
	cs.frame.Sequence = uint64(seq)
	return cs.frame, nil
}

// Close is a no-op; every file is closed after it is read.
func (cs *CaptureSource) Close() error {
	return nil
}
