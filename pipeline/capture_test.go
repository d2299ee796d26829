package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/bodymeasure/rimage"
	"go.viam.com/bodymeasure/skeleton"
)

func TestCaptureRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := testFrame(t, 0)
	test.That(t, WriteFrame(filepath.Join(dir, "frame-0001"), want), test.ShouldBeNil)

	// a frame without bodies is still a frame
	noBodies := testFrame(t, 0)
	noBodies.Bodies = nil
	test.That(t, WriteFrame(filepath.Join(dir, "frame-0000"), noBodies), test.ShouldBeNil)
	test.That(t, os.Remove(filepath.Join(dir, "frame-0000"+BodiesSuffix)), test.ShouldBeNil)

	source, err := NewCaptureSource(dir, testWidth, testHeight)
	test.That(t, err, test.ShouldBeNil)
	defer source.Close()
	test.That(t, source.Len(), test.ShouldEqual, 2)

	got, err := source.Next(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Sequence, test.ShouldEqual, uint64(0))
	test.That(t, got.Bodies, test.ShouldBeNil)

	got, err = source.Next(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Sequence, test.ShouldEqual, uint64(1))
	test.That(t, got.Depth.Data(), test.ShouldResemble, want.Depth.Data())
	test.That(t, got.BodyIndex.Data(), test.ShouldResemble, want.BodyIndex.Data())
	test.That(t, got.Bodies, test.ShouldHaveLength, 1)
	test.That(t, got.Bodies[0].Tracked, test.ShouldBeTrue)
	test.That(t, got.Bodies[0].Joints[skeleton.Head], test.ShouldResemble, want.Bodies[0].Joints[skeleton.Head])

	_, err = source.Next(context.Background())
	test.That(t, err, test.ShouldEqual, io.EOF)
}

func TestCaptureWrongGeometry(t *testing.T) {
	dir := t.TempDir()
	test.That(t, WriteFrame(filepath.Join(dir, "a"), testFrame(t, 0)), test.ShouldBeNil)

	source, err := NewCaptureSource(dir, testWidth, testHeight+1)
	test.That(t, err, test.ShouldBeNil)
	_, err = source.Next(context.Background())
	test.That(t, errors.Is(err, rimage.ErrBufferSizeMismatch), test.ShouldBeTrue)

	// the bad frame was consumed
	_, err = source.Next(context.Background())
	test.That(t, err, test.ShouldEqual, io.EOF)
}

func TestCaptureReusesBuffers(t *testing.T) {
	dir := t.TempDir()
	first := testFrame(t, 0)
	second := testFrame(t, 0)
	second.Depth.Data()[0] = 2000
	test.That(t, WriteFrame(filepath.Join(dir, "a"), first), test.ShouldBeNil)
	test.That(t, WriteFrame(filepath.Join(dir, "b"), second), test.ShouldBeNil)

	source, err := NewCaptureSource(dir, testWidth, testHeight)
	test.That(t, err, test.ShouldBeNil)
	a, err := source.Next(context.Background())
	test.That(t, err, test.ShouldBeNil)
	depth := a.Depth
	test.That(t, depth.At(0), test.ShouldEqual, uint16(1000))

	b, err := source.Next(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.Depth, test.ShouldEqual, depth)
	test.That(t, b.Depth.At(0), test.ShouldEqual, uint16(2000))
	test.That(t, b.Sequence, test.ShouldEqual, uint64(1))
}

func TestCaptureMissingFile(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "a")
	test.That(t, WriteFrame(stem, testFrame(t, 0)), test.ShouldBeNil)
	test.That(t, os.Remove(stem+BodyIndexSuffix), test.ShouldBeNil)

	_, err := ReadFrame(stem, testWidth, testHeight)
	test.That(t, errors.Is(err, ErrUnreadableFrame), test.ShouldBeTrue)
	test.That(t, errors.Is(err, os.ErrNotExist), test.ShouldBeTrue)
	var readErr *FrameReadError
	test.That(t, errors.As(err, &readErr), test.ShouldBeTrue)
	test.That(t, readErr.Stem, test.ShouldEqual, stem)
	test.That(t, err.Error(), test.ShouldStartWith, "frame a: ")

	_, err = ReadFrame(stem, 0, testHeight)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCaptureBadBodies(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "a")
	test.That(t, WriteFrame(stem, testFrame(t, 0)), test.ShouldBeNil)
	test.That(t, os.WriteFile(stem+BodiesSuffix, []byte(`[{"joints": {"Tail": {}}}]`), 0o600), test.ShouldBeNil)

	_, err := ReadFrame(stem, testWidth, testHeight)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "Tail")
}

func TestCaptureEmptyDir(t *testing.T) {
	_, err := NewCaptureSource(t.TempDir(), testWidth, testHeight)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewCaptureSource(filepath.Join(t.TempDir(), "missing"), testWidth, testHeight)
	test.That(t, err, test.ShouldNotBeNil)
}
