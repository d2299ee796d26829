// Package measure estimates standing height and body width from one frame of skeleton,
// segmentation and depth data.
package measure

import (
	"fmt"
	"image"
	"math"
	"strconv"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

var (
	// ErrEmptyMask means no pixel of the frame belongs to a body, so segmentation estimates are
	// unavailable.
	ErrEmptyMask = errors.New("segmentation mask has no occupied pixels")
	// ErrInvalidDepth means a sampled extreme pixel has no depth reading. The measurement is
	// still produced from the degenerate point and flagged.
	ErrInvalidDepth = errors.New("sampled pixel has no depth reading")
	// ErrIncompleteFrame means a frame arrived without one of its buffers.
	ErrIncompleteFrame = errors.New("frame is missing a buffer")
)

// Method identifies how a measurement was produced.
type Method int

// The measurement methods.
const (
	MethodSkeletal Method = iota
	MethodSegmentationHeight
	MethodSegmentationWidth
)

func (m Method) String() string {
	switch m {
	case MethodSkeletal:
		return "skeletal"
	case MethodSegmentationHeight:
		return "segmentation-height"
	case MethodSegmentationWidth:
		return "segmentation-width"
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// Result is one scalar measurement in metres. When Available is false no other field but
// Method is meaningful.
type Result struct {
	Method    Method
	Meters    float64
	Available bool

	// InvalidDepth is set when either sampled pixel had zero depth and was used anyway.
	InvalidDepth bool
	// From and To are the sampled pixels of segmentation measurements.
	From, To image.Point
	// FromWorld and ToWorld are those pixels in camera space.
	FromWorld, ToWorld r3.Vector
}

// Unavailable returns the empty result for a method.
func Unavailable(method Method) Result {
	return Result{Method: method}
}

// String renders the value rounded to millimetres without trailing zeros, e.g. "1.75 m".
func (r Result) String() string {
	if !r.Available {
		return "unavailable"
	}
	rounded := math.Round(r.Meters*1000) / 1000
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " m"
}
