package rimage

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

// Background is the owner id of a pixel that belongs to no body.
const Background uint8 = math.MaxUint8

// DefaultMaxBodies is the number of bodies the sensor can segment at once.
const DefaultMaxBodies = 6

// BodyIndexFrame is the sensor's raw per-pixel owner ids. Values below the body limit name a
// tracked body; anything else is background.
type BodyIndexFrame struct {
	width  int
	height int
	data   []uint8
}

// NewBodyIndexFrame wraps data without copying. len(data) must equal width*height.
func NewBodyIndexFrame(width, height int, data []uint8) (*BodyIndexFrame, error) {
	if err := checkGeometry(width, height); err != nil {
		return nil, err
	}
	if len(data) != width*height {
		return nil, NewBufferSizeError("body index", len(data), width*height)
	}
	return &BodyIndexFrame{width: width, height: height, data: data}, nil
}

// Width returns the number of columns.
func (bf *BodyIndexFrame) Width() int {
	return bf.width
}

// Height returns the number of rows.
func (bf *BodyIndexFrame) Height() int {
	return bf.height
}

// Len returns width*height.
func (bf *BodyIndexFrame) Len() int {
	return len(bf.data)
}

// Data returns the underlying buffer.
func (bf *BodyIndexFrame) Data() []uint8 {
	return bf.data
}

// SegmentationMask labels every pixel of one frame with its owning body or Background. It is
// rebuilt in place every frame and carries nothing from one frame to the next.
type SegmentationMask struct {
	width     int
	height    int
	maxBodies int
	owners    []uint8
}

// NewSegmentationMask returns an all-background mask.
func NewSegmentationMask(width, height, maxBodies int) *SegmentationMask {
	owners := make([]uint8, width*height)
	for i := range owners {
		owners[i] = Background
	}
	return &SegmentationMask{width: width, height: height, maxBodies: maxBodies, owners: owners}
}

// NewSegmentationMaskFromOwners copies owners into a new mask. Owners at or above maxBodies are
// treated as background.
func NewSegmentationMaskFromOwners(width, height, maxBodies int, owners []uint8) (*SegmentationMask, error) {
	if err := checkGeometry(width, height); err != nil {
		return nil, err
	}
	if err := checkMaxBodies(maxBodies); err != nil {
		return nil, err
	}
	if len(owners) != width*height {
		return nil, NewBufferSizeError("mask", len(owners), width*height)
	}
	mask := &SegmentationMask{width: width, height: height, maxBodies: maxBodies, owners: make([]uint8, len(owners))}
	for i, owner := range owners {
		if int(owner) < maxBodies {
			mask.owners[i] = owner
		} else {
			mask.owners[i] = Background
		}
	}
	return mask, nil
}

func checkMaxBodies(maxBodies int) error {
	if maxBodies <= 0 || maxBodies >= int(Background) {
		return errors.Errorf("max bodies must be in [1, %d), got %d", Background, maxBodies)
	}
	return nil
}

// Width returns the number of columns.
func (m *SegmentationMask) Width() int {
	return m.width
}

// Height returns the number of rows.
func (m *SegmentationMask) Height() int {
	return m.height
}

// Len returns width*height.
func (m *SegmentationMask) Len() int {
	return len(m.owners)
}

// Owners returns the underlying owner buffer. Treat it as read-only.
func (m *SegmentationMask) Owners() []uint8 {
	return m.owners
}

// Occupied reports whether a flat index belongs to a body.
func (m *SegmentationMask) Occupied(idx int) bool {
	return m.IsOccupied(m.owners[idx])
}

// IsOccupied reports whether an owner id names a body.
func (m *SegmentationMask) IsOccupied(owner uint8) bool {
	return int(owner) < m.maxBodies
}

// Row returns the owners of one image row as a sub-slice of the mask.
func (m *SegmentationMask) Row(row int) []uint8 {
	start := row * m.width
	return m.owners[start : start+m.width]
}

// Pixel decomposes a flat index into (col, row).
func (m *SegmentationMask) Pixel(idx int) image.Point {
	return IndexToPoint(idx, m.width)
}

// IndexToPoint decomposes a row-major flat index into column and row using integer division.
func IndexToPoint(idx, width int) image.Point {
	return image.Point{X: idx % width, Y: idx / width}
}

// PointToIndex is the inverse of IndexToPoint.
func PointToIndex(p image.Point, width int) int {
	return p.Y*width + p.X
}
