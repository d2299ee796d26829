package rimage

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// MaxDepth is the largest representable depth in millimetres.
const MaxDepth = math.MaxUint16

// DepthFrame is one row-major depth image in millimetres. Zero means no reading.
type DepthFrame struct {
	width  int
	height int
	data   []uint16
}

// NewDepthFrame wraps data without copying. len(data) must equal width*height.
func NewDepthFrame(width, height int, data []uint16) (*DepthFrame, error) {
	if err := checkGeometry(width, height); err != nil {
		return nil, err
	}
	if len(data) != width*height {
		return nil, NewBufferSizeError("depth", len(data), width*height)
	}
	return &DepthFrame{width: width, height: height, data: data}, nil
}

// NewEmptyDepthFrame returns a zeroed frame of the given size.
func NewEmptyDepthFrame(width, height int) *DepthFrame {
	return &DepthFrame{width: width, height: height, data: make([]uint16, width*height)}
}

// Width returns the number of columns.
func (df *DepthFrame) Width() int {
	return df.width
}

// Height returns the number of rows.
func (df *DepthFrame) Height() int {
	return df.height
}

// Len returns width*height.
func (df *DepthFrame) Len() int {
	return len(df.data)
}

// Data returns the underlying buffer. Callers must not retain it past the current frame.
func (df *DepthFrame) Data() []uint16 {
	return df.data
}

// At returns the depth at a flat index.
func (df *DepthFrame) At(idx int) uint16 {
	return df.data[idx]
}

// Get returns the depth at (col, row).
func (df *DepthFrame) Get(col, row int) uint16 {
	return df.data[row*df.width+col]
}

// Set stores a depth at (col, row).
func (df *DepthFrame) Set(col, row int, depth uint16) {
	df.data[row*df.width+col] = depth
}

// MinMax returns the smallest and largest non-zero depth, or 0, 0 if there are none.
func (df *DepthFrame) MinMax() (uint16, uint16) {
	var lo, hi uint16
	for _, z := range df.data {
		if z == 0 {
			continue
		}
		if lo == 0 || z < lo {
			lo = z
		}
		if z > hi {
			hi = z
		}
	}
	return lo, hi
}

// ToPrettyPicture renders depth as hue, clamped to [hardMin, hardMax]. Missing readings stay black.
func (df *DepthFrame) ToPrettyPicture(hardMin, hardMax uint16) image.Image {
	lo, hi := df.MinMax()
	if lo < hardMin {
		lo = hardMin
	}
	if hi > hardMax {
		hi = hardMax
	}

	img := image.NewRGBA(image.Rect(0, 0, df.width, df.height))
	span := float64(hi) - float64(lo)
	if span <= 0 {
		span = 1
	}

	for row := 0; row < df.height; row++ {
		for col := 0; col < df.width; col++ {
			z := df.Get(col, row)
			if z == 0 {
				continue
			}
			if z < lo {
				z = lo
			}
			if z > hi {
				z = hi
			}
			ratio := (float64(z) - float64(lo)) / span
			hue := 30 + (200.0 * ratio)
			img.Set(col, row, colorful.Hsv(hue, 1.0, 1.0))
		}
	}
	return img
}

// depthPerGrey maps the sensor's 8 m range onto 256 grey levels.
const depthPerGrey = 8000 / 256

// ToGrayPreview renders the frame as 8-bit grey. Readings below minReliable are black. dst is
// reused when it has the right bounds.
func (df *DepthFrame) ToGrayPreview(minReliable uint16, dst *image.Gray) *image.Gray {
	bounds := image.Rect(0, 0, df.width, df.height)
	if dst == nil || dst.Bounds() != bounds {
		dst = image.NewGray(bounds)
	}
	for i, z := range df.data {
		var v uint8
		if z >= minReliable {
			grey := int(z) / depthPerGrey
			if grey > math.MaxUint8 {
				grey = math.MaxUint8
			}
			v = uint8(grey)
		}
		dst.Pix[(i/df.width)*dst.Stride+i%df.width] = v
	}
	return dst
}
