package transform

import "github.com/golang/geo/r3"

// Mapper maps a depth-image pixel and its depth reading in millimetres to a camera-space point
// in metres. Implementations must be pure: same input, same output, no blocking.
type Mapper interface {
	PixelToWorld(col, row float64, depthMM uint16) r3.Vector
}

// MapperFunc adapts a plain function to Mapper.
type MapperFunc func(col, row float64, depthMM uint16) r3.Vector

// PixelToWorld calls f.
func (f MapperFunc) PixelToWorld(col, row float64, depthMM uint16) r3.Vector {
	return f(col, row, depthMM)
}

// MillimeterGrid treats one pixel step as one millimetre on each image axis and depth as
// millimetres along z. It has no optics and exists for synthetic frames and tests.
var MillimeterGrid Mapper = MapperFunc(func(col, row float64, depthMM uint16) r3.Vector {
	return r3.Vector{X: col / 1000, Y: row / 1000, Z: float64(depthMM) / 1000}
})
