package measure

import (
	"github.com/pkg/errors"

	"go.viam.com/bodymeasure/rimage"
	"go.viam.com/bodymeasure/rimage/transform"
)

// span samples depth at two flat indices, maps both pixels to camera space and measures the
// straight-line distance between them.
func span(method Method, mask *rimage.SegmentationMask, depth *rimage.DepthFrame, mapper transform.Mapper, from, to int) Result {
	fromPx := mask.Pixel(from)
	toPx := mask.Pixel(to)
	fromDepth := depth.At(from)
	toDepth := depth.At(to)

	fromWorld := mapper.PixelToWorld(float64(fromPx.X), float64(fromPx.Y), fromDepth)
	toWorld := mapper.PixelToWorld(float64(toPx.X), float64(toPx.Y), toDepth)
	return Result{
		Method:       method,
		Meters:       fromWorld.Distance(toWorld),
		Available:    true,
		InvalidDepth: fromDepth == 0 || toDepth == 0,
		From:         fromPx,
		To:           toPx,
		FromWorld:    fromWorld,
		ToWorld:      toWorld,
	}
}

// nearestValid walks from start toward stop (inclusive) in steps of step and returns the first
// occupied index with a depth reading.
func nearestValid(mask *rimage.SegmentationMask, depth *rimage.DepthFrame, start, stop, step int) (int, bool) {
	for i := start; (step > 0 && i <= stop) || (step < 0 && i >= stop); i += step {
		if mask.Occupied(i) && depth.At(i) != 0 {
			return i, true
		}
	}
	return start, false
}

// refine applies the invalid depth policy to a pair of extremes ordered first <= last.
func refine(policy InvalidDepthPolicy, mask *rimage.SegmentationMask, depth *rimage.DepthFrame, first, last int) (int, int) {
	if policy != NearestValidDepth {
		return first, last
	}
	if depth.At(first) == 0 {
		if i, ok := nearestValid(mask, depth, first, last, 1); ok {
			first = i
		}
	}
	if depth.At(last) == 0 {
		if i, ok := nearestValid(mask, depth, last, first, -1); ok {
			last = i
		}
	}
	return first, last
}

func checkDepthMatchesMask(mask *rimage.SegmentationMask, depth *rimage.DepthFrame) error {
	if depth.Len() != mask.Len() {
		return rimage.NewBufferSizeError("depth", depth.Len(), mask.Len())
	}
	if depth.Width() != mask.Width() {
		return errors.Wrapf(rimage.ErrBufferSizeMismatch, "depth frame is %dx%d, mask is %dx%d",
			depth.Width(), depth.Height(), mask.Width(), mask.Height())
	}
	return nil
}
