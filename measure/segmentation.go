package measure

import (
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/bodymeasure/rimage"
	"go.viam.com/bodymeasure/rimage/transform"
)

// SegmentationEstimator measures a body's silhouette in a segmentation mask, using depth to lift
// the sampled pixels into camera space.
type SegmentationEstimator struct {
	mapper transform.Mapper
	policy InvalidDepthPolicy
}

// NewSegmentationEstimator returns an estimator that maps pixels with mapper.
func NewSegmentationEstimator(mapper transform.Mapper, policy InvalidDepthPolicy) *SegmentationEstimator {
	return &SegmentationEstimator{mapper: mapper, policy: policy}
}

// Height measures from the first occupied pixel in row-major order to the last one. The mask is
// only read; it is never reordered.
func (se *SegmentationEstimator) Height(ws *Workspace, depth *rimage.DepthFrame) (Result, error) {
	mask := ws.Mask
	if err := checkDepthMatchesMask(mask, depth); err != nil {
		return Unavailable(MethodSegmentationHeight), err
	}

	owners := mask.Owners()
	_, top, ok := lo.FindIndexOf(owners, mask.IsOccupied)
	if !ok {
		return Unavailable(MethodSegmentationHeight), ErrEmptyMask
	}
	_, bottom, _ := lo.FindLastIndexOf(owners, mask.IsOccupied)

	top, bottom = refine(se.policy, mask, depth, top, bottom)
	return span(MethodSegmentationHeight, mask, depth, se.mapper, top, bottom), nil
}

// Width finds the row with the most occupied pixels, lowest row on ties, and measures from its
// leftmost to its rightmost occupied pixel.
func (se *SegmentationEstimator) Width(ws *Workspace, depth *rimage.DepthFrame) (Result, error) {
	mask := ws.Mask
	if err := checkDepthMatchesMask(mask, depth); err != nil {
		return Unavailable(MethodSegmentationWidth), err
	}

	width := mask.Width()
	if len(ws.rowCounts) < mask.Height() {
		ws.rowCounts = make([]float64, mask.Height())
	}
	counts := ws.rowCounts[:mask.Height()]
	for row := range counts {
		counts[row] = float64(lo.CountBy(mask.Row(row), mask.IsOccupied))
	}
	// MaxIdx returns the first index on ties.
	widest := floats.MaxIdx(counts)
	if counts[widest] == 0 {
		return Unavailable(MethodSegmentationWidth), ErrEmptyMask
	}

	row := mask.Row(widest)
	_, left, _ := lo.FindIndexOf(row, mask.IsOccupied)
	_, right, _ := lo.FindLastIndexOf(row, mask.IsOccupied)

	first, last := refine(se.policy, mask, depth, widest*width+left, widest*width+right)
	return span(MethodSegmentationWidth, mask, depth, se.mapper, first, last), nil
}
