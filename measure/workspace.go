package measure

import (
	"go.viam.com/bodymeasure/rimage"
)

// Workspace holds the buffers rebuilt every frame. It is owned by exactly one Engine and is
// overwritten in place on each Measure call.
type Workspace struct {
	Mask      *rimage.SegmentationMask
	rowCounts []float64
}

// NewWorkspace allocates buffers for frames of the given geometry.
func NewWorkspace(width, height, maxBodies int) *Workspace {
	return &Workspace{
		Mask:      rimage.NewSegmentationMask(width, height, maxBodies),
		rowCounts: make([]float64, height),
	}
}

// WorkspaceFor wraps an existing mask, e.g. one built by hand in a test.
func WorkspaceFor(mask *rimage.SegmentationMask) *Workspace {
	return &Workspace{Mask: mask, rowCounts: make([]float64, mask.Height())}
}
