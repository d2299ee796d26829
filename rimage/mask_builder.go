package rimage

// MaskBuilder classifies raw body-index pixels into a SegmentationMask.
type MaskBuilder struct {
	maxBodies int
}

// NewMaskBuilder returns a builder that treats owner ids below maxBodies as occupied.
func NewMaskBuilder(maxBodies int) (*MaskBuilder, error) {
	if err := checkMaxBodies(maxBodies); err != nil {
		return nil, err
	}
	return &MaskBuilder{maxBodies: maxBodies}, nil
}

// Build overwrites mask from bodyIndex and returns the number of occupied pixels. The depth
// frame is only checked for matching geometry. On a size mismatch mask is left untouched.
func (mb *MaskBuilder) Build(bodyIndex *BodyIndexFrame, depth *DepthFrame, mask *SegmentationMask) (int, error) {
	n := mask.Len()
	if mask.width*mask.height != n {
		return 0, NewBufferSizeError("mask", n, mask.width*mask.height)
	}
	if bodyIndex.Len() != n {
		return 0, NewBufferSizeError("body index", bodyIndex.Len(), n)
	}
	if depth.Len() != n {
		return 0, NewBufferSizeError("depth", depth.Len(), n)
	}

	mask.maxBodies = mb.maxBodies
	occupied := 0
	for i, owner := range bodyIndex.data {
		if int(owner) < mb.maxBodies {
			mask.owners[i] = owner
			occupied++
		} else {
			mask.owners[i] = Background
		}
	}
	return occupied, nil
}
