package skeleton

import (
	"fmt"

	"github.com/pkg/errors"
)

// DefaultHeadCrownCorrection is added to the summed bone lengths to account for the distance
// between the head joint and the top of the skull, in metres.
const DefaultHeadCrownCorrection = 0.01

var (
	// ErrMissingJoint is the root of every MissingJointError.
	ErrMissingJoint = errors.New("required joint missing")
	// ErrBodyNotTracked is returned when asked to measure an untracked body slot.
	ErrBodyNotTracked = errors.New("body is not tracked")
)

// MissingJointError names a joint the height chain needs but the body does not have.
type MissingJointError struct {
	Joint JointType
}

func (e *MissingJointError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingJoint, e.Joint)
}

// Unwrap lets errors.Is match ErrMissingJoint.
func (e *MissingJointError) Unwrap() error {
	return ErrMissingJoint
}

// HeightEstimator sums the spine, pelvis and leg chains of a tracked body.
type HeightEstimator struct {
	HeadCrownCorrection float64
}

// NewHeightEstimator returns an estimator with the given head crown correction in metres.
func NewHeightEstimator(headCrownCorrection float64) *HeightEstimator {
	return &HeightEstimator{HeadCrownCorrection: headCrownCorrection}
}

// Height estimates standing height with the default head crown correction.
func Height(body Body) (float64, error) {
	return NewHeightEstimator(DefaultHeadCrownCorrection).Height(body)
}

// Height returns torso + mean leg length + the head crown correction, in metres.
// torso is the spine chain plus the mean of the two pelvis bones.
func (he *HeightEstimator) Height(body Body) (float64, error) {
	if !body.Tracked {
		return 0, ErrBodyNotTracked
	}
	torso, err := he.torsoHeight(body.Joints)
	if err != nil {
		return 0, err
	}
	legs, err := he.legHeight(body.Joints)
	if err != nil {
		return 0, err
	}
	return torso + legs + he.HeadCrownCorrection, nil
}

func (he *HeightEstimator) torsoHeight(joints map[JointType]Joint) (float64, error) {
	spine, err := SpineChain.Length(joints)
	if err != nil {
		return 0, err
	}
	left, err := LeftPelvis.Length(joints)
	if err != nil {
		return 0, err
	}
	right, err := RightPelvis.Length(joints)
	if err != nil {
		return 0, err
	}
	return spine + (left+right)/2, nil
}

func (he *HeightEstimator) legHeight(joints map[JointType]Joint) (float64, error) {
	left, err := LeftLegChain.Length(joints)
	if err != nil {
		return 0, err
	}
	right, err := RightLegChain.Length(joints)
	if err != nil {
		return 0, err
	}
	return (left + right) / 2, nil
}

// HeightJoints lists every joint Height reads.
func HeightJoints() []JointType {
	all := append(Chain{}, SpineChain...)
	all = append(all, LeftPelvis, RightPelvis)
	all = append(all, LeftLegChain...)
	all = append(all, RightLegChain...)
	return all.Joints()
}
