package skeleton

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Bone is a segment between two joints.
type Bone struct {
	From JointType
	To   JointType
}

func (b Bone) String() string {
	return fmt.Sprintf("%s-%s", b.From, b.To)
}

// Length is the straight-line distance between the bone's joints. Positions are used as
// reported whatever their tracking state.
func (b Bone) Length(joints map[JointType]Joint) (float64, error) {
	from, ok := joints[b.From]
	if !ok {
		return 0, &MissingJointError{Joint: b.From}
	}
	to, ok := joints[b.To]
	if !ok {
		return 0, &MissingJointError{Joint: b.To}
	}
	return from.Position.Distance(to.Position), nil
}

// Chain is an ordered path of bones.
type Chain []Bone

// Length sums the lengths of every bone in the chain.
func (c Chain) Length(joints map[JointType]Joint) (float64, error) {
	lengths := make([]float64, len(c))
	for i, bone := range c {
		l, err := bone.Length(joints)
		if err != nil {
			return 0, err
		}
		lengths[i] = l
	}
	return floats.Sum(lengths), nil
}

// Joints lists every joint the chain touches, in order and without repeats.
func (c Chain) Joints() []JointType {
	seen := map[JointType]bool{}
	var out []JointType
	for _, bone := range c {
		for _, jt := range []JointType{bone.From, bone.To} {
			if !seen[jt] {
				seen[jt] = true
				out = append(out, jt)
			}
		}
	}
	return out
}

var (
	// SpineChain runs from the head down the spine to its base.
	SpineChain = Chain{
		{Head, Neck},
		{Neck, SpineShoulder},
		{SpineShoulder, SpineMid},
		{SpineMid, SpineBase},
	}
	// LeftPelvis and RightPelvis join the spine base to each hip. Their mean is added to the torso.
	LeftPelvis  = Bone{SpineBase, HipLeft}
	RightPelvis = Bone{SpineBase, HipRight}
	// LeftLegChain runs from the left hip to the left foot.
	LeftLegChain = Chain{{HipLeft, KneeLeft}, {KneeLeft, AnkleLeft}, {AnkleLeft, FootLeft}}
	// RightLegChain runs from the right hip to the right foot.
	RightLegChain = Chain{{HipRight, KneeRight}, {KneeRight, AnkleRight}, {AnkleRight, FootRight}}
)

// Bones is the full drawing topology of the skeleton.
var Bones = Chain{
	// torso
	{Head, Neck},
	{Neck, SpineShoulder},
	{SpineShoulder, SpineMid},
	{SpineMid, SpineBase},
	{SpineShoulder, ShoulderRight},
	{SpineShoulder, ShoulderLeft},
	{SpineBase, HipRight},
	{SpineBase, HipLeft},

	// right arm
	{ShoulderRight, ElbowRight},
	{ElbowRight, WristRight},
	{WristRight, HandRight},
	{HandRight, HandTipRight},
	{WristRight, ThumbRight},

	// left arm
	{ShoulderLeft, ElbowLeft},
	{ElbowLeft, WristLeft},
	{WristLeft, HandLeft},
	{HandLeft, HandTipLeft},
	{WristLeft, ThumbLeft},

	// right leg
	{HipRight, KneeRight},
	{KneeRight, AnkleRight},
	{AnkleRight, FootRight},

	// left leg
	{HipLeft, KneeLeft},
	{KneeLeft, AnkleLeft},
	{AnkleLeft, FootLeft},
}
