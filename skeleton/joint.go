// Package skeleton holds the tracked-body joint schema and the skeletal height estimate.
package skeleton

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// JointType names one anatomical landmark of the standard 25-joint skeleton.
type JointType int

// The joints, in sensor order.
const (
	SpineBase JointType = iota
	SpineMid
	Neck
	Head
	ShoulderLeft
	ElbowLeft
	WristLeft
	HandLeft
	ShoulderRight
	ElbowRight
	WristRight
	HandRight
	HipLeft
	KneeLeft
	AnkleLeft
	FootLeft
	HipRight
	KneeRight
	AnkleRight
	FootRight
	SpineShoulder
	HandTipLeft
	ThumbLeft
	HandTipRight
	ThumbRight

	// JointCount is the number of joints in the schema.
	JointCount = int(ThumbRight) + 1
)

var jointNames = [JointCount]string{
	"SpineBase", "SpineMid", "Neck", "Head",
	"ShoulderLeft", "ElbowLeft", "WristLeft", "HandLeft",
	"ShoulderRight", "ElbowRight", "WristRight", "HandRight",
	"HipLeft", "KneeLeft", "AnkleLeft", "FootLeft",
	"HipRight", "KneeRight", "AnkleRight", "FootRight",
	"SpineShoulder", "HandTipLeft", "ThumbLeft", "HandTipRight", "ThumbRight",
}

func (jt JointType) String() string {
	if jt < 0 || int(jt) >= JointCount {
		return "Unknown"
	}
	return jointNames[jt]
}

// MarshalText lets JointType be used as a JSON object key.
func (jt JointType) MarshalText() ([]byte, error) {
	if jt < 0 || int(jt) >= JointCount {
		return nil, errors.Errorf("unknown joint type %d", int(jt))
	}
	return []byte(jt.String()), nil
}

// UnmarshalText parses a joint name.
func (jt *JointType) UnmarshalText(text []byte) error {
	parsed, err := JointTypeFromString(string(text))
	if err != nil {
		return err
	}
	*jt = parsed
	return nil
}

// JointTypeFromString parses a joint name such as "SpineShoulder".
func JointTypeFromString(name string) (JointType, error) {
	for i, candidate := range jointNames {
		if candidate == name {
			return JointType(i), nil
		}
	}
	return 0, errors.Errorf("unknown joint %q", name)
}

// TrackingState is the sensor's confidence in a joint position.
type TrackingState int

// Tracking states, least to most confident.
const (
	NotTracked TrackingState = iota
	Inferred
	Tracked
)

func (ts TrackingState) String() string {
	switch ts {
	case NotTracked:
		return "NotTracked"
	case Inferred:
		return "Inferred"
	case Tracked:
		return "Tracked"
	}
	return "Unknown"
}

// MarshalText encodes the state by name.
func (ts TrackingState) MarshalText() ([]byte, error) {
	return []byte(ts.String()), nil
}

// UnmarshalText decodes a state name.
func (ts *TrackingState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "NotTracked":
		*ts = NotTracked
	case "Inferred":
		*ts = Inferred
	case "Tracked":
		*ts = Tracked
	default:
		return errors.Errorf("unknown tracking state %q", string(text))
	}
	return nil
}

// Joint is a camera-space position in metres and how confidently it was tracked.
type Joint struct {
	Position r3.Vector     `json:"position"`
	State    TrackingState `json:"state"`
}

// Body is one skeleton slot of a frame. Bodies are produced by the tracker each frame and are
// read-only here.
type Body struct {
	Index   int                 `json:"index"`
	Tracked bool                `json:"tracked"`
	Joints  map[JointType]Joint `json:"joints"`
}

// CountByState returns how many of the body's joints are in the given state.
func (b Body) CountByState(state TrackingState) int {
	n := 0
	for _, j := range b.Joints {
		if j.State == state {
			n++
		}
	}
	return n
}
