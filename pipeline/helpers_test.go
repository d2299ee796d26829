package pipeline

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/bodymeasure/logging"
	"go.viam.com/bodymeasure/measure"
	"go.viam.com/bodymeasure/rimage"
	"go.viam.com/bodymeasure/rimage/transform"
	"go.viam.com/bodymeasure/skeleton"
)

const (
	testWidth  = 4
	testHeight = 3
)

// testFrame is the 4x3 frame whose widest row spans 2 mm and whose first and last occupied
// pixels are sqrt(5) mm apart on the millimetre grid.
func testFrame(t *testing.T, seq uint64) *measure.Frame {
	t.Helper()
	bg := rimage.Background
	bodyIndex, err := rimage.NewBodyIndexFrame(testWidth, testHeight, []uint8{
		bg, bg, 0, 0,
		bg, 0, 0, 0,
		bg, bg, bg, 0,
	})
	test.That(t, err, test.ShouldBeNil)
	depth := rimage.NewEmptyDepthFrame(testWidth, testHeight)
	for i := range depth.Data() {
		depth.Data()[i] = 1000
	}
	joints := map[skeleton.JointType]skeleton.Joint{}
	for _, jt := range skeleton.HeightJoints() {
		joints[jt] = skeleton.Joint{Position: r3.Vector{Z: 2}, State: skeleton.Tracked}
	}
	return &measure.Frame{
		Sequence:  seq,
		Depth:     depth,
		BodyIndex: bodyIndex,
		Bodies:    []skeleton.Body{{Index: 0, Tracked: true, Joints: joints}},
	}
}

func testEngine(t *testing.T) *measure.Engine {
	t.Helper()
	opts := measure.DefaultOptions()
	opts.Width = testWidth
	opts.Height = testHeight
	engine, err := measure.NewEngine(opts, transform.MillimeterGrid, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return engine
}
