package measure

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/bodymeasure/rimage"
)

// bodyIndexFromRows draws a body-index frame from ASCII rows: '#' is body 0, '1'..'5' are those
// bodies, anything else is background.
func bodyIndexFromRows(t *testing.T, rows ...string) *rimage.BodyIndexFrame {
	t.Helper()
	width := len(rows[0])
	data := make([]uint8, 0, width*len(rows))
	for _, row := range rows {
		test.That(t, len(row), test.ShouldEqual, width)
		for _, c := range row {
			switch {
			case c == '#':
				data = append(data, 0)
			case c >= '1' && c <= '5':
				data = append(data, uint8(c-'0'))
			default:
				data = append(data, rimage.Background)
			}
		}
	}
	bf, err := rimage.NewBodyIndexFrame(width, len(rows), data)
	test.That(t, err, test.ShouldBeNil)
	return bf
}

func maskFromRows(t *testing.T, rows ...string) *rimage.SegmentationMask {
	t.Helper()
	bf := bodyIndexFromRows(t, rows...)
	mask, err := rimage.NewSegmentationMaskFromOwners(bf.Width(), bf.Height(), rimage.DefaultMaxBodies, bf.Data())
	test.That(t, err, test.ShouldBeNil)
	return mask
}

func constantDepth(width, height int, depth uint16) *rimage.DepthFrame {
	df := rimage.NewEmptyDepthFrame(width, height)
	for i := range df.Data() {
		df.Data()[i] = depth
	}
	return df
}
