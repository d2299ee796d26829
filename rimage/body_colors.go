package rimage

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// BodyColors is the per-body palette used when drawing a segmentation mask.
var BodyColors = []colorful.Color{
	{R: 1, G: 0, B: 0},             // red
	{R: 1, G: 0.647, B: 0},         // orange
	{R: 0, G: 0.502, B: 0},         // green
	{R: 0, G: 0, B: 1},             // blue
	{R: 0.294, G: 0, B: 0.510},     // indigo
	{R: 0.933, G: 0.510, B: 0.933}, // violet
}

// BodyColor returns the palette colour for a body. Owners past the palette get an evenly
// spaced hue.
func BodyColor(owner uint8) color.Color {
	if int(owner) < len(BodyColors) {
		return BodyColors[owner]
	}
	return colorful.Hsv(math.Mod(float64(owner)*137.5, 360), 0.8, 0.9)
}

// ToBodyIndexImage draws occupied pixels in their body's colour over black. dst is reused when
// it has the right bounds.
func (m *SegmentationMask) ToBodyIndexImage(dst *image.RGBA) *image.RGBA {
	bounds := image.Rect(0, 0, m.width, m.height)
	if dst == nil || dst.Bounds() != bounds {
		dst = image.NewRGBA(bounds)
	}
	for i, owner := range m.owners {
		p := m.Pixel(i)
		if !m.IsOccupied(owner) {
			dst.SetRGBA(p.X, p.Y, color.RGBA{A: 0xff})
			continue
		}
		dst.Set(p.X, p.Y, BodyColor(owner))
	}
	return dst
}
