package rimage

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Upscale enlarges img by an integer factor with nearest-neighbour sampling so every sensor
// pixel stays a sharp block. A factor of 1 returns img unchanged.
func Upscale(img image.Image, factor int) (image.Image, error) {
	if factor < 1 {
		return nil, errors.Errorf("scale factor must be at least 1, got %d", factor)
	}
	if factor == 1 {
		return img, nil
	}
	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*factor, b.Dy()*factor, imaging.NearestNeighbor), nil
}
