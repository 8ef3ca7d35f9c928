package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Resampler shrinks an image to the given size.
//
// Implementations must use a smooth filter (bicubic or equivalent) so that the
// 1x1 result reflects the whole image rather than a single sampled pixel.
type Resampler interface {
	Resample(img image.Image, width, height int) image.Image
}

// ImagingResampler resamples with disintegration/imaging's Catmull-Rom filter.
type ImagingResampler struct{}

// Resample implements Resampler.
func (ImagingResampler) Resample(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.CatmullRom)
}

// BildResampler resamples with bild's Catmull-Rom filter.
type BildResampler struct{}

// Resample implements Resampler.
func (BildResampler) Resample(img image.Image, width, height int) image.Image {
	return transform.Resize(img, width, height, transform.CatmullRom)
}

// ResamplerByName returns the resampler registered under name.
//
// Recognised names are "imaging" (the default when name is empty) and "bild".
func ResamplerByName(name string) (Resampler, error) {
	switch name {
	case "", "imaging":
		return ImagingResampler{}, nil
	case "bild":
		return BildResampler{}, nil
	default:
		return nil, fmt.Errorf("unknown resampler %q", name)
	}
}

// DominantColour reduces img to a single pixel and returns its colour.
//
// The result is a lowercase "#rrggbb" string with each channel zero padded,
// or Transparent if the reduced pixel has zero alpha or the image is empty.
func DominantColour(img image.Image, r Resampler) string {
	if r == nil {
		r = ImagingResampler{}
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return Transparent
	}

	px := r.Resample(img, 1, 1)
	pb := px.Bounds()
	if pb.Empty() {
		return Transparent
	}

	c, ok := colorful.MakeColor(px.At(pb.Min.X, pb.Min.Y))
	if !ok {
		return Transparent
	}

	return c.Clamped().Hex()
}
