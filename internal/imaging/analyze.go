package imaging

import (
	"errors"
	"image"
)

// ErrEmptyImage is returned by Analyze for a raster with no area.
var ErrEmptyImage = errors.New("image has zero width or height")

// Analyzer turns decoded images into Metadata records.
//
// The zero value is ready to use and resamples with ImagingResampler.
type Analyzer struct {
	Resample Resampler
}

// NewAnalyzer returns an Analyzer using r for the dominant colour.
func NewAnalyzer(r Resampler) *Analyzer {
	return &Analyzer{Resample: r}
}

// Analyze measures img and computes its dominant colour.
//
// The 2x dimensions are the raster bounds as decoded. All other fields are
// derived from them by Derive, so they always change together.
func (a *Analyzer) Analyze(img image.Image) (Metadata, error) {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return Metadata{}, ErrEmptyImage
	}

	m := Derive(bounds.Dx(), bounds.Dy())
	m.Colour = DominantColour(img, a.Resample)
	return m, nil
}
