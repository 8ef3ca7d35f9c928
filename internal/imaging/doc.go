// Package imaging derives image metadata records from raster files.
//
// This package decodes image files, measures them and reduces their pixels to a
// single dominant colour. The resulting Metadata record is what the token engine
// substitutes into stylesheet text.
//
// # Density Model
//
// A decoded image is treated as the double-density (2x) asset. Standard density
// (1x) dimensions are derived by halving and rounding up:
//
//	width1x  = ceil(width2x / 2)
//	height1x = ceil(height2x / 2)
//
// Ratios are percentages rounded to four decimal places (see Round4):
//
//	widthRatio1x  = round4(width1x / height1x * 100)
//	heightRatio2x = round4(height2x / width2x * 100)
//
// # Colour Representation
//
// The dominant colour is produced by resampling the whole image to a single
// pixel with a bicubic (Catmull-Rom) filter. It is emitted as a 7-character
// lowercase "#rrggbb" string, or "transparent" when the resampled pixel has no
// opacity.
//
// # Supported Formats
//
// FileDecoder registers PNG, JPEG, GIF, BMP, TIFF, WebP and AVIF decoders.
//
// # Thread Safety
//
// Analyzer, FileDecoder and the resamplers hold no mutable state and can be
// used concurrently.
package imaging
