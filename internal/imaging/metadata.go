package imaging

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Transparent is the colour emitted when no opaque pixel colour can be obtained.
const Transparent = "transparent"

// ErrUnknownField is returned when a Field does not name a Metadata member.
var ErrUnknownField = errors.New("unknown metadata field")

var hexColour = regexp.MustCompile(`^#[0-9a-f]{6}$`)

// Metadata is the derived record for one source image.
//
// The JSON field names are the on-disk cache format and must not change.
type Metadata struct {
	Width1x       int     `json:"width1x"`
	Height1x      int     `json:"height1x"`
	Width2x       int     `json:"width2x"`
	Height2x      int     `json:"height2x"`
	WidthRatio1x  float64 `json:"widthRatio1x"`
	WidthRatio2x  float64 `json:"widthRatio2x"`
	HeightRatio1x float64 `json:"heightRatio1x"`
	HeightRatio2x float64 `json:"heightRatio2x"`
	Colour        string  `json:"colour"`
}

// Round4 rounds x to four decimal places, halves away from zero.
func Round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}

// Derive computes every geometric field from the decoded 2x dimensions.
// Colour is left empty.
//
// The 1x dimensions use ceiling division to match the decoder's own halving
// convention. Do not replace this with floor or round-to-nearest.
func Derive(width2x, height2x int) Metadata {
	w1 := (width2x + 1) / 2
	h1 := (height2x + 1) / 2

	return Metadata{
		Width1x:       w1,
		Height1x:      h1,
		Width2x:       width2x,
		Height2x:      height2x,
		WidthRatio1x:  Round4(float64(w1) / float64(h1) * 100),
		WidthRatio2x:  Round4(float64(width2x) / float64(height2x) * 100),
		HeightRatio1x: Round4(float64(h1) / float64(w1) * 100),
		HeightRatio2x: Round4(float64(height2x) / float64(width2x) * 100),
	}
}

// Validate reports whether m is internally consistent: positive dimensions,
// derived fields matching Derive, and a well-formed colour.
func (m Metadata) Validate() error {
	if m.Width2x <= 0 || m.Height2x <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", m.Width2x, m.Height2x)
	}

	want := Derive(m.Width2x, m.Height2x)
	want.Colour = m.Colour
	if m != want {
		return fmt.Errorf("derived fields do not match %dx%d", m.Width2x, m.Height2x)
	}

	if m.Colour != Transparent && !hexColour.MatchString(m.Colour) {
		return fmt.Errorf("invalid colour %q", m.Colour)
	}

	return nil
}

// Field selects one member of Metadata.
type Field int

const (
	FieldWidth1x Field = iota
	FieldHeight1x
	FieldWidth2x
	FieldHeight2x
	FieldWidthRatio1x
	FieldWidthRatio2x
	FieldHeightRatio1x
	FieldHeightRatio2x
	FieldColour
)

// String returns the JSON name of the field.
func (f Field) String() string {
	switch f {
	case FieldWidth1x:
		return "width1x"
	case FieldHeight1x:
		return "height1x"
	case FieldWidth2x:
		return "width2x"
	case FieldHeight2x:
		return "height2x"
	case FieldWidthRatio1x:
		return "widthRatio1x"
	case FieldWidthRatio2x:
		return "widthRatio2x"
	case FieldHeightRatio1x:
		return "heightRatio1x"
	case FieldHeightRatio2x:
		return "heightRatio2x"
	case FieldColour:
		return "colour"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// Format returns the text form of field f of m.
//
// Numbers are plain decimals with no trailing zeros ("200", "33.3333").
// The colour is returned verbatim.
func (f Field) Format(m Metadata) (string, error) {
	switch f {
	case FieldWidth1x:
		return strconv.Itoa(m.Width1x), nil
	case FieldHeight1x:
		return strconv.Itoa(m.Height1x), nil
	case FieldWidth2x:
		return strconv.Itoa(m.Width2x), nil
	case FieldHeight2x:
		return strconv.Itoa(m.Height2x), nil
	case FieldWidthRatio1x:
		return formatFloat(m.WidthRatio1x), nil
	case FieldWidthRatio2x:
		return formatFloat(m.WidthRatio2x), nil
	case FieldHeightRatio1x:
		return formatFloat(m.HeightRatio1x), nil
	case FieldHeightRatio2x:
		return formatFloat(m.HeightRatio2x), nil
	case FieldColour:
		return m.Colour, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
