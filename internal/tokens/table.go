// Package tokens rewrites call-like image tokens in stylesheet text.
//
// A token such as image-width('img/logo.png') is replaced by the matching
// field of the resolved metadata for that path, with a unit suffix where one
// applies ("120px", "56.25%", "#336699"). Tokens naming a path that was never
// resolved are left as written.
package tokens

import (
	"regexp"

	"github.com/ironsheep/image-data/internal/imaging"
)

// Kind identifies one of the fixed token kinds.
type Kind int

const (
	KindWidth Kind = iota
	KindWidth2x
	KindWidthRatio
	KindWidthRatio2x
	KindHeight
	KindHeight2x
	KindHeightRatio
	KindHeightRatio2x
	KindColour
)

// Spec describes how one token kind is matched and rendered.
type Spec struct {
	Kind    Kind
	Name    string
	Pattern *regexp.Regexp // submatch 1 is the path argument
	Field   imaging.Field
	Suffix  string
}

// NewSpec builds a Spec whose pattern matches name(path), with the path
// optionally wrapped in single or double quotes.
func NewSpec(kind Kind, name string, field imaging.Field, suffix string) Spec {
	return Spec{
		Kind:    kind,
		Name:    name,
		Pattern: regexp.MustCompile(regexp.QuoteMeta(name) + `\(['"]?(.+?)['"]?\)`),
		Field:   field,
		Suffix:  suffix,
	}
}

var table = []Spec{
	NewSpec(KindWidth, "image-width", imaging.FieldWidth1x, "px"),
	NewSpec(KindWidth2x, "image-width-2x", imaging.FieldWidth2x, "px"),
	NewSpec(KindWidthRatio, "image-width-ratio", imaging.FieldWidthRatio1x, "%"),
	NewSpec(KindWidthRatio2x, "image-width-ratio-2x", imaging.FieldWidthRatio2x, "%"),
	NewSpec(KindHeight, "image-height", imaging.FieldHeight1x, "px"),
	NewSpec(KindHeight2x, "image-height-2x", imaging.FieldHeight2x, "px"),
	NewSpec(KindHeightRatio, "image-height-ratio", imaging.FieldHeightRatio1x, "%"),
	NewSpec(KindHeightRatio2x, "image-height-ratio-2x", imaging.FieldHeightRatio2x, "%"),
	NewSpec(KindColour, "image-colour", imaging.FieldColour, ""),
}

// Table returns the fixed token table. The returned slice is a copy.
func Table() []Spec {
	out := make([]Spec, len(table))
	copy(out, table)
	return out
}

// String returns the token name of k.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(table) {
		return table[k].Name
	}
	return "unknown"
}
