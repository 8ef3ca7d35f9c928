package tokens

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-data/internal/imaging"
)

func quietEngine(specs []Spec) *Engine {
	return NewEngine(specs, log.New(io.Discard))
}

func sampleData() map[string]imaging.Metadata {
	a := imaging.Derive(100, 50)
	a.Colour = "#ff0000"
	b := imaging.Derive(101, 51)
	b.Colour = "#0a0b0c"
	return map[string]imaging.Metadata{
		"a.png":            a,
		"src/images/b.png": b,
	}
}

func TestSubstitute_Scenario(t *testing.T) {
	res, err := quietEngine(nil).Substitute("background-image-width: image-width('a.png');", sampleData())
	require.NoError(t, err)
	assert.Equal(t, "background-image-width: 50px;", res.Text)
	assert.Equal(t, 1, res.Replaced)
	assert.Empty(t, res.Unresolved)
}

func TestSubstitute_AllKinds(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"image-width('src/images/b.png')", "51px"},
		{"image-width-2x('src/images/b.png')", "101px"},
		{"image-width-ratio('src/images/b.png')", "196.1538%"},
		{"image-width-ratio-2x('src/images/b.png')", "198.0392%"},
		{"image-height('src/images/b.png')", "26px"},
		{"image-height-2x('src/images/b.png')", "51px"},
		{"image-height-ratio('src/images/b.png')", "50.9804%"},
		{"image-height-ratio-2x('src/images/b.png')", "50.495%"},
		{"image-colour('src/images/b.png')", "#0a0b0c"},
	}

	e := quietEngine(nil)
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			res, err := e.Substitute(tt.in, sampleData())
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Text)
		})
	}
}

func TestSubstitute_Quoting(t *testing.T) {
	e := quietEngine(nil)
	for _, in := range []string{
		`image-height('a.png')`,
		`image-height("a.png")`,
		`image-height(a.png)`,
		`image-height(./a.png)`,
	} {
		res, err := e.Substitute(in, sampleData())
		require.NoError(t, err)
		assert.Equal(t, "25px", res.Text, in)
	}
}

func TestSubstitute_UnknownPathPassthrough(t *testing.T) {
	in := ".hero {\n  background-color: image-colour('missing.png');\n}\n"

	res, err := quietEngine(nil).Substitute(in, sampleData())
	require.NoError(t, err)
	assert.Equal(t, in, res.Text)
	assert.Zero(t, res.Replaced)

	require.Len(t, res.Unresolved, 1)
	ref := res.Unresolved[0]
	assert.Equal(t, "image-colour('missing.png')", ref.Token)
	assert.Equal(t, "missing.png", ref.Path)
	assert.Equal(t, KindColour, ref.Kind)
	assert.Equal(t, 2, ref.Line)
	assert.Positive(t, ref.Column)
}

func TestSubstitute_Document(t *testing.T) {
	in := `.logo {
  width: image-width('a.png');
  height: image-height('a.png');
  padding-top: image-height-ratio-2x("a.png");
  background: image-colour(a.png) url('a.png');
  border-color: image-colour('nope.png');
}
.b { width: image-width-2x('src/images/b.png'); }
`
	want := `.logo {
  width: 50px;
  height: 25px;
  padding-top: 50%;
  background: #ff0000 url('a.png');
  border-color: image-colour('nope.png');
}
.b { width: 101px; }
`

	res, err := quietEngine(nil).Substitute(in, sampleData())
	require.NoError(t, err)
	assert.Equal(t, want, res.Text)
	assert.Equal(t, 5, res.Replaced)
	assert.Len(t, res.Unresolved, 1)
}

func TestSubstitute_RepeatedPathSameSnapshot(t *testing.T) {
	in := "a{w:image-width('a.png');x:image-width('a.png');r:image-width-ratio('a.png')}"

	res, err := quietEngine(nil).Substitute(in, sampleData())
	require.NoError(t, err)
	assert.Equal(t, "a{w:50px;x:50px;r:200%}", res.Text)
}

func TestSubstitute_NoTokens(t *testing.T) {
	in := "body { color: red; }"
	res, err := quietEngine(nil).Substitute(in, nil)
	require.NoError(t, err)
	assert.Equal(t, in, res.Text)
}

func TestSubstitute_MissingField(t *testing.T) {
	specs := []Spec{NewSpec(KindWidth, "image-width", imaging.Field(99), "px")}

	_, err := quietEngine(specs).Substitute("x\ny: image-width('a.png');", sampleData())
	require.Error(t, err)

	var subErr *SubstitutionError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, "image-width('a.png')", subErr.Token)
	assert.Equal(t, "a.png", subErr.Path)
	assert.Equal(t, 2, subErr.Line)
	assert.ErrorIs(t, err, imaging.ErrUnknownField)
}

func TestTable(t *testing.T) {
	specs := Table()
	require.Len(t, specs, 9)

	names := map[string]bool{}
	for i, s := range specs {
		assert.Equal(t, Kind(i), s.Kind)
		assert.Equal(t, s.Name, s.Kind.String())
		names[s.Name] = true

		loc := s.Pattern.FindStringSubmatch(s.Name + "('x.png')")
		require.Len(t, loc, 2, s.Name)
		assert.Equal(t, "x.png", loc[1])
	}
	assert.Len(t, names, 9)

	// Patterns are disjoint: each token text matches exactly one kind.
	for _, s := range specs {
		text := s.Name + "('x.png')"
		hits := 0
		for _, other := range specs {
			if loc := other.Pattern.FindStringIndex(text); loc != nil && loc[0] == 0 && loc[1] == len(text) {
				hits++
			}
		}
		assert.Equal(t, 1, hits, s.Name)
	}

	specs[0].Name = "mutated"
	assert.Equal(t, "image-width", Table()[0].Name, "Table returns a copy")
}
