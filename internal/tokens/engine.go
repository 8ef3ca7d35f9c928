package tokens

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tdewolff/parse/v2"

	"github.com/ironsheep/image-data/internal/imaging"
)

// SubstitutionError reports a token whose replacement value could not be
// produced from a resolved record.
type SubstitutionError struct {
	Token  string // matched token text
	Kind   Kind
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *SubstitutionError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d: %v", e.Token, e.Line, e.Column, e.Err)
}

func (e *SubstitutionError) Unwrap() error {
	return e.Err
}

// Reference is a token whose path had no resolved record.
type Reference struct {
	Token   string
	Kind    Kind
	Path    string
	Line    int
	Column  int
	Context string
}

// Result is the outcome of one Substitute call.
type Result struct {
	Text       string
	Replaced   int
	Unresolved []Reference
}

// Engine substitutes tokens using a token table.
type Engine struct {
	specs  []Spec
	logger *log.Logger
}

// NewEngine returns an Engine for specs. A nil specs uses Table().
func NewEngine(specs []Spec, logger *log.Logger) *Engine {
	if specs == nil {
		specs = Table()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{specs: specs, logger: logger}
}

type match struct {
	start, end int
	pathStart  int
	pathEnd    int
	spec       *Spec
}

// Substitute rewrites every token in text whose path is present in data.
//
// All kinds are matched against the same input, so every token that names a
// given path sees the same record. Matches are applied left to right; a match
// overlapping an earlier one is ignored. Tokens with unknown paths are copied
// through unchanged and listed in Result.Unresolved.
func (e *Engine) Substitute(text string, data map[string]imaging.Metadata) (*Result, error) {
	var matches []match
	for i := range e.specs {
		spec := &e.specs[i]
		for _, loc := range spec.Pattern.FindAllStringSubmatchIndex(text, -1) {
			matches = append(matches, match{
				start:     loc[0],
				end:       loc[1],
				pathStart: loc[2],
				pathEnd:   loc[3],
				spec:      spec,
			})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].start < matches[j].start
	})

	res := &Result{}
	var b strings.Builder
	b.Grow(len(text))
	cursor, consumed := 0, 0

	for _, m := range matches {
		if m.start < consumed {
			continue
		}
		consumed = m.end

		token := text[m.start:m.end]
		path := text[m.pathStart:m.pathEnd]

		md, ok := lookup(data, path)
		if !ok {
			line, col, context := parse.Position(strings.NewReader(text), m.start)
			ref := Reference{Token: token, Kind: m.spec.Kind, Path: path, Line: line, Column: col, Context: context}
			res.Unresolved = append(res.Unresolved, ref)
			e.logger.Warn("unresolved image token", "token", token, "line", line, "column", col)
			continue
		}

		value, err := m.spec.Field.Format(md)
		if err != nil {
			line, col, _ := parse.Position(strings.NewReader(text), m.start)
			return nil, &SubstitutionError{Token: token, Kind: m.spec.Kind, Path: path, Line: line, Column: col, Err: err}
		}

		b.WriteString(text[cursor:m.start])
		b.WriteString(value)
		b.WriteString(m.spec.Suffix)
		cursor = m.end
		res.Replaced++
	}

	b.WriteString(text[cursor:])
	res.Text = b.String()
	return res, nil
}

// lookup finds path in data, also trying it without a leading "./".
func lookup(data map[string]imaging.Metadata, path string) (imaging.Metadata, bool) {
	if m, ok := data[path]; ok {
		return m, true
	}
	if trimmed := strings.TrimPrefix(path, "./"); trimmed != path {
		m, ok := data[trimmed]
		return m, ok
	}
	return imaging.Metadata{}, false
}
