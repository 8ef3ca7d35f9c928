// Package assets finds candidate image files for a resolution batch.
package assets

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
)

// Enumerator expands a path pattern into file paths.
type Enumerator interface {
	Enumerate(pattern string) ([]string, error)
}

// Classifier decides whether a path refers to an image the decoder can read.
type Classifier interface {
	IsImage(path string) bool
}

// GlobEnumerator expands doublestar patterns ("src/images/**/*") against the
// local filesystem. Only regular files are returned, sorted, with forward
// slashes and no leading "./".
type GlobEnumerator struct{}

// Enumerate implements Enumerator.
func (GlobEnumerator) Enumerate(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("invalid asset pattern %q: %w", pattern, err)
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimPrefix(filepath.ToSlash(m), "./"))
	}
	sort.Strings(out)
	return out, nil
}

// imageExtensions are the raster formats imaging.FileDecoder registers.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".jfif": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
	".avif": true,
}

// ExtensionClassifier classifies by file extension, case-insensitively.
type ExtensionClassifier struct{}

// IsImage implements Classifier.
func (ExtensionClassifier) IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// SniffClassifier requires a known extension and an image/* MIME type detected
// from the file's leading bytes. Unreadable files are not images.
type SniffClassifier struct{}

// IsImage implements Classifier.
func (SniffClassifier) IsImage(path string) bool {
	if !(ExtensionClassifier{}).IsImage(path) {
		return false
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}

// Filter returns the paths c accepts, in input order.
func Filter(paths []string, c Classifier) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if c.IsImage(p) {
			out = append(out, p)
		}
	}
	return out
}

// Find enumerates pattern and keeps the images.
func Find(e Enumerator, c Classifier, pattern string) ([]string, error) {
	paths, err := e.Enumerate(pattern)
	if err != nil {
		return nil, err
	}
	return Filter(paths, c), nil
}
