// Package documents provides server-side renderers for the reader: a PDF page
// probe and an EPUB spine navigator. Neither draws anything; they resolve book
// files, report their length and track the reading position.
package documents

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

var (
	ErrNotLoaded   = errors.New("documents: no document loaded")
	ErrPageRange   = errors.New("documents: page out of range")
	ErrInvalidFile = errors.New("documents: unreadable document")
)

// readFile resolves a catalog file reference such as "books/astro.pdf" inside fsys.
func readFile(fsys fs.FS, ref string) ([]byte, error) {
	name := strings.TrimPrefix(ref, "/")
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: bad path %q", ErrInvalidFile, ref)
	}
	return fs.ReadFile(fsys, name)
}
