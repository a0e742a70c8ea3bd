// Package catalog holds the static book catalog and the pure filter, sort and
// recommendation functions the library views are built from.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mrlokans/readworld/internal/entities"
)

//go:embed catalog.toml
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("catalog: invalid catalog")

type file struct {
	Books []entities.Book `toml:"books"`
}

// Catalog is an immutable, ordered list of books.
type Catalog struct {
	books []entities.Book
	index map[string]int
}

// Load decodes a TOML catalog with a [[books]] array.
func Load(r io.Reader) (*Catalog, error) {
	var f file
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return New(f.Books)
}

// LoadFile reads a catalog from path.
func LoadFile(path string) (*Catalog, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer fh.Close()
	return Load(fh)
}

// Default returns the catalog shipped with the application.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// New validates books and builds a catalog keeping their order.
func New(books []entities.Book) (*Catalog, error) {
	c := &Catalog{books: slices.Clone(books), index: make(map[string]int, len(books))}
	for i, b := range c.books {
		switch {
		case b.ID == "":
			return nil, fmt.Errorf("%w: book %d has no id", ErrInvalidCatalog, i)
		case b.Format != entities.FormatPDF && b.Format != entities.FormatEPUB:
			return nil, fmt.Errorf("%w: book %s has unknown format %q", ErrInvalidCatalog, b.ID, b.Format)
		case b.Rating < 0 || b.Rating > 5:
			return nil, fmt.Errorf("%w: book %s has rating %v outside 0-5", ErrInvalidCatalog, b.ID, b.Rating)
		}
		if _, dup := c.index[b.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate book id %s", ErrInvalidCatalog, b.ID)
		}
		c.index[b.ID] = i
	}
	return c, nil
}

// Books returns the books in declaration order.
func (c *Catalog) Books() []entities.Book {
	return slices.Clone(c.books)
}

func (c *Catalog) Len() int {
	return len(c.books)
}

func (c *Catalog) Find(id string) (entities.Book, bool) {
	i, ok := c.index[id]
	if !ok {
		return entities.Book{}, false
	}
	return c.books[i], true
}

// Genres returns the distinct primary genres, sorted.
func (c *Catalog) Genres() []string {
	seen := map[string]bool{}
	var out []string
	for _, b := range c.books {
		if !seen[b.Genre] {
			seen[b.Genre] = true
			out = append(out, b.Genre)
		}
	}
	sort.Strings(out)
	return out
}

// AllGenres returns every primary and tag genre, sorted.
func (c *Catalog) AllGenres() []string {
	seen := map[string]bool{}
	var out []string
	for _, b := range c.books {
		for _, g := range b.AllGenres() {
			if !seen[g] {
				seen[g] = true
				out = append(out, g)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Languages returns the distinct book languages in alphabetical order for display.
func (c *Catalog) Languages() []string {
	seen := map[string]bool{}
	var out []string
	for _, b := range c.books {
		lang := b.LanguageOrDefault()
		if !seen[lang] {
			seen[lang] = true
			out = append(out, lang)
		}
	}
	collate.New(language.English, collate.IgnoreCase).SortStrings(out)
	return out
}

// Recommendations are shown next to an open book.
type Recommendations struct {
	BecauseYouLiked []entities.Book `json:"becauseYouLiked"`
	Trending        []entities.Book `json:"trending"`
}

const (
	maxRecommendations = 2
	trendingRating     = 4.7
)

// Recommend suggests up to two other books of the same primary genre and up to
// two highly rated ones. Trending picks may include the current book.
func (c *Catalog) Recommend(bookID string) (Recommendations, bool) {
	current, ok := c.Find(bookID)
	if !ok {
		return Recommendations{}, false
	}

	recs := Recommendations{BecauseYouLiked: []entities.Book{}, Trending: []entities.Book{}}
	for _, b := range c.books {
		if b.Genre == current.Genre && b.ID != current.ID && len(recs.BecauseYouLiked) < maxRecommendations {
			recs.BecauseYouLiked = append(recs.BecauseYouLiked, b)
		}
		if b.Rating >= trendingRating && len(recs.Trending) < maxRecommendations {
			recs.Trending = append(recs.Trending, b)
		}
	}
	return recs, true
}
