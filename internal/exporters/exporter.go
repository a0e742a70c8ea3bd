package exporters

import (
	"github.com/mrlokans/readworld/internal/entities"
)

// BookAnnotations is everything exported for one book.
type BookAnnotations struct {
	Book        entities.Book
	Annotations entities.Annotations
	Review      *entities.Review
	Rating      int
}

// Empty reports whether there is nothing worth exporting.
func (b BookAnnotations) Empty() bool {
	return len(b.Annotations.Bookmarks) == 0 &&
		len(b.Annotations.Highlights) == 0 &&
		len(b.Annotations.Notes) == 0 &&
		b.Review == nil && b.Rating == 0
}

type AnnotationExporter interface {
	Export(books []BookAnnotations) (ExportResult, error)
}

type ExportResult struct {
	BooksProcessed      int      `json:"books_processed"`
	HighlightsProcessed int      `json:"highlights_processed"`
	NotesProcessed      int      `json:"notes_processed"`
	BookmarksProcessed  int      `json:"bookmarks_processed"`
	BooksFailed         int      `json:"books_failed"`
	Files               []string `json:"files,omitempty"`
}
