package exporters

import (
	"fmt"
	"slices"

	"github.com/mrlokans/readworld/internal/catalog"
	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/state"
)

// StateMarkdownExporter exports annotations straight from the user state.
type StateMarkdownExporter struct {
	store            *state.Store
	catalog          *catalog.Catalog
	markdownExporter AnnotationExporter
}

func NewStateMarkdownExporter(store *state.Store, cat *catalog.Catalog, exporter AnnotationExporter) *StateMarkdownExporter {
	return &StateMarkdownExporter{store: store, catalog: cat, markdownExporter: exporter}
}

// Collect gathers annotations for bookIDs, or for every annotated book when
// bookIDs is empty. Books with nothing to export and ids missing from the
// catalog are skipped.
func (exporter *StateMarkdownExporter) Collect(bookIDs []string) []BookAnnotations {
	var out []BookAnnotations
	exporter.store.View(func(st *entities.UserState) {
		ids := bookIDs
		if len(ids) == 0 {
			for id := range st.Annotations {
				ids = append(ids, id)
			}
			for id := range st.Reviews {
				ids = append(ids, id)
			}
			slices.Sort(ids)
			ids = slices.Compact(ids)
		}

		for _, id := range ids {
			book, ok := exporter.catalog.Find(id)
			if !ok {
				continue
			}
			b := BookAnnotations{Book: book, Rating: st.UserRatings[id]}
			if a := st.Annotations[id]; a != nil {
				b.Annotations = entities.Annotations{
					Bookmarks:  slices.Clone(a.Bookmarks),
					Highlights: slices.Clone(a.Highlights),
					Notes:      slices.Clone(a.Notes),
				}
			}
			if r, ok := st.Reviews[id]; ok {
				b.Review = &r
			}
			if !b.Empty() {
				out = append(out, b)
			}
		}
	})
	return out
}

func (exporter *StateMarkdownExporter) Export(bookIDs []string) (ExportResult, error) {
	books := exporter.Collect(bookIDs)
	result, err := exporter.markdownExporter.Export(books)
	if err != nil {
		return result, fmt.Errorf("failed to export to markdown: %w", err)
	}
	return result, nil
}
