package exporters

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mrlokans/readworld/internal/utils"
)

type MarkdownExporter struct {
	ExportDir string
	Subdir    string
	now       func() time.Time
}

func NewMarkdownExporter(exportDir, subdir string) *MarkdownExporter {
	return &MarkdownExporter{
		ExportDir: exportDir,
		Subdir:    subdir,
		now:       time.Now,
	}
}

func (exporter *MarkdownExporter) ensureDir() (string, error) {
	if _, err := os.Stat(exporter.ExportDir); err != nil {
		return "", fmt.Errorf("export directory unavailable: %w", err)
	}
	dir := filepath.Join(exporter.ExportDir, exporter.Subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	return dir, nil
}

// Export writes one file per book. A book that fails to write is counted and skipped.
func (exporter *MarkdownExporter) Export(books []BookAnnotations) (ExportResult, error) {
	result := ExportResult{}

	dir, err := exporter.ensureDir()
	if err != nil {
		return result, err
	}

	exportedAt := exporter.now()
	for _, b := range books {
		path := filepath.Join(dir, utils.BookFilename(b.Book.Title, b.Book.Author)+".md")
		if err := os.WriteFile(path, []byte(GenerateMarkdown(b, exportedAt)), 0644); err != nil {
			log.Printf("Markdown export: failed to write %s: %v", path, err)
			result.BooksFailed++
			continue
		}
		result.BooksProcessed++
		result.HighlightsProcessed += len(b.Annotations.Highlights)
		result.NotesProcessed += len(b.Annotations.Notes)
		result.BookmarksProcessed += len(b.Annotations.Bookmarks)
		result.Files = append(result.Files, path)
	}

	return result, nil
}

func quoteYAML(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func blockquote(s string) string {
	return strings.ReplaceAll(s, "\n", "\n> ")
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04")
}

// GenerateMarkdown renders a book's annotations as an Obsidian note.
func GenerateMarkdown(b BookAnnotations, exportedAt time.Time) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "---\n")
	fmt.Fprintf(&builder, "content_type: reading_annotations\n")
	fmt.Fprintf(&builder, "book_id: %s\n", b.Book.ID)
	fmt.Fprintf(&builder, "title: %s\n", quoteYAML(b.Book.Title))
	fmt.Fprintf(&builder, "author: %s\n", quoteYAML(b.Book.Author))
	if b.Rating > 0 {
		fmt.Fprintf(&builder, "rating: %d\n", b.Rating)
	}
	fmt.Fprintf(&builder, "exported_at: %s\n", exportedAt.Format("2006-01-02"))
	fmt.Fprintf(&builder, "tags: [highlights, books]\n")
	fmt.Fprintf(&builder, "---\n\n")

	if len(b.Annotations.Highlights) > 0 {
		fmt.Fprintf(&builder, "## Highlights\n\n")
		for _, h := range b.Annotations.Highlights {
			fmt.Fprintf(&builder, "> [!%s] Page %d", utils.ColorToCalloutType(h.Color), h.Page)
			if at := formatMillis(h.Timestamp); at != "" {
				fmt.Fprintf(&builder, " · %s", at)
			}
			fmt.Fprintf(&builder, "\n> %s\n\n", blockquote(h.Text))
		}
	}

	if len(b.Annotations.Notes) > 0 {
		fmt.Fprintf(&builder, "## Notes\n\n")
		for _, n := range b.Annotations.Notes {
			fmt.Fprintf(&builder, "### Page %d\n\n%s\n\n", n.Page, n.Text)
		}
	}

	if len(b.Annotations.Bookmarks) > 0 {
		fmt.Fprintf(&builder, "## Bookmarks\n\n")
		for _, bm := range b.Annotations.Bookmarks {
			if bm.Note != "" {
				fmt.Fprintf(&builder, "- Page %d: %s\n", bm.Page, bm.Note)
			} else {
				fmt.Fprintf(&builder, "- Page %d\n", bm.Page)
			}
		}
		builder.WriteString("\n")
	}

	if b.Review != nil && b.Review.Text != "" {
		fmt.Fprintf(&builder, "## Review\n\n%s\n", b.Review.Text)
		if b.Review.Name != "" {
			fmt.Fprintf(&builder, "\n*%s*\n", b.Review.Name)
		}
	}

	return builder.String()
}
