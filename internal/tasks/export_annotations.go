package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/readworld/internal/catalog"
	"github.com/mrlokans/readworld/internal/exporters"
	"github.com/mrlokans/readworld/internal/state"
)

// DefaultExportSubdir is the folder created inside the export directory.
const DefaultExportSubdir = "readworld"

// ExportAnnotationsTask writes Markdown files for the given books, or for every
// annotated book when BookIDs is empty.
type ExportAnnotationsTask struct {
	JobID   string   `json:"job_id"`
	UserID  string   `json:"user_id"`
	BookIDs []string `json:"book_ids,omitempty"`
	Subdir  string   `json:"subdir,omitempty"`
}

func NewExportAnnotationsTask(userID string, bookIDs []string) ExportAnnotationsTask {
	return ExportAnnotationsTask{
		JobID:   uuid.NewString(),
		UserID:  userID,
		BookIDs: bookIDs,
	}
}

func (t ExportAnnotationsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "export_annotations",
		MaxAttempts: 2,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ExportDirSource resolves the export directory when a task runs.
type ExportDirSource interface {
	ExportDir(ctx context.Context) string
}

// ExportRecorder receives the outcome of every export.
type ExportRecorder interface {
	LogExport(userID, bookID, description string, err error)
}

type ExportDeps struct {
	Store    *state.Store
	Catalog  *catalog.Catalog
	Dirs     ExportDirSource
	Recorder ExportRecorder
	// Subdir applies to tasks that do not name their own.
	Subdir string
}

// RunExport performs the export synchronously.
func RunExport(ctx context.Context, deps ExportDeps, task ExportAnnotationsTask) (exporters.ExportResult, error) {
	if deps.Store == nil || deps.Catalog == nil || deps.Dirs == nil {
		return exporters.ExportResult{}, errors.New("export dependencies not configured")
	}
	subdir := task.Subdir
	if subdir == "" {
		subdir = deps.Subdir
	}
	if subdir == "" {
		subdir = DefaultExportSubdir
	}

	markdown := exporters.NewMarkdownExporter(deps.Dirs.ExportDir(ctx), subdir)
	result, err := exporters.NewStateMarkdownExporter(deps.Store, deps.Catalog, markdown).Export(task.BookIDs)

	if deps.Recorder != nil {
		desc := fmt.Sprintf("job %s: %d book(s), %d highlight(s), %d note(s)",
			task.JobID, result.BooksProcessed, result.HighlightsProcessed, result.NotesProcessed)
		deps.Recorder.LogExport(task.UserID, strings.Join(task.BookIDs, ","), desc, err)
	}
	return result, err
}

func ExportAnnotationsProcessor(deps ExportDeps) backlite.QueueProcessor[ExportAnnotationsTask] {
	return func(ctx context.Context, task ExportAnnotationsTask) error {
		result, err := RunExport(ctx, deps, task)
		if err != nil {
			return fmt.Errorf("export annotations %s: %w", task.JobID, err)
		}
		log.Printf("[TASK] Export %s wrote %d file(s), %d failed", task.JobID, result.BooksProcessed, result.BooksFailed)
		return nil
	}
}

func NewExportAnnotationsQueue(deps ExportDeps) backlite.Queue {
	return backlite.NewQueue(ExportAnnotationsProcessor(deps))
}
