package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/readworld/internal/config"
	"github.com/mrlokans/readworld/internal/entrypoint"
	"github.com/mrlokans/readworld/internal/tasks"
)

// ExportAnnotationsCommand writes highlights and notes to markdown without
// going through the task queue.
type ExportAnnotationsCommand struct {
	DatabasePath string
	OutputDir    string
	Subdir       string
	BookIDs      []string

	books string
}

func NewExportAnnotationsCommand() *ExportAnnotationsCommand {
	return &ExportAnnotationsCommand{}
}

func (cmd *ExportAnnotationsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export-annotations", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.OutputDir, "dir", "", "Directory to write markdown into (defaults to the configured export directory)")
	fs.StringVar(&cmd.Subdir, "subdir", "", "Subdirectory created inside the output directory (default: EXPORT_SUBDIR)")
	fs.StringVar(&cmd.books, "book", "", "Comma-separated book IDs to export (default: every annotated book)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export-annotations [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export reader highlights and notes as one markdown file per book.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s export-annotations -dir ~/notes\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s export-annotations -db ./readworld.db -book 1,7\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.BookIDs = splitIDs(cmd.books)
	return nil
}

func (cmd *ExportAnnotationsCommand) Run() error {
	cfg := config.NewConfig()
	cfg.Database.Path = cmd.DatabasePath

	app, err := entrypoint.Build(cfg, false)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	deps := app.ExportDeps()
	if cmd.OutputDir != "" {
		absDir, err := filepath.Abs(cmd.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		deps.Dirs = fixedDir(absDir)
	}

	task := tasks.NewExportAnnotationsTask(app.Store.UserID(ctx), cmd.BookIDs)
	task.Subdir = cmd.Subdir
	if task.Subdir == "" {
		task.Subdir = deps.Subdir
	}

	fmt.Printf("Exporting annotations to %s\n", filepath.Join(deps.Dirs.ExportDir(ctx), task.Subdir))
	result, err := tasks.RunExport(ctx, deps, task)
	if err != nil {
		return err
	}

	fmt.Printf("Books:      %d exported, %d failed\n", result.BooksProcessed, result.BooksFailed)
	fmt.Printf("Highlights: %d\n", result.HighlightsProcessed)
	fmt.Printf("Notes:      %d\n", result.NotesProcessed)
	for _, file := range result.Files {
		fmt.Printf("  %s\n", file)
	}
	return nil
}

type fixedDir string

func (d fixedDir) ExportDir(context.Context) string { return string(d) }

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
