package documents

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"regexp"
	"strconv"
	"sync"
)

var (
	pdfCount = regexp.MustCompile(`/Type\s*/Pages\b[^>]*?/Count\s+(\d+)|/Count\s+(\d+)[^>]*?/Type\s*/Pages\b`)
	pdfPage  = regexp.MustCompile(`/Type\s*/Page\b`)
)

// PDF tracks the page count of the loaded PDF and validates page requests against it.
type PDF struct {
	fsys fs.FS

	mu    sync.Mutex
	total int
	page  int
}

func NewPDF(fsys fs.FS) *PDF {
	return &PDF{fsys: fsys}
}

func (p *PDF) Load(ctx context.Context, fileRef string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	data, err := readFile(p.fsys, fileRef)
	if err != nil {
		return 0, err
	}
	total, err := CountPages(data)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", fileRef, err)
	}

	p.mu.Lock()
	p.total, p.page = total, 0
	p.mu.Unlock()
	return total, nil
}

func (p *PDF) RenderPage(ctx context.Context, page int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total == 0 {
		return ErrNotLoaded
	}
	if page < 1 || page > p.total {
		return fmt.Errorf("%w: %d of %d", ErrPageRange, page, p.total)
	}
	p.page = page
	return nil
}

// CurrentPage returns the last page rendered, or 0.
func (p *PDF) CurrentPage() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// CountPages reads the page count from the largest /Count of a page tree node,
// falling back to counting page objects. Compressed object streams are not inflated.
func CountPages(data []byte) (int, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return 0, fmt.Errorf("%w: missing PDF header", ErrInvalidFile)
	}

	total := 0
	for _, m := range pdfCount.FindAllSubmatch(data, -1) {
		digits := m[1]
		if len(digits) == 0 {
			digits = m[2]
		}
		if n, err := strconv.Atoi(string(digits)); err == nil && n > total {
			total = n
		}
	}
	if total == 0 {
		total = len(pdfPage.FindAllIndex(data, -1))
	}
	if total == 0 {
		return 0, fmt.Errorf("%w: no pages found", ErrInvalidFile)
	}
	return total, nil
}
