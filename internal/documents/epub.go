package documents

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"path"
	"regexp"
	"strconv"
	"sync"

	"github.com/mrlokans/readworld/internal/reader"
)

var cfiSpineStep = regexp.MustCompile(`^epubcfi\(/6/(\d+)`)

type container struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type packageDoc struct {
	Manifest []struct {
		ID   string `xml:"id,attr"`
		Href string `xml:"href,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

// EPUB navigates the spine of the loaded EPUB one section at a time.
// Positions are CFI markers addressing a spine item, e.g. "epubcfi(/6/4!)".
type EPUB struct {
	fsys fs.FS

	mu          sync.Mutex
	spine       []string
	index       int
	onRelocated reader.RelocatedFunc
}

func NewEPUB(fsys fs.FS) *EPUB {
	return &EPUB{fsys: fsys}
}

func (e *EPUB) Load(ctx context.Context, fileRef, resume string, onRelocated reader.RelocatedFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := readFile(e.fsys, fileRef)
	if err != nil {
		return err
	}
	spine, err := ReadSpine(data)
	if err != nil {
		return fmt.Errorf("%s: %w", fileRef, err)
	}

	e.mu.Lock()
	e.spine = spine
	e.index = resumeIndex(resume, len(spine))
	e.onRelocated = onRelocated
	position, fraction, notify := e.locationLocked()
	e.mu.Unlock()

	if notify != nil {
		notify(position, fraction)
	}
	return nil
}

func (e *EPUB) Next(ctx context.Context) error {
	return e.move(ctx, 1)
}

func (e *EPUB) Previous(ctx context.Context) error {
	return e.move(ctx, -1)
}

func (e *EPUB) move(ctx context.Context, step int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	if len(e.spine) == 0 {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	target := e.index + step
	if target < 0 || target >= len(e.spine) {
		e.mu.Unlock()
		return nil
	}
	e.index = target
	position, fraction, notify := e.locationLocked()
	e.mu.Unlock()

	if notify != nil {
		notify(position, fraction)
	}
	return nil
}

func (e *EPUB) locationLocked() (string, float64, reader.RelocatedFunc) {
	position := fmt.Sprintf("epubcfi(/6/%d!)", (e.index+1)*2)
	fraction := float64(e.index+1) / float64(len(e.spine))
	return position, fraction, e.onRelocated
}

// Section returns the path of the current spine item inside the archive.
func (e *EPUB) Section() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.spine) == 0 {
		return ""
	}
	return e.spine[e.index]
}

// resumeIndex maps a saved marker to a spine index. Markers it cannot read start at the beginning.
func resumeIndex(resume string, n int) int {
	m := cfiSpineStep.FindStringSubmatch(resume)
	if m == nil {
		return 0
	}
	step, err := strconv.Atoi(m[1])
	if err != nil || step < 2 {
		return 0
	}
	return min(step/2-1, n-1)
}

// ReadSpine returns the archive paths of the spine items in reading order.
func ReadSpine(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	var c container
	if err := decodeEntry(zr, "META-INF/container.xml", &c); err != nil {
		return nil, err
	}
	if len(c.Rootfiles) == 0 || c.Rootfiles[0].FullPath == "" {
		return nil, fmt.Errorf("%w: no rootfile", ErrInvalidFile)
	}
	opfPath := c.Rootfiles[0].FullPath

	var pkg packageDoc
	if err := decodeEntry(zr, opfPath, &pkg); err != nil {
		return nil, err
	}

	hrefs := make(map[string]string, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		hrefs[item.ID] = item.Href
	}
	base := path.Dir(opfPath)
	spine := make([]string, 0, len(pkg.Spine))
	for _, ref := range pkg.Spine {
		href, ok := hrefs[ref.IDRef]
		if !ok {
			continue
		}
		spine = append(spine, path.Join(base, href))
	}
	if len(spine) == 0 {
		return nil, fmt.Errorf("%w: empty spine", ErrInvalidFile)
	}
	return spine, nil
}

func decodeEntry(zr *zip.Reader, name string, v any) error {
	f, err := zr.Open(name)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidFile, name, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidFile, name, err)
	}
	if err := xml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidFile, name, err)
	}
	return nil
}
