// Package covers keeps local copies of catalog cover images so the reader
// can show them without reaching the image host on every page load.
package covers

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// MaxCoverBytes caps a single downloaded image.
const MaxCoverBytes = 10 << 20

var unsafeID = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Cache stores remote covers under cacheDir, one file per book and URL.
type Cache struct {
	cacheDir   string
	httpClient *http.Client
}

// NewCache creates the cache directory if needed.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// IsRemote reports whether coverURL is fetched over HTTP. Relative covers
// are static assets of the client and never cached.
func IsRemote(coverURL string) bool {
	u, err := url.Parse(coverURL)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Get returns the local path of the cover, downloading it on first use.
// An empty path with a nil error means the book has no remote cover.
func (c *Cache) Get(ctx context.Context, bookID, coverURL string) (string, error) {
	if !IsRemote(coverURL) {
		return "", nil
	}

	cachePath := filepath.Join(c.cacheDir, c.filename(bookID, coverURL))
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	if err := c.fetch(ctx, coverURL, cachePath); err != nil {
		return "", fmt.Errorf("cover for book %s: %w", bookID, err)
	}
	log.Printf("Covers: cached %s", filepath.Base(cachePath))
	return cachePath, nil
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}

func safeID(bookID string) string {
	return unsafeID.ReplaceAllString(bookID, "_")
}

// filename changes with the URL so a catalog edit never serves a stale image.
func (c *Cache) filename(bookID, coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))
	ext := filepath.Ext(mustPath(coverURL))
	if ext == "" || len(ext) > 5 {
		ext = ".img"
	}
	return fmt.Sprintf("cover_%s_%x%s", safeID(bookID), hash[:8], ext)
}

func mustPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Path
}

func (c *Cache) fetch(ctx context.Context, coverURL, cachePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Readworld/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// Write to a temp file in the same directory and rename into place.
	tmpFile, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	n, err := io.Copy(tmpFile, io.LimitReader(resp.Body, MaxCoverBytes+1))
	if err != nil {
		return err
	}
	if n > MaxCoverBytes {
		return fmt.Errorf("image larger than %d bytes", MaxCoverBytes)
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, cachePath)
}
