// Package artifact keeps a local copy of the versioned generator jar.
package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
	"git.home.luguber.info/inful/clientgen/internal/logfields"
)

const (
	// DefaultNameTemplate is the local file name; %s is the version.
	DefaultNameTemplate = "swagger-codegen-cli-%s.jar"
	markerSuffix        = ".complete"
	partSuffix          = ".part"
)

// Artifact is a verified local copy of the generator.
type Artifact struct {
	Version string
	Path    string
	URL     string
	Size    int64
}

// marker is written next to a fully downloaded artifact.
type marker struct {
	Version      string    `json:"version"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	SHA256       string    `json:"sha256"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// Cache downloads an artifact once per version and reuses it afterwards.
// Files are never deleted by the cache.
type Cache struct {
	dir         string
	urlTemplate string
	client      *http.Client
}

// Option configures a Cache.
type Option func(*Cache)

// WithHTTPClient replaces the HTTP client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(cache *Cache) {
		if c != nil {
			cache.client = c
		}
	}
}

// NewCache creates a cache rooted at dir. urlTemplate uses %[1]s for the version.
func NewCache(dir, urlTemplate string, opts ...Option) *Cache {
	if dir == "" {
		dir = "."
	}
	c := &Cache{
		dir:         dir,
		urlTemplate: urlTemplate,
		client:      &http.Client{Timeout: 10 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PathFor returns the local path for version.
func (c *Cache) PathFor(version string) string {
	return filepath.Join(c.dir, fmt.Sprintf(DefaultNameTemplate, version))
}

// URLFor returns the download URL for version.
func (c *Cache) URLFor(version string) string {
	return fmt.Sprintf(c.urlTemplate, version)
}

// Ensure returns the local artifact for version, downloading it when no verified
// copy exists. A cached file is trusted only if its completion marker matches.
func (c *Cache) Ensure(ctx context.Context, version string) (Artifact, error) {
	path := c.PathFor(version)
	url := c.URLFor(version)

	if m, ok := c.verified(path); ok {
		slog.Info("Generator artifact already downloaded", logfields.Path(path), logfields.Version(version))
		return Artifact{Version: version, Path: path, URL: m.URL, Size: m.Size}, nil
	}

	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return Artifact{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to create artifact cache directory").
			Fatal().
			WithContext("path", c.dir).
			Build()
	}

	slog.Info("Downloading generator artifact", logfields.URL(url), logfields.Path(path))
	m, err := c.download(ctx, url, path)
	if err != nil {
		return Artifact{}, errors.DownloadError("generator download failed").
			WithContext("url", url).
			WithContext("path", path).
			WithCause(err).
			Build()
	}
	m.Version = version
	if err := writeMarker(path, m); err != nil {
		return Artifact{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to record completed download").
			Fatal().
			WithContext("path", path).
			Build()
	}
	slog.Info("Generator artifact downloaded", logfields.Path(path), slog.Int64("bytes", m.Size))
	return Artifact{Version: version, Path: path, URL: url, Size: m.Size}, nil
}

// verified reports whether path has a marker whose size and digest match the file
// on disk.
func (c *Cache) verified(path string) (marker, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return marker{}, false
	}
	data, err := os.ReadFile(path + markerSuffix)
	if err != nil {
		slog.Warn("Cached artifact has no completion marker; downloading again", logfields.Path(path))
		return marker{}, false
	}
	var m marker
	if err := json.Unmarshal(data, &m); err != nil || m.Size != info.Size() {
		slog.Warn("Cached artifact does not match its completion marker; downloading again",
			logfields.Path(path), slog.Int64("size", info.Size()), slog.Int64("expected", m.Size))
		return marker{}, false
	}
	sum, err := fileDigest(path)
	if err != nil || sum != m.SHA256 {
		slog.Warn("Cached artifact digest does not match its completion marker; downloading again",
			logfields.Path(path), slog.String("sha256", sum), slog.String("expected", m.SHA256))
		return marker{}, false
	}
	return m, true
}

func fileDigest(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- path is built from the cache directory
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// download streams url into a temporary file and renames it onto path once the
// body has been fully written and synced.
func (c *Cache) download(ctx context.Context, url, path string) (marker, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return marker{}, &DownloadError{URL: url, Err: err}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return marker{}, &DownloadError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return marker{}, &DownloadError{URL: url, Status: resp.StatusCode}
	}

	part := path + partSuffix
	f, err := os.Create(part)
	if err != nil {
		return marker{}, &DownloadError{URL: url, Err: err}
	}
	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(part)
	}

	h := sha256.New()
	written, err := io.Copy(io.MultiWriter(f, h), resp.Body)
	if err != nil {
		cleanup()
		return marker{}, &DownloadError{URL: url, Written: written, Expected: resp.ContentLength, Err: err}
	}
	if resp.ContentLength >= 0 && written != resp.ContentLength {
		cleanup()
		return marker{}, &DownloadError{URL: url, Written: written, Expected: resp.ContentLength}
	}
	if written == 0 {
		cleanup()
		return marker{}, &DownloadError{URL: url, Err: fmt.Errorf("empty response body")}
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return marker{}, &DownloadError{URL: url, Written: written, Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(part)
		return marker{}, &DownloadError{URL: url, Written: written, Err: err}
	}
	// Drop a stale marker before the new file becomes visible.
	_ = os.Remove(path + markerSuffix)
	if err := os.Rename(part, path); err != nil {
		_ = os.Remove(part)
		return marker{}, &DownloadError{URL: url, Written: written, Err: err}
	}

	return marker{
		URL:          url,
		Size:         written,
		SHA256:       hex.EncodeToString(h.Sum(nil)),
		DownloadedAt: time.Now().UTC(),
	}, nil
}

func writeMarker(path string, m marker) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path+markerSuffix, data, 0o600)
}

// DownloadError describes a failed or incomplete transfer.
type DownloadError struct {
	URL      string
	Status   int
	Written  int64
	Expected int64
	Err      error
}

func (e *DownloadError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("GET %s: incomplete download (%d of %d bytes)", e.URL, e.Written, e.Expected)
	}
}

func (e *DownloadError) Unwrap() error { return e.Err }
