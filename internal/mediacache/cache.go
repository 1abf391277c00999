// Package mediacache keeps remote audio and artwork on disk so decoders get a
// seekable local file.
package mediacache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/singleflight"
)

// Cache maps URLs to files under one directory.
type Cache struct {
	dir    string
	client *http.Client
	logger *slog.Logger
	group  singleflight.Group
}

// New creates a cache rooted at dir. A nil client uses http.DefaultClient.
func New(dir string, client *http.Client, logger *slog.Logger) *Cache {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{dir: dir, client: client, logger: logger.With("component", "mediacache")}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// IsRemote reports whether ref is an http(s) URL.
func IsRemote(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// LocalPath returns the file path of a local reference: file:// URLs and
// plain paths.
func LocalPath(ref string) string {
	if after, ok := strings.CutPrefix(ref, "file://"); ok {
		return after
	}
	return ref
}

// Resolve returns a local path for ref. Remote URLs are downloaded once and
// served from disk afterwards; concurrent calls for one URL share a download.
func (c *Cache) Resolve(ctx context.Context, ref string) (string, error) {
	if !IsRemote(ref) {
		return LocalPath(ref), nil
	}

	dst := filepath.Join(c.dir, key(ref))
	if _, err := os.Stat(dst); err == nil {
		c.logger.Debug("cache hit", "url", ref)
		return dst, nil
	}

	v, err, _ := c.group.Do(dst, func() (any, error) {
		return dst, c.fetch(ctx, ref, dst)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Cache) fetch(ctx context.Context, ref, dst string) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return err
	}
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: %s", ref, resp.Status)
	}

	tmp, err := os.CreateTemp(c.dir, filepath.Base(dst)+".*.part")
	if err != nil {
		return err
	}
	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("fetch %s: %w", ref, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	c.logger.Info("cached",
		"url", ref,
		"size", humanize.IBytes(uint64(n)), //nolint:gosec // io.Copy count is non-negative
		"took", time.Since(start).Round(time.Millisecond))
	return nil
}

// Usage returns the total size of cached files.
func (c *Cache) Usage() (int64, error) {
	var total int64
	err := filepath.WalkDir(c.dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	return total, err
}

// UsageString returns Usage formatted for display.
func (c *Cache) UsageString() string {
	n, err := c.Usage()
	if err != nil {
		return "unknown"
	}
	return humanize.IBytes(uint64(n)) //nolint:gosec // sizes are non-negative
}

// key names the cache file of a URL: a hash plus the URL's extension so
// format detection by extension keeps working.
func key(ref string) string {
	sum := sha256.Sum256([]byte(ref))
	name := hex.EncodeToString(sum[:16])
	if u, err := url.Parse(ref); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); ext != "" && len(ext) <= 6 {
			name += ext
		}
	}
	return name
}
