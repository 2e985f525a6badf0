package tui

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	_ "golang.org/x/image/webp"
)

// maxImageBytes bounds a single image download or file read.
const maxImageBytes = 64 << 20

// Loader fetches and decodes an image.
type Loader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, src string) (image.Image, error)

func (f LoaderFunc) Load(ctx context.Context, src string) (image.Image, error) {
	return f(ctx, src)
}

// SourceLoader loads images named by gallery URLs: absolute http(s) URLs
// are downloaded, anything else is a percent-escaped path below BaseDir.
type SourceLoader struct {
	Client  *http.Client
	BaseDir string
}

// NewSourceLoader creates a loader for paths relative to baseDir.
func NewSourceLoader(client *http.Client, baseDir string) *SourceLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &SourceLoader{Client: client, BaseDir: baseDir}
}

func (l *SourceLoader) Load(ctx context.Context, src string) (image.Image, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing image URL %s: %w", src, err)
	}

	switch u.Scheme {
	case "http", "https":
		return l.fetch(ctx, src)
	case "", "file":
		p := u.Path
		if u.Scheme == "" && !filepath.IsAbs(filepath.FromSlash(p)) {
			p = filepath.Join(l.BaseDir, filepath.FromSlash(p))
		}
		return l.open(p)
	default:
		return nil, fmt.Errorf("unsupported image URL scheme %q", u.Scheme)
	}
}

func (l *SourceLoader) fetch(ctx context.Context, src string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", src, resp.Status)
	}
	return decode(resp.Body)
}

func (l *SourceLoader) open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decode(f)
}

func decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(io.LimitReader(r, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}
