// Package scanner discovers image files for a gallery.
//
// Files come from three sources, in this order: glob patterns, directory
// scans filtered by file type, and files named explicitly. Every result is
// converted to an HTTP path, optionally prefixed, and deduplicated so that
// the first occurrence wins. Patterns and directories are globbed
// concurrently; the merged result keeps input order.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/kuvia/kuvia/internal/logging"
)

// DefaultTypes are the file extensions scanned when no types are given.
var DefaultTypes = []string{"jpg", "jpeg", "png", "gif", "webp"}

// Options selects the files to find.
type Options struct {
	// Files are always included, after the scanned files.
	Files []string
	// Patterns are doublestar glob patterns such as "photos/**/*.jpg".
	Patterns []string
	// Dirs are directories scanned for files matching Types.
	Dirs []string
	// Types are file extensions without the dot. Empty means DefaultTypes.
	Types []string
	// Recursive descends into subdirectories of Dirs.
	Recursive bool
	// Prefix is prepended verbatim to every HTTP path.
	Prefix string
	// Root, when set, is the directory Dirs and Patterns are resolved
	// against. Results stay relative to it.
	Root string
}

// Scanner finds image files on the local filesystem.
type Scanner struct {
	logger  logging.Logger
	workers int
}

// New creates a scanner. A nil logger discards log output.
func New(logger logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}

	return &Scanner{
		logger:  logger.WithComponent("scanner"),
		workers: workers,
	}
}

// globJob is one pattern or directory to expand.
type globJob struct {
	pattern string
	dir     string
}

// Find returns the HTTP paths of all files selected by opts.
func (s *Scanner) Find(ctx context.Context, opts Options) ([]string, error) {
	types := opts.Types
	if len(types) == 0 {
		types = DefaultTypes
	}

	jobs := make([]globJob, 0, len(opts.Patterns)+len(opts.Dirs))
	for _, p := range opts.Patterns {
		jobs = append(jobs, globJob{pattern: p})
	}
	for _, d := range opts.Dirs {
		jobs = append(jobs, globJob{dir: d})
	}

	// Each job writes only its own slot, so no locking is needed.
	results := make([][]string, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			var (
				files []string
				err   error
			)
			if job.dir != "" {
				files, err = s.scanDir(gctx, opts.Root, job.dir, types, opts.Recursive)
			} else {
				files, err = s.glob(opts.Root, job.pattern)
			}
			if err != nil {
				return err
			}
			results[i] = files
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []string
	for _, files := range results {
		all = append(all, files...)
	}
	all = append(all, opts.Files...)

	paths := make([]string, 0, len(all))
	for _, f := range all {
		paths = append(paths, opts.Prefix+HTTPPath(f))
	}
	paths = Deduplicate(paths)

	s.logger.Debug(ctx, "Scan complete",
		"patterns", len(opts.Patterns),
		"dirs", len(opts.Dirs),
		"files", len(paths))

	return paths, nil
}

// glob expands pattern below root. Matching is case-insensitive, so
// "*.jpg" also finds IMG.JPG; the static directory prefix of the pattern is
// used as is.
func (s *Scanner) glob(root, pattern string) ([]string, error) {
	if !doublestar.ValidatePathPattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))
	dir := filepath.FromSlash(base)
	if root != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	rest = strings.ToLower(rest)

	var matches []string
	err := doublestar.GlobWalk(os.DirFS(dir), "**", func(p string, _ fs.DirEntry) error {
		ok, err := doublestar.Match(rest, strings.ToLower(p))
		if err != nil || !ok {
			return err
		}
		matches = append(matches, filepath.FromSlash(path.Join(base, p)))
		return nil
	}, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		s.logger.Debug(context.Background(), "Pattern matched no files", "pattern", pattern)
	}
	return matches, nil
}

// scanDir lists the files in dir whose extension is one of types. Matching
// is case-insensitive. A missing directory yields no files.
func (s *Scanner) scanDir(ctx context.Context, root, dir string, types []string, recursive bool) ([]string, error) {
	fsDir := dir
	if root != "" {
		fsDir = filepath.Join(root, dir)
	}

	info, err := os.Stat(fsDir)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn(ctx, err, "Directory does not exist", "dir", dir)
			return nil, nil
		}
		return nil, fmt.Errorf("scanning directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanning directory %s: not a directory", dir)
	}

	pattern := "*"
	if recursive {
		pattern = "**/*"
	}

	var files []string
	err = doublestar.GlobWalk(os.DirFS(fsDir), pattern, func(p string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !MatchesType(p, types) {
			return nil
		}
		files = append(files, filepath.Join(dir, filepath.FromSlash(p)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning directory %s: %w", dir, err)
	}
	return files, nil
}

// MatchesType reports whether name has one of the given extensions,
// ignoring case.
func MatchesType(name string, types []string) bool {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	if ext == "" {
		return false
	}
	for _, t := range types {
		if strings.EqualFold(ext, strings.TrimPrefix(t, ".")) {
			return true
		}
	}
	return false
}

// HTTPPath converts a file path to a URL path: separators become slashes,
// names are normalized to NFC and each segment is percent-escaped.
func HTTPPath(file string) string {
	slashed := filepath.ToSlash(file)
	if isURL(slashed) {
		return slashed
	}

	segments := strings.Split(norm.NFC.String(slashed), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// isURL reports whether s already has a scheme, e.g. an explicit
// https:// file argument, which must be left untouched.
func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// Deduplicate removes repeated values, keeping the first occurrence.
func Deduplicate(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
