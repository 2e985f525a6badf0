package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates empty files below root.
func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, nil, 0644))
	}
}

func newTestTree(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root,
		"photos/a.JPG",
		"photos/b.png",
		"photos/notes.txt",
		"photos/trip/c.jpeg",
		"photos/trip/d.gif",
		"misc/e.webp",
		"README.md",
	)
	t.Chdir(root)
}

func TestFind_DirectoryScan(t *testing.T) {
	newTestTree(t)
	s := New(nil)

	got, err := s.Find(context.Background(), Options{Dirs: []string{"photos"}})
	require.NoError(t, err)

	want := []string{"photos/a.JPG", "photos/b.png"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Find() mismatch (-want +got):\n%s", diff)
	}
}

func TestFind_RecursiveDirectoryScan(t *testing.T) {
	newTestTree(t)
	s := New(nil)

	got, err := s.Find(context.Background(), Options{Dirs: []string{"photos"}, Recursive: true})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"photos/a.JPG",
		"photos/b.png",
		"photos/trip/c.jpeg",
		"photos/trip/d.gif",
	}, got)
}

func TestFind_CustomTypes(t *testing.T) {
	newTestTree(t)
	s := New(nil)

	got, err := s.Find(context.Background(), Options{
		Dirs:  []string{"photos"},
		Types: []string{"txt"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"photos/notes.txt"}, got)
}

func TestFind_OrderPrefixAndDedupe(t *testing.T) {
	newTestTree(t)
	s := New(nil)

	got, err := s.Find(context.Background(), Options{
		Patterns: []string{"README.*", "misc/*.webp"},
		Dirs:     []string{"photos", "misc"},
		Files:    []string{"extra.jpg", "photos/b.png"},
		Prefix:   "pfix/",
	})
	require.NoError(t, err)

	want := []string{
		"pfix/README.md",
		"pfix/misc/e.webp",
		"pfix/photos/a.JPG",
		"pfix/photos/b.png",
		"pfix/extra.jpg",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Find() mismatch (-want +got):\n%s", diff)
	}
}

func TestFind_DoublestarPattern(t *testing.T) {
	newTestTree(t)
	s := New(nil)

	got, err := s.Find(context.Background(), Options{Patterns: []string{"photos/**/*.{jpeg,gif}"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"photos/trip/c.jpeg", "photos/trip/d.gif"}, got)
}

func TestFind_OnlyExplicitFiles(t *testing.T) {
	s := New(nil)

	got, err := s.Find(context.Background(), Options{Files: []string{"foobar.jpg"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"foobar.jpg"}, got)
}

func TestFind_MissingDirectory(t *testing.T) {
	newTestTree(t)
	s := New(nil)

	got, err := s.Find(context.Background(), Options{
		Dirs:  []string{"does-not-exist"},
		Files: []string{"foobar.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"foobar.jpg"}, got)
}

func TestFind_InvalidPattern(t *testing.T) {
	s := New(nil)

	_, err := s.Find(context.Background(), Options{Patterns: []string{"photos/[a"}})
	assert.Error(t, err)
}

func TestFind_CancelledContext(t *testing.T) {
	newTestTree(t)
	s := New(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Find(ctx, Options{Dirs: []string{"photos"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFind_Root(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.jpg", "sub/b.png", "sub/c.txt")
	s := New(nil)

	got, err := s.Find(context.Background(), Options{Root: root, Dirs: []string{"."}, Prefix: "/"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a.jpg"}, got)

	got, err = s.Find(context.Background(), Options{Root: root, Dirs: []string{"sub"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/b.png"}, got)

	got, err = s.Find(context.Background(), Options{Root: root, Patterns: []string{"**/*.png"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/b.png"}, got)
}

func TestHTTPPath(t *testing.T) {
	tests := []struct {
		name string
		file string
		want string
	}{
		{"plain", "photos/a.jpg", "photos/a.jpg"},
		{"space", "my photos/a b.jpg", "my%20photos/a%20b.jpg"},
		{"fragment character", "#1.jpg", "%231.jpg"},
		{"decomposed umlaut", "a\u0308.jpg", "%C3%A4.jpg"},
		{"absolute", "/srv/img/a.jpg", "/srv/img/a.jpg"},
		{"url kept", "https://example.com/a%20b.jpg", "https://example.com/a%20b.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPPath(tt.file))
		})
	}
}

func TestMatchesType(t *testing.T) {
	types := []string{"jpg", ".png"}

	assert.True(t, MatchesType("a.jpg", types))
	assert.True(t, MatchesType("dir/A.JPG", types))
	assert.True(t, MatchesType("b.PNG", types))
	assert.False(t, MatchesType("c.gif", types))
	assert.False(t, MatchesType("jpg", types))
	assert.False(t, MatchesType("noext", types))
}

func TestDeduplicate(t *testing.T) {
	got := Deduplicate([]string{"b", "a", "b", "c", "a"})
	if diff := cmp.Diff([]string{"b", "a", "c"}, got); diff != "" {
		t.Errorf("Deduplicate() mismatch (-want +got):\n%s", diff)
	}
}

func TestFind_PatternIgnoresCase(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "IMG.JPG", "b.jpg", "Trip/C.Jpg", "notes.txt")
	t.Chdir(root)
	s := New(nil)

	got, err := s.Find(context.Background(), Options{Patterns: []string{"*.jpg"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"IMG.JPG", "b.jpg"}, got)

	got, err = s.Find(context.Background(), Options{Patterns: []string{"**/*.JPG"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"IMG.JPG", "b.jpg", "Trip/C.Jpg"}, got)

	dirs, err := s.Find(context.Background(), Options{Dirs: []string{"."}, Types: []string{"jpg"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, dirs, []string{"IMG.JPG", "b.jpg"})
}
