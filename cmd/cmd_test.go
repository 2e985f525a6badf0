package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/kuvia/kuvia/internal/errors"
	"github.com/kuvia/kuvia/internal/gallery"
	"github.com/kuvia/kuvia/internal/version"
)

// execute runs the command tree with args and returns stdout and stderr.
func execute(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return execute(t, context.Background(), args...)
}

// newGallery creates a working directory holding a few images and chdirs
// into it.
func newGallery(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.png", "notes.txt", "sub/c.gif"} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
	}
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestGenerate_Stdout(t *testing.T) {
	newGallery(t)

	out, _, err := run(t, "-d", ".")
	require.NoError(t, err)

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<title>Kuvia</title>")
	assert.Contains(t, out, `window.kuviaimagelist = ["a.jpg","b.png"];`)
}

func TestGenerate_Recursive(t *testing.T) {
	newGallery(t)

	out, _, err := run(t, "-r", "-d", ".", "-t", "gif")
	require.NoError(t, err)
	assert.Contains(t, out, `window.kuviaimagelist = ["sub/c.gif"];`)
}

func TestGenerate_OutputFile(t *testing.T) {
	dir := newGallery(t)

	out, _, err := run(t, "-d", ".", "-o", "gallery.html", "--title", "My <Photos>")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(filepath.Join(dir, "gallery.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<title>My &lt;Photos&gt;</title>")
	assert.Contains(t, string(data), `["a.jpg","b.png"]`)
}

func TestGenerate_FilesPatternsAndPrefix(t *testing.T) {
	newGallery(t)

	out, _, err := run(t, "-e", "**/*.gif", "-p", "/img/", "b.png", "x y.jpg")
	require.NoError(t, err)
	assert.Contains(t, out, `window.kuviaimagelist = ["/img/sub/c.gif","/img/b.png","/img/x%20y.jpg"];`)
}

func TestGenerate_ExtraAssets(t *testing.T) {
	newGallery(t)

	out, _, err := run(t, "-J", "https://example.com/extra.js", "-C", "https://example.com/extra.css", "--no-min")
	require.NoError(t, err)
	assert.Contains(t, out, `src="https://example.com/extra.js"></script>`)
	assert.Contains(t, out, `<link rel="stylesheet" type="text/css" href="https://example.com/extra.css">`)
	assert.Contains(t, out, `window.kuviaimagelist = [];`)
}

func TestGenerate_JSONSource(t *testing.T) {
	newGallery(t)

	out, _, err := run(t, "-j", "https://example.com/list.json")
	require.NoError(t, err)
	assert.Contains(t, out, `window.kuviaimagelist = "https://example.com/list.json";`)
}

func TestGenerate_JSONSourceWithScanInputsWarns(t *testing.T) {
	newGallery(t)

	out, stderr, err := run(t, "-j", "list.json", "-d", ".")
	require.NoError(t, err)
	assert.Contains(t, out, `window.kuviaimagelist = "list.json";`)
	assert.Contains(t, stderr, "Configuration warning")
}

func TestGenerate_ConfigSources(t *testing.T) {
	t.Run("default config file", func(t *testing.T) {
		newGallery(t)
		writeFile(t, ".kuvia.yml", "scan:\n  dirs: [sub]\npage:\n  title: From File\n")

		out, _, err := run(t)
		require.NoError(t, err)
		assert.Contains(t, out, "<title>From File</title>")
		assert.Contains(t, out, `["sub/c.gif"]`)
	})

	t.Run("config file from environment", func(t *testing.T) {
		dir := newGallery(t)
		path := filepath.Join(dir, "custom.yml")
		writeFile(t, path, "page:\n  title: Custom\n")
		t.Setenv(configFileEnv, path)

		out, _, err := run(t)
		require.NoError(t, err)
		assert.Contains(t, out, "<title>Custom</title>")
	})

	t.Run("environment overrides file", func(t *testing.T) {
		newGallery(t)
		writeFile(t, ".kuvia.yml", "page:\n  title: From File\n")
		t.Setenv("KUVIA_PAGE_TITLE", "From Env")

		out, _, err := run(t)
		require.NoError(t, err)
		assert.Contains(t, out, "<title>From Env</title>")
	})

	t.Run("flag overrides environment", func(t *testing.T) {
		newGallery(t)
		t.Setenv("KUVIA_PAGE_TITLE", "From Env")

		out, _, err := run(t, "--title", "From Flag")
		require.NoError(t, err)
		assert.Contains(t, out, "<title>From Flag</title>")
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		newGallery(t)

		_, _, err := run(t, "--config", "missing.yml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config file")
	})
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("invalid type", func(t *testing.T) {
		newGallery(t)

		_, _, err := run(t, "-t", "tar.gz")
		require.Error(t, err)
		var kerr *kerrors.KuviaError
		require.True(t, errors.As(err, &kerr))
		assert.Equal(t, kerrors.ErrCodeConfigInvalid, kerr.Code)
	})

	t.Run("unknown placeholder", func(t *testing.T) {
		newGallery(t)
		writeFile(t, "page.html", "<html>{{{header}}}{{{footer}}}</html>")

		_, _, err := run(t, "--template", "page.html", "-o", "out.html")
		require.Error(t, err)
		assert.True(t, errors.Is(err, kerrors.ErrTemplatePlaceholderMissing))
		assert.NoFileExists(t, "out.html")
	})
}

func TestList(t *testing.T) {
	newGallery(t)

	out, _, err := run(t, "list", "-d", ".")
	require.NoError(t, err)
	assert.Equal(t, "[\n  \"a.jpg\",\n  \"b.png\"\n]\n", out)

	out, _, err = run(t, "list", "--compact", "-p", "https://cdn.example.com/", "a&b.jpg")
	require.NoError(t, err)
	assert.Equal(t, "[\"https://cdn.example.com/a&b.jpg\"]\n", out)

	out, _, err = run(t, "list", "--compact")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestList_JSONSource(t *testing.T) {
	newGallery(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/list.json" {
			http.Error(w, "gone", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`["x.jpg", "https://example.com/y.png"]`))
	}))
	defer srv.Close()

	out, _, err := run(t, "list", "--compact", "-j", srv.URL+"/list.json")
	require.NoError(t, err)
	assert.Equal(t, "[\"x.jpg\",\"https://example.com/y.png\"]\n", out)

	_, _, err = run(t, "list", "-j", srv.URL+"/broken.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, kerrors.ErrRemoteListFetchFailure))
}

func TestVersion(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: ")
	assert.Contains(t, out, "Platform: ")

	out, _, err = run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Short()+"\n", out)

	out, _, err = run(t, "version", "--format", "json")
	require.NoError(t, err)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "go_version")

	out, _, err = run(t, "version", "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "version: ")

	_, _, err = run(t, "version", "--format", "xml")
	assert.Error(t, err)
}

func TestVersion_IgnoresConfiguration(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := run(t, "--config", "missing.yml", "version", "--short")
	assert.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	newGallery(t)
	writeFile(t, ".kuvia.yml", "server:\n  port: 9000\n")

	out, _, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "title: Kuvia")
	assert.Contains(t, out, "port: 9000")
	assert.Contains(t, out, "host: localhost")
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		newGallery(t)

		out, _, err := run(t, "config", "validate")
		require.NoError(t, err)
		assert.Contains(t, out, "Configuration is valid")
	})

	t.Run("warnings only", func(t *testing.T) {
		newGallery(t)
		writeFile(t, ".kuvia.yml", "server:\n  port: 80\n")

		out, _, err := run(t, "config", "validate")
		require.NoError(t, err)
		assert.Contains(t, out, "Config file: ")
		assert.Contains(t, out, "Validation warnings:")
	})

	t.Run("errors", func(t *testing.T) {
		newGallery(t)
		t.Setenv("KUVIA_SERVER_PORT", "70000")
		t.Setenv("KUVIA_LOG_FORMAT", "xml")

		out, _, err := run(t, "config", "validate")
		require.Error(t, err)
		assert.Contains(t, out, "server.port")
		assert.Contains(t, out, "log.format")
	})
}

func TestServe_StopsWhenCancelled(t *testing.T) {
	newGallery(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := execute(t, ctx, "serve", "--port", "0", "--watch")
	assert.NoError(t, err)
}

func TestServe_InvalidConfig(t *testing.T) {
	newGallery(t)

	_, _, err := run(t, "serve", "--host", "local;host")
	assert.Error(t, err)
}

func TestBrowse_SelectionFlags(t *testing.T) {
	urls := []string{"photos/cat.jpg", "photos/my%20cat.jpg", "/img/b%C3%A4r.png"}

	tests := []struct {
		name   string
		args   []string
		prefix string
		want   gallery.Selection
	}{
		{"none", nil, "", gallery.NoSelection()},
		{"start", []string{"--start", "2"}, "", gallery.SelectIndex(2)},
		{"start zero", []string{"--start", "0"}, "", gallery.SelectIndex(0)},
		{"select", []string{"--select", "photos/cat.jpg"}, "", gallery.SelectKey("photos/cat.jpg")},
		{"select escaped url", []string{"--select", "photos/my%20cat.jpg"}, "", gallery.SelectKey("photos/my%20cat.jpg")},
		{"select file path", []string{"--select", "photos/my cat.jpg"}, "", gallery.SelectKey("photos/my%20cat.jpg")},
		{"select with prefix", []string{"--select", "bär.png"}, "/img/", gallery.SelectKey("/img/b%C3%A4r.png")},
		{"select unknown", []string{"--select", "nope.jpg"}, "", gallery.SelectKey("nope.jpg")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newBrowseCmd(&app{})
			require.NoError(t, cmd.ParseFlags(tt.args))
			assert.Equal(t, tt.want, browseSelection(cmd.Flags(), urls, tt.prefix))
		})
	}
}

func TestBrowse_ExclusiveSelectionFlags(t *testing.T) {
	newGallery(t)

	_, _, err := run(t, "browse", "--start", "1", "--select", "a.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestResolveURLs(t *testing.T) {
	urls := []string{"a.jpg", "/root.jpg", "../up.png", "https://other.example/x.jpg"}

	assert.Equal(t, []string{
		"https://example.com/lists/a.jpg",
		"https://example.com/root.jpg",
		"https://example.com/up.png",
		"https://other.example/x.jpg",
	}, resolveURLs("https://example.com/lists/images.json", urls))

	assert.Equal(t, urls, resolveURLs("images.json", urls))
}

func TestReportError(t *testing.T) {
	ctx := context.Background()

	var plain bytes.Buffer
	reportError(ctx, &plain, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", plain.String())

	var typed bytes.Buffer
	reportError(ctx, &typed, kerrors.RemoteListFetchFailure("https://example.com/list.json", errors.New("status 500")))
	assert.Contains(t, typed.String(), "Error occurred")
	assert.Contains(t, typed.String(), kerrors.ErrCodeRemoteListFetchFailure)
}
