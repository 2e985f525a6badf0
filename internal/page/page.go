// Package page assembles the self-contained gallery page.
//
// A page is a template with {{{name}}} placeholders. The header placeholder
// receives the gallery stylesheet, the gallery script, any extra stylesheet
// and script URLs, and the image list script, in that order.
package page

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/a-h/templ"

	kerrors "github.com/kuvia/kuvia/internal/errors"
	"github.com/kuvia/kuvia/internal/imagelist"
	"github.com/kuvia/kuvia/internal/logging"
	"github.com/kuvia/kuvia/web"
)

// Placeholder names understood by the default template.
const (
	PlaceholderHeader = "header"
	PlaceholderTitle  = "title"
)

// DefaultTitle is used when no title is configured.
const DefaultTitle = "Kuvia"

var placeholderRe = regexp.MustCompile(`\{\{\{([^}]+)\}\}\}`)

// Options controls page rendering.
type Options struct {
	Title string
	// TemplatePath overrides the embedded page template.
	TemplatePath string
	// Scripts and Stylesheets are extra URLs included after the gallery assets.
	Scripts     []string
	Stylesheets []string
	// NoMinify keeps the gallery script and stylesheet as written.
	NoMinify bool
	// List is the image source written into the page.
	List imagelist.Source
	// LiveReload adds the live reload client used by kuvia serve.
	LiveReload bool
}

// Renderer renders gallery pages.
type Renderer struct {
	logger   logging.Logger
	minifier *Minifier
}

// NewRenderer creates a page renderer.
func NewRenderer(logger logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Renderer{
		logger:   logger.WithComponent("page"),
		minifier: NewMinifier(),
	}
}

// Render writes the complete page for opts to w.
func (r *Renderer) Render(ctx context.Context, w io.Writer, opts Options) error {
	perf := logging.StartOperation(r.logger, "render_page")

	tmpl, err := r.loadTemplate(ctx, opts.TemplatePath)
	if err != nil {
		perf.EndWithError(ctx, err)
		return err
	}

	header, err := r.header(ctx, opts)
	if err != nil {
		perf.EndWithError(ctx, err)
		return err
	}

	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}

	out, err := Fill(tmpl, map[string]string{
		PlaceholderHeader: header,
		PlaceholderTitle:  templ.EscapeString(title),
	})
	if err != nil {
		perf.EndWithError(ctx, err)
		return err
	}

	if _, err := io.WriteString(w, out); err != nil {
		perf.EndWithError(ctx, err)
		return fmt.Errorf("writing page: %w", err)
	}

	perf.End(ctx, "bytes", len(out), "remote_list", opts.List.IsRemote(), "images", len(opts.List.URLs))
	return nil
}

func (r *Renderer) loadTemplate(ctx context.Context, path string) (string, error) {
	if path == "" {
		return web.Asset(web.TemplateFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", kerrors.NewIOError(kerrors.ErrCodeTemplateRead, "reading page template", err).
			WithContext("path", path)
	}
	tmpl := string(data)

	missing, err := MissingElementIDs(tmpl)
	if err != nil {
		r.logger.Warn(ctx, err, "Could not parse page template", "path", path)
	}
	for _, id := range missing {
		r.logger.Warn(ctx, nil, "Page template lacks gallery element", "path", path, "id", id)
	}
	return tmpl, nil
}

func (r *Renderer) header(ctx context.Context, opts Options) (string, error) {
	css, err := web.Asset(web.StylesheetFile)
	if err != nil {
		return "", err
	}
	js, err := web.Asset(web.ScriptFile)
	if err != nil {
		return "", err
	}
	js = Quarantine(js)

	if !opts.NoMinify {
		if css, err = r.minifier.CSS(css); err != nil {
			return "", err
		}
		if js, err = r.minifier.JS(js); err != nil {
			return "", err
		}
	}

	list, err := imagelist.Render(opts.List)
	if err != nil {
		return "", err
	}

	var liveReload string
	if opts.LiveReload {
		if liveReload, err = web.Asset(web.LiveReloadFile); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	h := Header(HeaderData{
		GalleryCSS:  css,
		GalleryJS:   js,
		Stylesheets: opts.Stylesheets,
		Scripts:     opts.Scripts,
		ListJS:      list,
		LiveReload:  liveReload,
	})
	if err := h.Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("rendering page header: %w", err)
	}
	return buf.String(), nil
}

// Quarantine wraps source so that its top-level bindings stay off window.
func Quarantine(source string) string {
	return "(() => { " + source + " })();"
}

// Fill replaces every {{{name}}} placeholder in tmpl with values[name].
// A placeholder without a value fails the whole page.
func Fill(tmpl string, values map[string]string) (string, error) {
	var missing error
	out := placeholderRe.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := match[3 : len(match)-3]
		v, ok := values[name]
		if !ok {
			if missing == nil {
				missing = kerrors.TemplatePlaceholderMissing(name)
			}
			return match
		}
		return v
	})
	if missing != nil {
		return "", missing
	}
	return out, nil
}
