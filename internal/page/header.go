package page

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// HeaderData is the content of the page header.
type HeaderData struct {
	GalleryCSS  string
	GalleryJS   string
	Stylesheets []string
	Scripts     []string
	ListJS      string
	LiveReload  string
}

// Header renders the elements that go into the header placeholder, one per
// line. Inline style and script content is trusted; URLs are escaped.
func Header(d HeaderData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		parts := []templ.Component{
			inlineStyle(d.GalleryCSS),
			inlineScript(d.GalleryJS),
		}
		for _, href := range d.Stylesheets {
			parts = append(parts, stylesheetLink(href))
		}
		for _, src := range d.Scripts {
			parts = append(parts, externalScript(src))
		}
		if d.ListJS != "" {
			parts = append(parts, inlineScript(d.ListJS))
		}
		if d.LiveReload != "" {
			parts = append(parts, inlineScript(d.LiveReload))
		}

		for i, part := range parts {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			if err := part.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

func inlineStyle(css string) templ.Component {
	return rawElement("<style>", css, "</style>")
}

func inlineScript(js string) templ.Component {
	return rawElement(`<script type="application/javascript">`, js, "</script>")
}

func stylesheetLink(href string) templ.Component {
	return rawElement(`<link rel="stylesheet" type="text/css" href="`+templ.EscapeString(href)+`">`, "", "")
}

func externalScript(src string) templ.Component {
	return rawElement(`<script type="application/javascript" src="`+templ.EscapeString(src)+`">`, "", "</script>")
}

// rawElement writes openTag, body and closeTag unchanged. A closing tag
// inside an inline body would end the element early, so it is broken up.
func rawElement(openTag, body, closeTag string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		content := body
		if closeTag != "" && content != "" {
			content = strings.ReplaceAll(content, closeTag, `<\/`+closeTag[2:])
		}
		_, err := io.WriteString(w, openTag+content+closeTag)
		return err
	})
}
