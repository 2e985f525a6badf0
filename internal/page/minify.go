package page

import (
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

const (
	mediaCSS = "text/css"
	mediaJS  = "application/javascript"
)

// Minifier shrinks the inline gallery assets.
type Minifier struct {
	m *minify.M
}

// NewMinifier creates a minifier for CSS and JavaScript.
func NewMinifier() *Minifier {
	m := minify.New()
	m.AddFunc(mediaCSS, css.Minify)
	m.AddFunc(mediaJS, js.Minify)
	return &Minifier{m: m}
}

// CSS minifies a stylesheet.
func (mf *Minifier) CSS(source string) (string, error) {
	out, err := mf.m.String(mediaCSS, source)
	if err != nil {
		return "", fmt.Errorf("minifying stylesheet: %w", err)
	}
	return out, nil
}

// JS minifies a script.
func (mf *Minifier) JS(source string) (string, error) {
	out, err := mf.m.String(mediaJS, source)
	if err != nil {
		return "", fmt.Errorf("minifying script: %w", err)
	}
	return out, nil
}
