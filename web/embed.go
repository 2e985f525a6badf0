// Package web exposes the embedded browser runtime of the gallery page:
// the gallery script, its stylesheet and the default page template.
package web

import (
	"embed"
	"fmt"
	"io/fs"
)

// FS is the embedded static directory tree.
//
//go:embed static
var FS embed.FS

// Asset names below static/.
const (
	ScriptFile     = "kuvia.js"
	StylesheetFile = "style.css"
	TemplateFile   = "page.html"
	LiveReloadFile = "livereload.js"
)

// Static returns the static directory as its own filesystem root.
func Static() fs.FS {
	sub, err := fs.Sub(FS, "static")
	if err != nil {
		// static is compiled in; a failure here is a build defect.
		panic(err)
	}
	return sub
}

// Asset reads one embedded file.
func Asset(name string) (string, error) {
	data, err := fs.ReadFile(Static(), name)
	if err != nil {
		return "", fmt.Errorf("reading embedded asset %s: %w", name, err)
	}
	return string(data), nil
}
