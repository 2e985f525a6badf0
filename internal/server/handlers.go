package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	kerrors "github.com/kuvia/kuvia/internal/errors"
	"github.com/kuvia/kuvia/internal/imagelist"
	"github.com/kuvia/kuvia/internal/page"
	"github.com/kuvia/kuvia/internal/scanner"
	"github.com/kuvia/kuvia/internal/version"
)

// handleIndex renders the gallery page. The page loads its images from the
// list endpoint, forwarding the dir query parameter.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	listURL := ImageListPath
	if dir := r.URL.Query().Get("dir"); dir != "" {
		if _, err := s.resolveDir(dir); err != nil {
			s.writeError(w, r, err)
			return
		}
		listURL += "?" + url.Values{"dir": {dir}}.Encode()
	}

	opts := page.Options{
		Title:        s.config.Page.Title,
		TemplatePath: s.config.Page.Template,
		Scripts:      s.config.Page.Scripts,
		Stylesheets:  s.config.Page.Stylesheets,
		NoMinify:     s.config.Page.NoMinify,
		List:         imagelist.Source{JSONURL: listURL},
		LiveReload:   s.config.Server.Watch,
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(r.Context(), &buf, opts); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}

// handleImageList answers with the JSON array of image URLs found in the
// directory named by the dir query parameter, relative to the served root.
func (s *Server) handleImageList(w http.ResponseWriter, r *http.Request) {
	dir, err := s.resolveDir(r.URL.Query().Get("dir"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	info, err := os.Stat(filepath.Join(s.config.Server.Root, dir))
	if err != nil || !info.IsDir() {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: "directory not found: " + filepath.ToSlash(dir),
			Code:  "NOT_FOUND",
		})
		return
	}

	urls, err := s.scanner.Find(r.Context(), scanner.Options{
		Root:      s.config.Server.Root,
		Dirs:      []string{dir},
		Types:     s.config.Scan.Types,
		Recursive: s.config.Scan.Recursive,
		Prefix:    "/",
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if urls == nil {
		urls = []string{}
	}

	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, http.StatusOK, urls)
}

// handleImage serves image files below the root. Anything that is not an
// image of a configured type is not found.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if !filepath.IsLocal(filepath.FromSlash(name)) || !scanner.MatchesType(name, s.config.Scan.Types) {
		http.NotFound(w, r)
		return
	}

	http.ServeFileFS(w, r, os.DirFS(s.config.Server.Root), name)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   version.Short(),
		"root":      s.config.Server.Root,
		"watch":     s.config.Server.Watch,
		"clients":   s.hub.Clients(),
	})
}

// resolveDir turns the dir query parameter into a path relative to the
// served root. Paths that would leave the root are rejected.
func (s *Server) resolveDir(dir string) (string, error) {
	if dir == "" {
		return ".", nil
	}
	rel := filepath.FromSlash(dir)
	if !filepath.IsLocal(rel) {
		return "", kerrors.PathOutsideRoot(dir)
	}
	return filepath.Clean(rel), nil
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps err to a status code and a JSON body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case kerrors.IsSecurityError(err):
		status = http.StatusForbidden
		s.logger.Warn(r.Context(), err, "Rejected path outside root", "path", r.URL.RawQuery)
	default:
		s.logger.Error(r.Context(), err, "Request failed", "path", r.URL.Path)
	}

	resp := errorResponse{Error: err.Error()}
	var kerr *kerrors.KuviaError
	if errors.As(err, &kerr) {
		resp.Error = kerr.Message
		resp.Code = kerr.Code
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
