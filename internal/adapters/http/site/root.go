// Package site serves the embedded registration review front end.
package site

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strings"
)

// ErrServe is reported when the embedded assets cannot be served.
var ErrServe = errors.New("site serve failed")

const indexFile = "index.html"

// Register attaches the index document at / and the assets under /static/.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	h := NewRootHandler()
	mux.HandleFunc("/", h.HandleRoot)
	mux.HandleFunc("/static/", h.HandleStatic)
}

// RootHandler serves the embedded files.
type RootHandler struct {
	files  fs.FS
	static http.Handler
}

// NewRootHandler creates a handler over the embedded front end.
func NewRootHandler() *RootHandler {
	files := FS()
	static, err := fs.Sub(files, "static")
	if err != nil {
		panic(errors.Join(ErrServe, err))
	}
	return &RootHandler{
		files:  files,
		static: http.StripPrefix("/static/", http.FileServerFS(static)),
	}
}

// HandleRoot serves index.html for exactly "/"; every other unmatched path is 404.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		http.NotFound(w, r)
		return
	}
	http.ServeFileFS(w, r, h.files, indexFile)
}

// HandleStatic serves GET /static/{path}. Directory listings are not exposed.
func (h *RootHandler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	if (r.Method != http.MethodGet && r.Method != http.MethodHead) || strings.HasSuffix(r.URL.Path, "/") {
		http.NotFound(w, r)
		return
	}
	h.static.ServeHTTP(w, r)
}
