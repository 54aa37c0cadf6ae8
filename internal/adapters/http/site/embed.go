package site

import (
	"embed"
	"io/fs"
)

//go:embed web
var webFS embed.FS

// FS returns the embedded front end rooted at its index document.
func FS() fs.FS {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		// Only possible if the embed directive and the path disagree.
		panic(err)
	}
	return sub
}
