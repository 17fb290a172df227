package http

import (
	"net/http"
	"os"
)

// NewFileServerHandler serves the client assets from dir. Without a
// directory every path is a 404 so the API stays usable on its own.
func NewFileServerHandler(dir string) http.HandlerFunc {
	if dir == "" {
		return http.NotFound
	}
	return http.FileServer(http.FS(os.DirFS(dir))).ServeHTTP
}
