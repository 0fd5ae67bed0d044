package handler

import (
	"io/fs"
	"net/http"
)

// StaticHandler serves the embedded stylesheet and script. fsys is rooted at
// the asset directory.
func StaticHandler(fsys fs.FS, prefix string) http.Handler {
	files := http.StripPrefix(prefix, http.FileServer(http.FS(fsys)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}
