package proxy

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Static serves files from dir and answers every other GET with dir/index.html
// so client-side routes resolve.
func Static(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)
		if fi, err := os.Stat(filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(name, "/")))); err == nil && (!fi.IsDir() || name == "/") {
			files.ServeHTTP(w, r)
			return
		}
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
	})
}
