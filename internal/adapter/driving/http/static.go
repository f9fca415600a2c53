package httphandler

import (
	"net/http"
	"path"
	"path/filepath"
)

// spaHandler serves files from dir and falls back to dir/index.html for any
// path that does not name a regular file, so client-side routes survive a
// browser refresh.
func spaHandler(dir string) http.Handler {
	root := http.Dir(dir)
	files := http.FileServer(root)
	index := filepath.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)

		if f, err := root.Open(name); err == nil {
			info, statErr := f.Stat()
			_ = f.Close()
			if statErr == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}

		http.ServeFile(w, r, index)
	})
}
