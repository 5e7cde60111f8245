package handlers

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
)

// ServeAsset serves a stored image by its storage key. Keys are sanitized by
// the file store so traversal outside the storage root is rejected.
func (a *App) ServeAsset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	path, err := a.Store.Path(key)
	if err != nil {
		a.badRequest(w, "invalid asset key")
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		a.json(w, http.StatusNotFound, map[string]string{"error": "asset not found", "status": "error"})
		return
	}
	http.ServeFile(w, r, path)
}
