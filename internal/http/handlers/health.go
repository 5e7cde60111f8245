package handlers

import (
	"net/http"
)

// Health is a liveness probe. It deliberately checks nothing downstream:
// provider availability is per-dispatch state, not service health.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
