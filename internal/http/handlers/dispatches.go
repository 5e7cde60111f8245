package handlers

import (
	"net/http"
	"strconv"
)

// DispatchLog exposes the recent dispatch audit log for operators. Returns
// an empty list when no database is configured.
func (a *App) DispatchLog(w http.ResponseWriter, r *http.Request) {
	if a.Dispatches == nil {
		a.json(w, http.StatusOK, map[string]any{"items": []any{}})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := a.Dispatches.Recent(r.Context(), limit)
	if err != nil {
		a.json(w, http.StatusInternalServerError, map[string]string{"error": "failed to load dispatches", "status": "error"})
		return
	}
	items := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		items = append(items, map[string]any{
			"id":            rec.ID,
			"op":            string(rec.Op),
			"provider":      rec.Provider,
			"model":         rec.Model,
			"status":        string(rec.Status),
			"failure_kind":  rec.FailureKind,
			"error_message": rec.ErrorMessage,
			"elapsed_ms":    rec.ElapsedMS,
			"created_at":    rec.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
