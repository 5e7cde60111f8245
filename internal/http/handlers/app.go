package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"server/internal/adapter/repo"
	"server/internal/domain"
	"server/internal/gateway"
	"server/internal/infra"
	"server/internal/storage"
)

// App is the handler container. Dispatches is nil when no database is
// configured; everything else is required.
type App struct {
	Config     *infra.Config
	Logger     infra.Logger
	Gateway    *gateway.Dispatcher
	Store      *storage.FileStore
	Dispatches *repo.DispatchRepo
}

func NewApp(cfg *infra.Config, logger infra.Logger, dispatcher *gateway.Dispatcher, store *storage.FileStore, dispatches *repo.DispatchRepo) *App {
	return &App{
		Config:     cfg,
		Logger:     logger,
		Gateway:    dispatcher,
		Store:      store,
		Dispatches: dispatches,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// recordDispatch audits the outcome off the request path. It never blocks or
// fails the response.
func (a *App) recordDispatch(op domain.DispatchOp, res gateway.Result, elapsed time.Duration) {
	if a.Dispatches == nil {
		return
	}
	rec := domain.DispatchRecord{
		Op:        op,
		Provider:  res.Provider,
		Model:     res.Model,
		Status:    domain.DispatchStatusSucceeded,
		ElapsedMS: elapsed.Milliseconds(),
	}
	if !res.Ok() {
		rec.Status = domain.DispatchStatusFailed
		rec.FailureKind = string(res.Failure.Kind)
		rec.ErrorMessage = res.Failure.Message
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Dispatches.Record(ctx, rec); err != nil {
			a.Logger.Warn().Err(err).Msg("handlers: failed to record dispatch")
		}
	}()
}
