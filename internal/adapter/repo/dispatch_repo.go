package repo

import (
	"context"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// DispatchRepo records gateway dispatch outcomes in PostgreSQL.
type DispatchRepo struct {
	sql infra.SQLExecutor
}

func NewDispatchRepo(sql infra.SQLExecutor) *DispatchRepo {
	return &DispatchRepo{sql: sql}
}

// Record inserts one dispatch record, assigning an ID when absent.
func (r *DispatchRepo) Record(ctx context.Context, rec domain.DispatchRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertDispatch,
		rec.ID,
		string(rec.Op),
		rec.Provider,
		rec.Model,
		string(rec.Status),
		rec.FailureKind,
		rec.ErrorMessage,
		rec.ElapsedMS,
	)
	return err
}

// Recent returns the latest dispatch records, newest first.
func (r *DispatchRepo) Recent(ctx context.Context, limit int) ([]domain.DispatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.sql.Query(ctx, sqlinline.QRecentDispatches, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.DispatchRecord
	for rows.Next() {
		var rec domain.DispatchRecord
		if err := rows.Scan(&rec.ID, &rec.Op, &rec.Provider, &rec.Model, &rec.Status,
			&rec.FailureKind, &rec.ErrorMessage, &rec.ElapsedMS, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
