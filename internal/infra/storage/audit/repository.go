package audit

import (
	"context"
	"fmt"

	"github.com/m04kA/RoomBookingService/internal/domain"
	"github.com/m04kA/RoomBookingService/pkg/dbmetrics"
	"github.com/m04kA/RoomBookingService/pkg/psqlbuilder"
)

// Repository журнал аудита (только добавление)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр журнала аудита
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create добавляет запись. Внутри транзакции пишется вместе с изменением
func (r *Repository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("audit_log").
		Columns("actor", "action", "entity", "entity_id", "before", "after", "created_at").
		Values(entry.Actor, entry.Action, entry.Entity, entry.EntityID, nullJSON(entry.Before), nullJSON(entry.After), entry.CreatedAt).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&entry.ID); err != nil {
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

func nullJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
