package offday

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/RoomBookingService/internal/domain"
	"github.com/m04kA/RoomBookingService/pkg/dbmetrics"
	"github.com/m04kA/RoomBookingService/pkg/psqlbuilder"
)

// Repository репозиторий закрытых дней (только чтение)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория закрытых дней
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListInRange закрытые диапазоны, пересекающиеся с [from, to] (даты включительно)
func (r *Repository) ListInRange(ctx context.Context, from, to time.Time) ([]*domain.OffDay, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "start_date", "end_date", "reason").
		From("off_days").
		Where(squirrel.LtOrEq{"start_date": to.Format(domain.DateFormat)}).
		Where(squirrel.GtOrEq{"end_date": from.Format(domain.DateFormat)}).
		OrderBy("start_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListInRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListInRange - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	offDays := make([]*domain.OffDay, 0)
	for rows.Next() {
		var o domain.OffDay
		if err := rows.Scan(&o.ID, &o.StartDate, &o.EndDate, &o.Reason); err != nil {
			return nil, fmt.Errorf("%w: ListInRange - scan off day: %v", ErrScanRow, err)
		}
		offDays = append(offDays, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListInRange - rows iteration: %v", ErrScanRow, err)
	}

	return offDays, nil
}
