package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/RoomBookingService/internal/domain"
	"github.com/m04kA/RoomBookingService/pkg/dbmetrics"
	"github.com/m04kA/RoomBookingService/pkg/psqlbuilder"
)

// Repository репозиторий клиентов и участников сеансов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория клиентов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByEmail ищет клиента по email без учёта регистра
func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.Client, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "email", "name", "class", "active", "created_at").
		From("clients").
		Where(squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByEmail - build select query: %v", ErrBuildQuery, err)
	}

	var c domain.Client
	err = executor.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.Email, &c.Name, &c.Class, &c.Active, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByEmail - scan client: %v", ErrScanRow, err)
	}

	return &c, nil
}

// Create создает клиента. Email хранится в нижнем регистре
func (r *Repository) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	c.Email = strings.ToLower(strings.TrimSpace(c.Email))

	query, args, err := psqlbuilder.Insert("clients").
		Columns("email", "name", "class", "active").
		Values(c.Email, c.Name, c.Class, c.Active).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrClientExists
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return c, nil
}

// GetPersonByName ищет участника аккаунта по имени без учёта регистра
func (r *Repository) GetPersonByName(ctx context.Context, clientID int64, name string) (*domain.Person, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "client_id", "name", "created_at").
		From("persons").
		Where(squirrel.Eq{"client_id": clientID}).
		Where(squirrel.Expr("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetPersonByName - build select query: %v", ErrBuildQuery, err)
	}

	var p domain.Person
	err = executor.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.ClientID, &p.Name, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrPersonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetPersonByName - scan person: %v", ErrScanRow, err)
	}

	return &p, nil
}

// CreatePerson создает участника сеанса
func (r *Repository) CreatePerson(ctx context.Context, p *domain.Person) (*domain.Person, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("persons").
		Columns("client_id", "name").
		Values(p.ClientID, strings.TrimSpace(p.Name)).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreatePerson - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: CreatePerson - execute insert: %v", ErrExecQuery, err)
	}

	return p, nil
}
