// Package txmanager управляет транзакциями: транзакция передаётся вниз через context,
// репозитории получают её через dbmetrics.GetExecutor
package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/m04kA/RoomBookingService/pkg/dbmetrics"
)

// serializationFailure SQLSTATE, которым PostgreSQL отменяет конфликтующую SERIALIZABLE транзакцию
const serializationFailure = "40001"

// defaultSerializableAttempts сколько раз повторяется SERIALIZABLE транзакция при 40001
const defaultSerializableAttempts = 3

var (
	// ErrBeginTx ошибка начала транзакции
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommitTx ошибка фиксации транзакции
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")

	// ErrSerialization транзакция не смогла сериализоваться за отведённое число попыток
	ErrSerialization = errors.New("txmanager: could not serialize access")
)

// TxBeginner источник транзакций (*dbmetrics.DB)
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// serializationTracker транзакция, помнящая ошибку 40001 (*dbmetrics.Tx)
type serializationTracker interface {
	SerializationFailure() error
}

// TransactionManager менеджер транзакций
type TransactionManager struct {
	db       TxBeginner
	attempts int
}

// NewTransactionManager создаёт менеджер транзакций
func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{db: db, attempts: defaultSerializableAttempts}
}

// Do выполняет fn в транзакции READ COMMITTED.
// Если в ctx уже есть транзакция, fn выполняется в ней (вложенные вызовы не открывают новую)
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// DoSerializable выполняет fn в транзакции SERIALIZABLE.
// При serialization failure (40001) транзакция повторяется целиком
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < m.attempts; attempt++ {
		err = m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
		if !IsSerializationFailure(err) || dbmetrics.IsInTransaction(ctx) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrSerialization, err)
}

// DoReadOnly выполняет fn в READ ONLY транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: true}, fn)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		if failed, ok := tx.(serializationTracker); ok {
			if cause := failed.SerializationFailure(); cause != nil {
				return cause
			}
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		if IsSerializationFailure(err) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrCommitTx, err)
	}

	return nil
}

// IsSerializationFailure проверяет, что ошибка или одна из обёрнутых имеет код pq 40001
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == serializationFailure
	}
	return errors.Is(err, ErrSerialization)
}
