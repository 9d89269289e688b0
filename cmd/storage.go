package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/m04kA/RoomBookingService/internal/config"
	auditRepo "github.com/m04kA/RoomBookingService/internal/infra/storage/audit"
	bookingRepo "github.com/m04kA/RoomBookingService/internal/infra/storage/booking"
	clientRepo "github.com/m04kA/RoomBookingService/internal/infra/storage/client"
	discountRepo "github.com/m04kA/RoomBookingService/internal/infra/storage/discount"
	"github.com/m04kA/RoomBookingService/internal/infra/storage/memory"
	offdayRepo "github.com/m04kA/RoomBookingService/internal/infra/storage/offday"
	packRepo "github.com/m04kA/RoomBookingService/internal/infra/storage/pack"
	settingsRepo "github.com/m04kA/RoomBookingService/internal/infra/storage/settings"
	"github.com/m04kA/RoomBookingService/internal/service/availability"
	bookingsService "github.com/m04kA/RoomBookingService/internal/service/bookings"
	"github.com/m04kA/RoomBookingService/internal/service/credits"
	"github.com/m04kA/RoomBookingService/internal/service/discount"
	"github.com/m04kA/RoomBookingService/internal/service/policy"
	confirmBookingUC "github.com/m04kA/RoomBookingService/internal/usecase/confirm_booking"
	createBookingUC "github.com/m04kA/RoomBookingService/internal/usecase/create_booking"
	"github.com/m04kA/RoomBookingService/pkg/dbmetrics"
	"github.com/m04kA/RoomBookingService/pkg/logger"
	"github.com/m04kA/RoomBookingService/pkg/metrics"
	"github.com/m04kA/RoomBookingService/pkg/txmanager"
)

type bookingStore interface {
	createBookingUC.BookingRepository
	confirmBookingUC.BookingRepository
	bookingsService.BookingRepository
	availability.BookingRepository
	discount.BookingCounter
}

type clientStore interface {
	createBookingUC.ClientRepository
}

type discountStore interface {
	discount.DiscountRepository
	createBookingUC.DiscountUsageRepository
	bookingsService.DiscountUsageRepository
}

type txManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// repositories хранилище, выбранное storage.driver
type repositories struct {
	bookings  bookingStore
	packs     credits.PackRepository
	discounts discountStore
	offDays   availability.OffDayRepository
	clients   clientStore
	settings  policy.SettingsRepository
	audit     createBookingUC.AuditRepository
	txManager txManager

	close func()
}

func newMemoryRepositories() *repositories {
	store := memory.NewStore()
	return &repositories{
		bookings:  store.Bookings(),
		packs:     store.Packs(),
		discounts: store.Discounts(),
		offDays:   store.OffDays(),
		clients:   store.Clients(),
		settings:  store.Settings(),
		audit:     store.Audit(),
		txManager: store,
		close:     func() {},
	}
}

func newPostgresRepositories(cfg *config.Config, m *metrics.Metrics, log *logger.Logger) (*repositories, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	stopPoolMetrics := make(chan struct{})
	if m != nil {
		dbmetrics.StartPoolMetricsCollectorWithDefault(db, m, cfg.Database.DBName, stopPoolMetrics)
		log.Info("Database pool metrics collection started")
	}

	// Обёртка без метрик (m == nil) только передаёт запросы дальше
	wrapped := dbmetrics.Wrap(db, m)

	return &repositories{
		bookings:  bookingRepo.NewRepository(wrapped),
		packs:     packRepo.NewRepository(wrapped),
		discounts: discountRepo.NewRepository(wrapped),
		offDays:   offdayRepo.NewRepository(wrapped),
		clients:   clientRepo.NewRepository(wrapped),
		settings:  settingsRepo.NewRepository(wrapped),
		audit:     auditRepo.NewRepository(wrapped),
		txManager: txmanager.NewTransactionManager(wrapped),
		close: func() {
			close(stopPoolMetrics)
			if err := db.Close(); err != nil {
				log.Error("Failed to close database: %v", err)
			}
		},
	}, nil
}
