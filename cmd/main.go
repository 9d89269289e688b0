package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/RoomBookingService/internal/api"
	cancelBookingHandler "github.com/m04kA/RoomBookingService/internal/api/handlers/cancel_booking"
	confirmBookingHandler "github.com/m04kA/RoomBookingService/internal/api/handlers/confirm_booking"
	createBookingHandler "github.com/m04kA/RoomBookingService/internal/api/handlers/create_booking"
	getAvailableDatesHandler "github.com/m04kA/RoomBookingService/internal/api/handlers/get_available_dates"
	getAvailableSlotsHandler "github.com/m04kA/RoomBookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/RoomBookingService/internal/api/handlers/get_booking"
	getCreditBalanceHandler "github.com/m04kA/RoomBookingService/internal/api/handlers/get_credit_balance"
	invalidatePolicyHandler "github.com/m04kA/RoomBookingService/internal/api/handlers/invalidate_policy"
	updateBookingStatusHandler "github.com/m04kA/RoomBookingService/internal/api/handlers/update_booking_status"
	"github.com/m04kA/RoomBookingService/internal/config"
	"github.com/m04kA/RoomBookingService/internal/infra/ratelimit"
	"github.com/m04kA/RoomBookingService/internal/integrations/notifier"
	"github.com/m04kA/RoomBookingService/internal/service/availability"
	bookingsService "github.com/m04kA/RoomBookingService/internal/service/bookings"
	"github.com/m04kA/RoomBookingService/internal/service/credits"
	"github.com/m04kA/RoomBookingService/internal/service/discount"
	"github.com/m04kA/RoomBookingService/internal/service/policy"
	confirmBookingUC "github.com/m04kA/RoomBookingService/internal/usecase/confirm_booking"
	createBookingUC "github.com/m04kA/RoomBookingService/internal/usecase/create_booking"
	getAvailableDatesUC "github.com/m04kA/RoomBookingService/internal/usecase/get_available_dates"
	getAvailableSlotsUC "github.com/m04kA/RoomBookingService/internal/usecase/get_available_slots"
	getCreditBalanceUC "github.com/m04kA/RoomBookingService/internal/usecase/get_credit_balance"
	"github.com/m04kA/RoomBookingService/pkg/logger"
	"github.com/m04kA/RoomBookingService/pkg/metrics"
)

func main() {
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting RoomBookingService...")
	log.Info("Configuration loaded from %s", configPath)

	// Правила календаря из конфигурации (уже провалидированы в config.Load)
	defaults, err := cfg.Policy.ToDomain()
	if err != nil {
		log.Fatal("Invalid policy configuration: %v", err)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилище
	var repos *repositories
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		repos = newMemoryRepositories()
		log.Warn("Using in-memory storage: data is lost on restart")
	default:
		repos, err = newPostgresRepositories(cfg, metricsCollector, log)
		if err != nil {
			log.Fatal("Failed to initialize storage: %v", err)
		}
	}
	defer repos.close()

	// Ограничение попыток бронирования
	var (
		limiter createBookingUC.RateLimiter = ratelimit.Noop{}
		limits  createBookingUC.Limits
	)
	if cfg.RateLimit.Enabled {
		window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
		limits = createBookingUC.Limits{
			PerIP:          ratelimit.Rule{Limit: cfg.RateLimit.IPLimit, Window: window},
			PerBeneficiary: ratelimit.Rule{Limit: cfg.RateLimit.BeneficiaryLimit, Window: window},
		}

		if cfg.Redis.Enabled {
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer rdb.Close()

			pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := rdb.Ping(pingCtx).Err(); err != nil {
				log.Warn("Redis is not reachable (%s), limiter will fail open until it recovers: %v", cfg.Redis.Addr, err)
			}
			cancel()

			limiter = ratelimit.NewRedisLimiter(rdb, "booking:ratelimit:")
			log.Info("Rate limiting via Redis at %s", cfg.Redis.Addr)
		} else {
			limiter = ratelimit.NewLocalLimiter()
			log.Info("Rate limiting in process memory")
		}
	}

	// Каналы уведомлений
	var senders []notifier.Sender
	if cfg.RabbitMQ.Enabled {
		publisher, err := notifier.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
		senders = append(senders, publisher)
		log.Info("Notifications published to RabbitMQ exchange %s", cfg.RabbitMQ.Exchange)
	}
	if cfg.Webhook.URL != "" {
		senders = append(senders, notifier.NewWebhookClient(
			cfg.Webhook.URL,
			time.Duration(cfg.Webhook.Timeout)*time.Second,
			log,
		))
		log.Info("Notifications sent to webhook %s (timeout=%ds)", cfg.Webhook.URL, cfg.Webhook.Timeout)
	}
	dispatcher := notifier.NewDispatcher(log, senders...)

	// Инициализируем сервисы
	policyProvider := policy.NewProvider(
		defaults,
		repos.settings,
		time.Duration(cfg.Policy.CacheTTLSeconds)*time.Second,
		log,
	)
	availabilitySvc := availability.NewService(repos.bookings, repos.offDays, log)
	ledger := credits.NewService(repos.packs, repos.txManager, metricsCollector, log)
	resolver := discount.NewResolver(repos.discounts, repos.bookings, ledger, log)
	bookingSvc := bookingsService.NewService(
		repos.bookings,
		repos.discounts,
		ledger,
		repos.audit,
		repos.txManager,
		dispatcher,
		metricsCollector,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(createBookingUC.Dependencies{
		Policy:       policyProvider,
		Availability: availabilitySvc,
		Clients:      repos.clients,
		Bookings:     repos.bookings,
		Resolver:     resolver,
		Credits:      ledger,
		Discounts:    repos.discounts,
		Audit:        repos.audit,
		Limiter:      limiter,
		Notifier:     dispatcher,
		Metrics:      metricsCollector,
		TxManager:    repos.txManager,
		Logger:       log,
	}, limits)
	confirmBookingUseCase := confirmBookingUC.NewUseCase(
		repos.bookings,
		availabilitySvc,
		repos.audit,
		repos.txManager,
		dispatcher,
		metricsCollector,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(policyProvider, availabilitySvc, log)
	getAvailableDatesUseCase := getAvailableDatesUC.NewUseCase(policyProvider, availabilitySvc, log)
	getCreditBalanceUseCase := getCreditBalanceUC.NewUseCase(repos.clients, ledger, log)

	// Инициализируем handlers
	loc := defaults.Location
	router := api.NewRouter(api.Handlers{
		AvailableDates:      getAvailableDatesHandler.NewHandler(getAvailableDatesUseCase, log).Handle,
		AvailableSlots:      getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, loc, log).Handle,
		CreateBooking:       createBookingHandler.NewHandler(createBookingUseCase, loc, log).Handle,
		ConfirmBooking:      confirmBookingHandler.NewHandler(confirmBookingUseCase, loc, log).Handle,
		CancelBooking:       cancelBookingHandler.NewHandler(bookingSvc, loc, log).Handle,
		GetBooking:          getBookingHandler.NewHandler(bookingSvc, loc, log).Handle,
		CreditBalance:       getCreditBalanceHandler.NewHandler(getCreditBalanceUseCase, log).Handle,
		UpdateBookingStatus: updateBookingStatusHandler.NewHandler(bookingSvc, loc, log).Handle,
		InvalidatePolicy:    invalidatePolicyHandler.NewHandler(policyProvider, log).Handle,
	}, api.RouterConfig{
		AdminToken:  cfg.Admin.Token,
		Metrics:     metricsCollector,
		MetricsPath: cfg.Metrics.Path,
	})
	if cfg.Admin.Token == "" {
		log.Warn("admin.token is empty: admin routes are disabled")
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
