package get_credit_balance

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/m04kA/RoomBookingService/internal/domain"
	clientRepo "github.com/m04kA/RoomBookingService/internal/infra/storage/client"
	"github.com/m04kA/RoomBookingService/internal/service/credits"
)

// Request модель запроса баланса
type Request struct {
	ClientEmail string
	SessionType string // пусто = все типы
}

// UseCase use case для получения баланса предоплаченных сеансов.
// Только для отображения: списание всегда перепроверяет пакеты в своей транзакции
type UseCase struct {
	clientRepo   ClientRepository
	credits      CreditService
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(clientRepo ClientRepository, credits CreditService, logger Logger) *UseCase {
	return &UseCase{
		clientRepo:   clientRepo,
		credits:      credits,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет часы (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute неизвестный email даёт пустой баланс, а не NotFound
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*credits.Balance, error) {
	email := strings.ToLower(strings.TrimSpace(req.ClientEmail))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, fmt.Errorf("%w: email is malformed", ErrInvalidInput)
	}

	var sessionType *domain.SessionType
	if raw := strings.TrimSpace(req.SessionType); raw != "" {
		t, err := domain.ParseSessionType(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		sessionType = &t
	}

	client, err := uc.clientRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, clientRepo.ErrClientNotFound) {
			return &credits.Balance{Packs: []credits.PackBalance{}}, nil
		}
		uc.logger.Error("GetCreditBalance: failed to get client: %v", err)
		return nil, fmt.Errorf("%w: failed to get client: %v", ErrInternal, err)
	}

	balance, err := uc.credits.Balance(ctx, client.ID, sessionType, uc.timeProvider.Now())
	if err != nil {
		uc.logger.Error("GetCreditBalance: client id=%d: %v", client.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.logger.Info("GetCreditBalance: client id=%d has %d credits in %d packs", client.ID, balance.TotalCredits, len(balance.Packs))
	return balance, nil
}
