package get_credit_balance

import (
	"context"

	"github.com/m04kA/RoomBookingService/internal/service/credits"
	getCreditBalance "github.com/m04kA/RoomBookingService/internal/usecase/get_credit_balance"
)

type GetCreditBalanceUseCase interface {
	Execute(ctx context.Context, req *getCreditBalance.Request) (*credits.Balance, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
