package get_credit_balance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RoomBookingService/internal/service/credits"
	getCreditBalance "github.com/m04kA/RoomBookingService/internal/usecase/get_credit_balance"
	"github.com/m04kA/RoomBookingService/pkg/logger"
)

type fakeUseCase struct {
	got     *getCreditBalance.Request
	balance *credits.Balance
	err     error
}

func (f *fakeUseCase) Execute(_ context.Context, req *getCreditBalance.Request) (*credits.Balance, error) {
	f.got = req
	return f.balance, f.err
}

func serve(uc *fakeUseCase, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	NewHandler(uc, logger.NewNop()).Handle(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandler_Balance(t *testing.T) {
	purchased := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	uc := &fakeUseCase{balance: &credits.Balance{
		TotalCredits: 3,
		Packs: []credits.PackBalance{
			{ID: 1, PackType: "pack_5", SessionType: "any", Remaining: 3, Total: 5, PurchasedAt: purchased},
		},
	}}

	rec := serve(uc, "/api/v1/credits?email=a@example.com&sessionType=regular")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@example.com", uc.got.ClientEmail)
	assert.Equal(t, "regular", uc.got.SessionType)

	var resp CreditBalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.TotalCredits)
	require.Len(t, resp.Packs, 1)
	assert.Equal(t, 3, resp.Packs[0].Remaining)
	assert.Nil(t, resp.Packs[0].ExpiresAt)
}

func TestHandler_EmptyPacksIsArray(t *testing.T) {
	rec := serve(&fakeUseCase{balance: &credits.Balance{Packs: []credits.PackBalance{}}}, "/api/v1/credits?email=new@example.com")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"packs":[]`)
}

func TestHandler_Errors(t *testing.T) {
	uc := &fakeUseCase{}
	assert.Equal(t, http.StatusBadRequest, serve(uc, "/api/v1/credits").Code)
	assert.Nil(t, uc.got)

	assert.Equal(t, http.StatusBadRequest, serve(&fakeUseCase{err: getCreditBalance.ErrInvalidInput}, "/api/v1/credits?email=bad").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(&fakeUseCase{err: getCreditBalance.ErrInternal}, "/api/v1/credits?email=a@example.com").Code)
}
