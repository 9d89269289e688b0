package invalidate_policy

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/RoomBookingService/pkg/logger"
)

type countingCache struct{ calls int }

func (c *countingCache) Invalidate() { c.calls++ }

func TestHandler_Invalidates(t *testing.T) {
	cache := &countingCache{}
	rec := httptest.NewRecorder()

	NewHandler(cache, logger.NewNop()).Handle(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/policy/invalidate", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, cache.calls)
	assert.Empty(t, rec.Body.String())
}
