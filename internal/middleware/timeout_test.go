package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTimeout_SlowHandler: обработчик дожидается дедлайна и пишет после него.
// Клиент получает 504, опоздавший ответ не просачивается, и две горутины не
// пишут в один ResponseWriter (тест гоняется под -race).
func TestTimeout_SlowHandler(t *testing.T) {
	handler := Timeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		w.Header().Set("X-Late", "yes")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"late":"reply"}`))
	}))

	for i := 0; i < 200; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/tasks/wedding/any", nil)

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusGatewayTimeout, rec.Code)
		assert.NotContains(t, rec.Body.String(), "late")
		assert.Empty(t, rec.Header().Get("X-Late"))
		assert.Contains(t, rec.Body.String(), "request timeout")
	}
}

// TestTimeout_FastHandler: уложившийся ответ переносится целиком -
// статус, заголовки, тело
func TestTimeout_FastHandler(t *testing.T) {
	handler := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tasks/create", nil)

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

// TestTimeout_FastHandlerNoExplicitStatus: без явного WriteHeader статус 200
func TestTimeout_FastHandlerNoExplicitStatus(t *testing.T) {
	handler := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
