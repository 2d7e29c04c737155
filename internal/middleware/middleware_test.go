package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"pet-health-log/internal/platform/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAPIKey_DisabledWhenEmpty(t *testing.T) {
	h := APIKey("")(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pets", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAPIKey_OnlyGuardsWrites(t *testing.T) {
	h := APIKey("s3cret")(okHandler())

	cases := []struct {
		method string
		key    string
		want   int
	}{
		{http.MethodGet, "", http.StatusNoContent},
		{http.MethodPost, "", http.StatusUnauthorized},
		{http.MethodPut, "wrong", http.StatusUnauthorized},
		{http.MethodDelete, "s3cret", http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, "/pets", nil)
		if tc.key != "" {
			req.Header.Set(APIKeyHeader, tc.key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, tc.want, rec.Code, "%s key=%q", tc.method, tc.key)
		if tc.want == http.StatusUnauthorized {
			assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
		}
	}
}

func TestAccessLog_PassesThrough(t *testing.T) {
	h := AccessLog(logger.Nop())(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
