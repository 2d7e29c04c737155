package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"sentinel not found", fmt.Errorf("pets: %w", ErrNotFound), http.StatusNotFound, "not_found"},
		{"sentinel duplicate", ErrDuplicate, http.StatusConflict, "duplicate"},
		{"coded conflict", Conflict("duplicate_name_brand", nil), http.StatusConflict, "duplicate_name_brand"},
		{"coded not found", NotFound("session_not_found"), http.StatusNotFound, "session_not_found"},
		{"invalid", Invalid("invalid_payload", "expectedTime or expectedAt required"), http.StatusBadRequest, "invalid_payload"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "db_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, e := Status(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, e.Code)
		})
	}
}
