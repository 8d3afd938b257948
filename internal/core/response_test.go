// AngelaMos | 2026
// response_test.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSONError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", NotFoundError("user"), http.StatusNotFound, "NOT_FOUND"},
		{"forbidden", ForbiddenError("Access denied"), http.StatusForbidden, "FORBIDDEN"},
		{"expired", TokenExpiredError(), http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"invalid", TokenInvalidError(), http.StatusUnauthorized, "TOKEN_INVALID"},
		{"unavailable", UnavailableError("down"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"wrapped app error", fmt.Errorf("handler: %w", BadRequestError("bad")), http.StatusBadRequest, "BAD_REQUEST"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			JSONError(rec, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			body := decodeError(t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, tc.wantCode, body.Error.Code)
		})
	}
}

func TestInternalServerErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	InternalServerError(rec, errors.New("mongo: connection refused at 10.0.0.5"))

	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestAppErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NotFoundError("user"))

	assert.ErrorIs(t, err, ErrNotFound)
	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "user not found", appErr.Message)
	assert.False(t, IsAppError(errors.New("plain")))
}

func TestFormatValidationError(t *testing.T) {
	type request struct {
		Code   string `validate:"required,max=4"`
		Amount int    `validate:"gte=0"`
		Kind   string `validate:"oneof=xp coins"`
	}

	v := validator.New()

	err := v.Struct(request{Code: "TOOLONG", Amount: -1, Kind: "gems"})
	msg := FormatValidationError(err)
	assert.Contains(t, msg, "code must be at most 4")
	assert.Contains(t, msg, "amount must be greater than or equal to 0")
	assert.Contains(t, msg, "kind must be one of: xp coins")

	assert.Equal(t, "code is required", FormatValidationError(v.Struct(request{Kind: "xp"})))
	assert.Equal(t, "invalid request", FormatValidationError(errors.New("other")))
}
