package errors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/the-dramaturgy/dramaturgy-service/internal/service"
)

func TestToHTTP_Mapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{service.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
		{service.ErrInvalidEmail, http.StatusBadRequest, "invalid_email"},
		{service.ErrInvalidUsername, http.StatusBadRequest, "invalid_username"},
		{service.ErrWeakPassword, http.StatusBadRequest, "weak_password"},
		{service.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{service.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
		{service.ErrTokenExpired, http.StatusUnauthorized, "token_expired"},
		{service.ErrTokenRevoked, http.StatusUnauthorized, "token_revoked"},
		{service.ErrPermissionDenied, http.StatusForbidden, "permission_denied"},
		{service.ErrNotFound, http.StatusNotFound, "not_found"},
		{service.ErrConflict, http.StatusConflict, "conflict"},
		{service.ErrEmailTaken, http.StatusConflict, "email_taken"},
		{service.ErrUsernameTaken, http.StatusConflict, "username_taken"},
		{service.ErrInternal, http.StatusInternalServerError, "internal"},
		{errors.New("opaque"), http.StatusInternalServerError, "internal"},
		{nil, http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tests {
		status, resp := ToHTTP(tc.err)
		require.Equal(t, tc.wantStatus, status, "err=%v", tc.err)
		require.Equal(t, tc.wantCode, resp.Error.Code, "err=%v", tc.err)
		require.NotEmpty(t, resp.Error.Message)
	}
}

func TestToHTTP_WrappedSentinel(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("service.questions.SolveQuestion: %w", service.ErrConflict)
	status, resp := ToHTTP(wrapped)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "conflict", resp.Error.Code)
}

func TestWriteError_PropagatesRequestID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "rid-123")
	rr := httptest.NewRecorder()

	WriteError(rr, req, service.ErrNotFound)

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Body.String(), `"request_id":"rid-123"`)
	require.Contains(t, rr.Body.String(), `"code":"not_found"`)
}
