package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubValidator accepts exactly one token and resolves it to one user.
type stubValidator struct {
	token  string
	userID uuid.UUID
}

type stubClaims struct{ userID uuid.UUID }

func (c *stubClaims) GetUserID() uuid.UUID { return c.userID }

func (v *stubValidator) ValidateToken(tokenString string) (UserIDGetter, error) {
	if tokenString != v.token {
		return nil, errors.New("invalid token")
	}
	return &stubClaims{userID: v.userID}, nil
}

// protectedEcho records the user id the middleware resolved for the request.
func protectedEcho(t *testing.T, got *uuid.UUID) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserID(r)
		require.NoError(t, err)
		*got = userID
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	userID := uuid.New()
	validator := &stubValidator{token: "valid-token", userID: userID}

	var resolved uuid.UUID
	handler := AuthMiddleware(validator)(protectedEcho(t, &resolved))

	req := httptest.NewRequest(http.MethodGet, "/briefs", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, resolved)
}

func TestAuthMiddleware_CaseInsensitiveScheme(t *testing.T) {
	userID := uuid.New()
	validator := &stubValidator{token: "valid-token", userID: userID}

	var resolved uuid.UUID
	handler := AuthMiddleware(validator)(protectedEcho(t, &resolved))

	req := httptest.NewRequest(http.MethodGet, "/briefs", nil)
	req.Header.Set("Authorization", "bearer valid-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, resolved)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	validator := &stubValidator{token: "valid-token", userID: uuid.New()}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no bearer scheme", "valid-token"},
		{"wrong scheme", "Basic valid-token"},
		{"empty token", "Bearer "},
		{"unknown token", "Bearer forged-token"},
		{"extra parts", "Bearer valid-token trailing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/briefs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, called, "handler must not run without a valid token")
		})
	}
}

func TestGetUserID_MissingFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/briefs", nil)

	_, err := GetUserID(req)
	assert.Error(t, err)
}
