package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator accepts a fixed set of tokens.
type testTokenValidator struct {
	validTokens map[string]string
}

func (v *testTokenValidator) ValidateToken(tokenString string) (SubjectGetter, error) {
	subject, ok := v.validTokens[tokenString]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return testClaims(subject), nil
}

type testClaims string

func (c testClaims) GetSubject() (string, error) {
	return string(c), nil
}

func newValidator() *testTokenValidator {
	return &testTokenValidator{validTokens: map[string]string{
		"valid-token":      "user-42",
		"no-subject-token": "",
	}}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	var got Principal
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := GetPrincipal(r)
		assert.NoError(t, err)
		got = p
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	AuthMiddleware(newValidator())(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", got.Subject)
	assert.Equal(t, "valid-token", got.Token)
	assert.Equal(t, "valid-token", got.BearerToken())
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
	}{
		{"missing header", ""},
		{"missing Bearer prefix", "valid-token"},
		{"empty token", "Bearer "},
		{"only Bearer", "Bearer"},
		{"wrong scheme", "Basic valid-token"},
		{"unknown token", "Bearer nope"},
		{"token without subject", "Bearer no-subject-token"},
		{"extra parts", "Bearer valid-token extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
				handlerCalled = true
			})

			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			AuthMiddleware(newValidator())(handler).ServeHTTP(w, req)

			assert.False(t, handlerCalled, "handler should not be called")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "Unauthorized")
		})
	}
}

func TestAuthMiddleware_CaseInsensitiveScheme(t *testing.T) {
	for _, scheme := range []string{"bearer", "BEARER", "BeArEr"} {
		handlerCalled := false
		handler := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
		})
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("Authorization", scheme+"  valid-token")
		w := httptest.NewRecorder()
		AuthMiddleware(newValidator())(handler).ServeHTTP(w, req)

		assert.True(t, handlerCalled, "scheme %q should be accepted", scheme)
	}
}

func TestGetPrincipal_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetPrincipal(req)
	require.Error(t, err)
}
