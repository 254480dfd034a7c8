package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pocket-crm/analytics-api/internal/auth"
	"github.com/pocket-crm/analytics-api/internal/config"
	"github.com/pocket-crm/analytics-api/internal/domain"
)

const (
	testSecret = "test-signing-secret"
	testIssuer = "pocket-crm"
	testAPIKey = "test-api-key-12345"
)

var commercial = domain.User{ID: "u2", Name: "Bruno Petit", Email: "bruno@example.com", Role: domain.UserRoleCommercial}

func createTestMiddleware() *auth.Middleware {
	return auth.NewMiddleware(&config.AuthConfig{JWTSecret: testSecret, Issuer: testIssuer, APIKey: testAPIKey}, zap.NewNop())
}

func issue(t *testing.T, user domain.User, ttl time.Duration) string {
	t.Helper()
	token, err := auth.NewJWTValidator(testSecret, testIssuer).IssueToken(user, ttl)
	require.NoError(t, err)
	return token
}

func captureUser(captured **auth.UserContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTValidator_RoundTrip(t *testing.T) {
	v := auth.NewJWTValidator(testSecret, testIssuer)
	token, err := v.IssueToken(commercial, time.Hour)
	require.NoError(t, err)

	user, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u2", user.UserID)
	assert.Equal(t, "Bruno Petit", user.Name)
	assert.Equal(t, domain.UserRoleCommercial, user.Role)
	assert.Equal(t, auth.AuthTypeJWT, user.AuthType)
}

func TestJWTValidator_Rejects(t *testing.T) {
	v := auth.NewJWTValidator(testSecret, testIssuer)

	t.Run("expired", func(t *testing.T) {
		_, err := v.ValidateToken(issue(t, commercial, -time.Minute))
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := auth.NewJWTValidator("other-secret", testIssuer).IssueToken(commercial, time.Hour)
		require.NoError(t, err)
		_, err = v.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := auth.NewJWTValidator(testSecret, "someone-else").IssueToken(commercial, time.Hour)
		require.NoError(t, err)
		_, err = v.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		stranger := commercial
		stranger.Role = "superuser"
		_, err := v.ValidateToken(issue(t, stranger, time.Hour))
		assert.ErrorIs(t, err, auth.ErrUnknownRole)
	})

	t.Run("unsigned algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "u2", "role": "admin", "iss": testIssuer, "exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = v.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestMiddleware_Authenticate(t *testing.T) {
	m := createTestMiddleware()

	tests := []struct {
		name     string
		headers  map[string]string
		wantCode int
		wantRole domain.UserRole
	}{
		{"api key", map[string]string{"x-api-key": testAPIKey}, http.StatusOK, domain.UserRoleAdmin},
		{"bearer token", map[string]string{"Authorization": "Bearer " + issue(t, commercial, time.Hour)}, http.StatusOK, domain.UserRoleCommercial},
		{"invalid api key", map[string]string{"x-api-key": "nope"}, http.StatusUnauthorized, ""},
		{"missing header", map[string]string{}, http.StatusUnauthorized, ""},
		{"basic scheme", map[string]string{"Authorization": "Basic dXNlcjpwYXNz"}, http.StatusUnauthorized, ""},
		{"garbage token", map[string]string{"Authorization": "Bearer not-a-jwt"}, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var user *auth.UserContext
			req := httptest.NewRequest(http.MethodGet, "/api/crm/stats/sales", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()

			m.Authenticate(captureUser(&user)).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				require.NotNil(t, user)
				assert.Equal(t, tt.wantRole, user.Role)
			} else {
				assert.Nil(t, user)
			}
		})
	}
}

func TestMiddleware_RequireRole(t *testing.T) {
	m := createTestMiddleware()
	var user *auth.UserContext
	handler := m.Authenticate(m.RequireRole(domain.UserRoleAdmin, domain.UserRoleCommercial)(captureUser(&user)))

	standard := commercial
	standard.Role = domain.UserRoleStandard

	req := httptest.NewRequest(http.MethodGet, "/api/crm/stats/financial", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, standard, time.Hour))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/crm/stats/financial", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, commercial, time.Hour))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware_RequireRoleWithoutUser(t *testing.T) {
	m := createTestMiddleware()
	w := httptest.NewRecorder()
	m.RequireRole(domain.UserRoleAdmin)(http.NotFoundHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
