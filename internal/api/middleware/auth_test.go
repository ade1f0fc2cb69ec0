package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/model"
)

const testSecret = "test-secret-key-that-is-long-enough"

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(testSecret, 15*time.Minute)
}

// captureClaims returns a handler that records the claims it sees.
func captureClaims(dst **auth.Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := GetUserFromContext(r.Context()); ok {
			*dst = claims
		}
		w.WriteHeader(http.StatusOK)
	})
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func withClaims(r *http.Request, claims *auth.Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), UserContextKey, claims))
}

// ============================================
// Auth Middleware Tests
// ============================================

func TestAuthMiddleware_ValidToken_Header(t *testing.T) {
	jwtService := newTestJWTService()
	token, _, err := jwtService.GenerateAccessToken("user-123", "test@example.com", model.RoleCustomer)
	require.NoError(t, err)

	var captured *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	AuthMiddleware(jwtService)(captureClaims(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-123", captured.UserID)
	assert.Equal(t, "test@example.com", captured.Email)
	assert.Equal(t, model.RoleCustomer, captured.Role)
}

func TestAuthMiddleware_ValidToken_Cookie(t *testing.T) {
	jwtService := newTestJWTService()
	token, _, err := jwtService.GenerateAccessToken("user-456", "cookie@example.com", model.RoleAdmin)
	require.NoError(t, err)

	var captured *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	rec := httptest.NewRecorder()

	AuthMiddleware(jwtService)(captureClaims(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-456", captured.UserID)
}

func TestAuthMiddleware_CookieTakesPrecedence(t *testing.T) {
	jwtService := newTestJWTService()
	cookieToken, _, _ := jwtService.GenerateAccessToken("cookie-user", "cookie@example.com", model.RoleCustomer)
	headerToken, _, _ := jwtService.GenerateAccessToken("header-user", "header@example.com", model.RoleAdmin)

	var captured *auth.Claims
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: cookieToken})
	req.Header.Set("Authorization", "Bearer "+headerToken)
	rec := httptest.NewRecorder()

	AuthMiddleware(jwtService)(captureClaims(&captured)).ServeHTTP(rec, req)

	require.NotNil(t, captured)
	assert.Equal(t, "cookie-user", captured.UserID)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	valid := newTestJWTService()
	expired := auth.NewJWTService(testSecret, -time.Minute)
	other := auth.NewJWTService("another-secret-key-that-is-long-enough", 15*time.Minute)

	expiredToken, _, err := expired.GenerateAccessToken("user-1", "a@example.com", model.RoleCustomer)
	require.NoError(t, err)
	foreignToken, _, err := other.GenerateAccessToken("user-1", "a@example.com", model.RoleCustomer)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"no token", "", "no token"},
		{"malformed token", "Bearer invalid-token", "token failed"},
		{"expired token", "Bearer " + expiredToken, "token failed"},
		{"wrong signature", "Bearer " + foreignToken, "token failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			AuthMiddleware(valid)(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
		})
	}
}

// ============================================
// Optional Auth Middleware Tests
// ============================================

func TestOptionalAuthMiddleware_ValidToken(t *testing.T) {
	jwtService := newTestJWTService()
	token, _, _ := jwtService.GenerateAccessToken("user-123", "test@example.com", model.RoleCustomer)

	var captured *auth.Claims
	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	OptionalAuthMiddleware(jwtService)(captureClaims(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-123", captured.UserID)
}

func TestOptionalAuthMiddleware_InvalidTokenIsGuest(t *testing.T) {
	jwtService := newTestJWTService()

	var captured *auth.Claims
	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	rec := httptest.NewRecorder()

	OptionalAuthMiddleware(jwtService)(captureClaims(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, captured)
}

// ============================================
// Require Action Middleware Tests
// ============================================

func TestRequireAction(t *testing.T) {
	tests := []struct {
		name   string
		claims *auth.Claims
		action auth.Action
		want   int
	}{
		{"guest", nil, auth.ActionDashboardRead, http.StatusUnauthorized},
		{"customer on admin action", &auth.Claims{UserID: "u1", Role: model.RoleCustomer}, auth.ActionDashboardRead, http.StatusForbidden},
		{"admin", &auth.Claims{UserID: "a1", Role: model.RoleAdmin}, auth.ActionDashboardRead, http.StatusOK},
		{"super-admin", &auth.Claims{UserID: "s1", Role: model.RoleSuperAdmin}, auth.ActionDashboardRead, http.StatusOK},
		{"admin managing admins", &auth.Claims{UserID: "a1", Role: model.RoleAdmin}, auth.ActionAdminsManage, http.StatusForbidden},
		{"super-admin managing admins", &auth.Claims{UserID: "s1", Role: model.RoleSuperAdmin}, auth.ActionAdminsManage, http.StatusOK},
		{"customer writing review", &auth.Claims{UserID: "u1", Role: model.RoleCustomer}, auth.ActionReviewWrite, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.claims != nil {
				req = withClaims(req, tt.claims)
			}
			rec := httptest.NewRecorder()

			RequireAction(tt.action)(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

// ============================================
// Helper Functions Tests
// ============================================

func TestGetUserFromContext(t *testing.T) {
	claims := &auth.Claims{UserID: "user-123", Email: "test@example.com", Role: model.RoleCustomer}
	ctx := context.WithValue(context.Background(), UserContextKey, claims)

	result, ok := GetUserFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, claims, result)
	assert.Equal(t, "user-123", GetUserID(ctx))

	_, ok = GetUserFromContext(context.Background())
	assert.False(t, ok)
	assert.Empty(t, GetUserID(context.Background()))
}

func TestSubject(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserContextKey, &auth.Claims{UserID: "u1", Role: model.RoleAdmin})

	assert.Equal(t, auth.Subject{ID: "u1", Role: model.RoleAdmin}, Subject(ctx))
	assert.False(t, Subject(context.Background()).Authenticated())
}

// ============================================
// Logging Middleware Tests
// ============================================

func TestLoggingMiddleware_PassesStatusThrough(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	req := httptest.NewRequest(http.MethodGet, "/brew", nil)
	rec := httptest.NewRecorder()

	LoggingMiddleware(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
