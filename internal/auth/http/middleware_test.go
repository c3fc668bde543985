package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/coursekit/identity/internal/auth/domain"
	authService "github.com/coursekit/identity/internal/auth/service"
	"github.com/coursekit/identity/internal/httputil"
	userDomain "github.com/coursekit/identity/internal/user/domain"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// guardedRouter wires the authentication guard in front of a counting
// handler so tests can assert the handler never runs on rejection.
func guardedRouter(tokenService authService.TokenService, handlerCalls *int) *gin.Engine {
	logger := createTestLogger()

	router := gin.New()
	router.GET("/protected",
		AuthenticationMiddleware(tokenService, logger),
		func(c *gin.Context) {
			*handlerCalls++
			c.JSON(http.StatusOK, gin.H{"ok": true})
		},
	)
	return router
}

func decodeErrorResponse(t *testing.T, w *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthenticationMiddleware(t *testing.T) {
	tokenService := authService.NewJWTService("test-jwt-secret")

	validToken, err := tokenService.Issue(42, "alice@example.com", userDomain.RoleStudent, time.Hour)
	require.NoError(t, err)

	expiredToken, err := tokenService.Issue(42, "alice@example.com", userDomain.RoleStudent, -1*time.Second)
	require.NoError(t, err)

	otherService := authService.NewJWTService("another-secret")
	foreignToken, err := otherService.Issue(42, "alice@example.com", userDomain.RoleStudent, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
		wantCode      string
		wantHandler   int
	}{
		{
			name:          "missing header",
			authorization: "",
			wantStatus:    http.StatusUnauthorized,
			wantCode:      authDomain.CodeTokenMissing,
		},
		{
			name:          "garbage token",
			authorization: "Bearer not-a-token",
			wantStatus:    http.StatusUnauthorized,
			wantCode:      authDomain.CodeTokenInvalid,
		},
		{
			name:          "expired token",
			authorization: "Bearer " + expiredToken,
			wantStatus:    http.StatusUnauthorized,
			wantCode:      authDomain.CodeTokenExpired,
		},
		{
			name:          "tampered token",
			authorization: "Bearer " + validToken + "x",
			wantStatus:    http.StatusUnauthorized,
			wantCode:      authDomain.CodeTokenInvalid,
		},
		{
			name:          "token signed with another secret",
			authorization: "Bearer " + foreignToken,
			wantStatus:    http.StatusUnauthorized,
			wantCode:      authDomain.CodeTokenInvalid,
		},
		{
			name:          "valid token",
			authorization: "Bearer " + validToken,
			wantStatus:    http.StatusOK,
			wantHandler:   1,
		},
		{
			name:          "valid token without bearer prefix",
			authorization: validToken,
			wantStatus:    http.StatusOK,
			wantHandler:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalls := 0
			router := guardedRouter(tokenService, &handlerCalls)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantHandler, handlerCalls)

			if tt.wantCode != "" {
				resp := decodeErrorResponse(t, w)
				assert.Equal(t, tt.wantCode, resp.Code)
			}
		})
	}
}

func TestAuthenticationMiddlewareStoresIdentity(t *testing.T) {
	tokenService := authService.NewJWTService("test-jwt-secret")
	logger := createTestLogger()

	token, err := tokenService.Issue(42, "alice@example.com", userDomain.RoleInstructor, time.Hour)
	require.NoError(t, err)

	var got *authDomain.Claims

	router := gin.New()
	router.GET("/protected",
		AuthenticationMiddleware(tokenService, logger),
		func(c *gin.Context) {
			got, _ = GetIdentity(c.Request.Context())
			c.Status(http.StatusOK)
		},
	)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, userDomain.RoleInstructor, got.Role)
}

func TestRequireRoleMiddleware(t *testing.T) {
	tokenService := authService.NewJWTService("test-jwt-secret")
	logger := createTestLogger()

	studentToken, err := tokenService.Issue(1, "student@example.com", userDomain.RoleStudent, time.Hour)
	require.NoError(t, err)

	instructorToken, err := tokenService.Issue(2, "teach@example.com", userDomain.RoleInstructor, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name        string
		token       string
		wantStatus  int
		wantCode    string
		wantHandler int
	}{
		{
			name:        "matching role",
			token:       instructorToken,
			wantStatus:  http.StatusOK,
			wantHandler: 1,
		},
		{
			name:       "role mismatch",
			token:      studentToken,
			wantStatus: http.StatusForbidden,
			wantCode:   authDomain.CodeForbiddenAccess,
		},
		{
			name:       "no token",
			token:      "",
			wantStatus: http.StatusUnauthorized,
			wantCode:   authDomain.CodeTokenMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalls := 0

			router := gin.New()
			router.GET("/instructor-only",
				AuthenticationMiddleware(tokenService, logger),
				RequireRoleMiddleware(userDomain.RoleInstructor, logger),
				func(c *gin.Context) {
					handlerCalls++
					c.Status(http.StatusOK)
				},
			)

			req := httptest.NewRequest(http.MethodGet, "/instructor-only", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantHandler, handlerCalls)

			if tt.wantCode != "" {
				resp := decodeErrorResponse(t, w)
				assert.Equal(t, tt.wantCode, resp.Code)
			}
		})
	}
}

func TestRequireRoleMiddlewareRunsAfterVerification(t *testing.T) {
	tokenService := authService.NewJWTService("test-jwt-secret")
	logger := createTestLogger()

	// An expired instructor token must fail at the authentication step with
	// an expiry code, never reaching the role check.
	expired, err := tokenService.Issue(2, "teach@example.com", userDomain.RoleInstructor, -1*time.Second)
	require.NoError(t, err)

	handlerCalls := 0
	router := gin.New()
	router.GET("/instructor-only",
		AuthenticationMiddleware(tokenService, logger),
		RequireRoleMiddleware(userDomain.RoleInstructor, logger),
		func(c *gin.Context) {
			handlerCalls++
			c.Status(http.StatusOK)
		},
	)

	req := httptest.NewRequest(http.MethodGet, "/instructor-only", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, handlerCalls)

	resp := decodeErrorResponse(t, w)
	assert.Equal(t, authDomain.CodeTokenExpired, resp.Code)
}
