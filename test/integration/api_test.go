// Package integration provides end-to-end integration tests for the identity API.
// Tests the full register/login/authorization surface against both PostgreSQL and MySQL.
package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursekit/identity/internal/app"
	authDTO "github.com/coursekit/identity/internal/auth/http/dto"
	"github.com/coursekit/identity/internal/config"
	cryptoService "github.com/coursekit/identity/internal/crypto/service"
	"github.com/coursekit/identity/internal/testutil"
	userDTO "github.com/coursekit/identity/internal/user/http/dto"
)

// integrationTestContext holds all dependencies and state for integration testing.
type integrationTestContext struct {
	container *app.Container
	db        *sql.DB
	server    *httptest.Server
	dbDriver  string
}

// makeRequest performs an HTTP request and returns the response and body.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body interface{},
	token string,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	if closeErr := resp.Body.Close(); closeErr != nil {
		t.Logf("Warning: failed to close response body: %v", closeErr)
	}

	return resp, respBody
}

// register creates a user through the API and returns the decoded response.
func (ctx *integrationTestContext) register(
	t *testing.T,
	email, password, userType string,
) userDTO.UserResponse {
	t.Helper()

	resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/auth/register", map[string]string{
		"email":     email,
		"password":  password,
		"user_type": userType,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var user userDTO.UserResponse
	require.NoError(t, json.Unmarshal(body, &user))
	return user
}

// login authenticates through the API and returns the issued token.
func (ctx *integrationTestContext) login(t *testing.T, email, password string) string {
	t.Helper()

	resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var loginResp authDTO.LoginResponse
	require.NoError(t, json.Unmarshal(body, &loginResp))
	require.NotEmpty(t, loginResp.Token)
	return loginResp.Token
}

// setupIntegrationTest initializes all components for integration testing.
func setupIntegrationTest(t *testing.T, dbDriver string) *integrationTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	var db *sql.DB
	var dsn string
	if dbDriver == "postgres" {
		testutil.SkipIfNoPostgres(t)
		db = testutil.SetupPostgresDB(t)
		dsn = testutil.GetPostgresTestDSN()
	} else {
		testutil.SkipIfNoMySQL(t)
		db = testutil.SetupMySQLDB(t)
		dsn = testutil.GetMySQLTestDSN()
	}

	encryptionKey, err := cryptoService.GenerateKey()
	require.NoError(t, err, "failed to generate encryption key")

	cfg := &config.Config{
		ServerHost:           "localhost",
		ServerPort:           8080,
		DBDriver:             dbDriver,
		DBConnectionString:   dsn,
		DBMaxOpenConnections: 10,
		DBMaxIdleConnections: 5,
		DBConnMaxLifetime:    time.Hour,
		LogLevel:             "error",
		EncryptionKey:        encryptionKey,
		JWTSecret:            "integration-test-secret",
		JWTExpiration:        time.Hour,
	}
	require.NoError(t, cfg.Validate())

	container := app.NewContainer(cfg)

	httpSrv, err := container.HTTPServer()
	require.NoError(t, err, "failed to get HTTP server")

	handler := httpSrv.GetHandler()
	require.NotNil(t, handler)

	testServer := httptest.NewServer(handler)

	return &integrationTestContext{
		container: container,
		db:        db,
		server:    testServer,
		dbDriver:  dbDriver,
	}
}

// teardownIntegrationTest cleans up all resources.
func teardownIntegrationTest(t *testing.T, ctx *integrationTestContext) {
	t.Helper()

	if ctx.server != nil {
		ctx.server.Close()
	}

	if ctx.container != nil {
		if err := ctx.container.Shutdown(context.Background()); err != nil {
			t.Logf("Warning: container shutdown error: %v", err)
		}
	}

	if ctx.db != nil {
		testutil.TeardownDB(t, ctx.db)
	}
}

func integrationDrivers() []struct {
	name     string
	dbDriver string
} {
	return []struct {
		name     string
		dbDriver string
	}{
		{"PostgreSQL", "postgres"},
		{"MySQL", "mysql"},
	}
}

// TestIntegration_Health_BasicChecks validates the liveness and readiness endpoints
// against both PostgreSQL and MySQL.
func TestIntegration_Health_BasicChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, tc := range integrationDrivers() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			t.Run("01_HealthCheck", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/healthz", nil, "")
				assert.Equal(t, http.StatusOK, resp.StatusCode)

				var response map[string]string
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "healthy", response["status"])
			})

			t.Run("02_ReadinessCheck", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/readyz", nil, "")
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				assert.Contains(t, string(body), `"status":"ready"`)
			})
		})
	}
}

// TestIntegration_Identity_CompleteFlow walks the whole credential lifecycle:
// registration, duplicate rejection, login, whoami, direct reads, and the
// encrypted-at-rest guarantee, against both databases.
func TestIntegration_Identity_CompleteFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, tc := range integrationDrivers() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			var (
				studentID int64
				token     string
			)

			t.Run("01_Register", func(t *testing.T) {
				user := ctx.register(t, "alice@example.com", "Sup3rSecret", "student")
				assert.Positive(t, user.ID)
				assert.Equal(t, "alice@example.com", user.Email)
				assert.Equal(t, "student", user.UserType)
				assert.True(t, user.IsActive)
				studentID = user.ID
			})

			t.Run("02_EmailStoredEncrypted", func(t *testing.T) {
				var count int
				err := ctx.db.QueryRow(
					"SELECT COUNT(*) FROM users WHERE email_encrypted IS NOT NULL",
				).Scan(&count)
				require.NoError(t, err)
				assert.Equal(t, 1, count)

				// The plaintext address must not appear anywhere in the row.
				query := "SELECT COUNT(*) FROM users WHERE POSITION('alice@example.com' IN encode(email_encrypted, 'escape')) > 0"
				if ctx.dbDriver == "mysql" {
					query = "SELECT COUNT(*) FROM users WHERE INSTR(email_encrypted, 'alice@example.com') > 0"
				}
				err = ctx.db.QueryRow(query).Scan(&count)
				require.NoError(t, err)
				assert.Zero(t, count)
			})

			t.Run("03_DuplicateRegisterConflicts", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/auth/register", map[string]string{
					"email":     "Alice@Example.COM",
					"password":  "An0therSecret",
					"user_type": "student",
				}, "")
				assert.Equal(t, http.StatusConflict, resp.StatusCode, string(body))
			})

			t.Run("04_Login", func(t *testing.T) {
				token = ctx.login(t, "alice@example.com", "Sup3rSecret")
			})

			t.Run("05_LoginFailureIsUniform", func(t *testing.T) {
				resp1, body1 := ctx.makeRequest(t, http.MethodPost, "/v1/auth/login", map[string]string{
					"email":    "alice@example.com",
					"password": "WrongSecret1",
				}, "")
				resp2, body2 := ctx.makeRequest(t, http.MethodPost, "/v1/auth/login", map[string]string{
					"email":    "nobody@example.com",
					"password": "Sup3rSecret",
				}, "")

				assert.Equal(t, http.StatusUnauthorized, resp1.StatusCode)
				assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
				assert.JSONEq(t, string(body1), string(body2))
			})

			t.Run("06_Whoami", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/auth/whoami", nil, token)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var whoami authDTO.WhoamiResponse
				require.NoError(t, json.Unmarshal(body, &whoami))
				assert.Equal(t, studentID, whoami.UserID)
				assert.Equal(t, "alice@example.com", whoami.Email)
				assert.Equal(t, "student", whoami.UserType)
			})

			t.Run("07_GetUserDecrypts", func(t *testing.T) {
				resp, body := ctx.makeRequest(t,
					http.MethodGet, fmt.Sprintf("/v1/users/%d", studentID), nil, token)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var user userDTO.UserResponse
				require.NoError(t, json.Unmarshal(body, &user))
				assert.Equal(t, "alice@example.com", user.Email)
			})

			t.Run("08_OutboxEventRecorded", func(t *testing.T) {
				var count int
				err := ctx.db.QueryRow(
					"SELECT COUNT(*) FROM outbox_events WHERE event_type = 'user.registered' AND status = 'pending'",
				).Scan(&count)
				require.NoError(t, err)
				assert.Equal(t, 1, count)
			})
		})
	}
}

// TestIntegration_Authorization_Guards exercises the token and role guards over
// real storage: unauthenticated access, role-gated listing, and enrollments.
func TestIntegration_Authorization_Guards(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, tc := range integrationDrivers() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			student := ctx.register(t, "student@example.com", "Sup3rSecret", "student")
			ctx.register(t, "teach@example.com", "Sup3rSecret", "instructor")

			studentToken := ctx.login(t, "student@example.com", "Sup3rSecret")
			instructorToken := ctx.login(t, "teach@example.com", "Sup3rSecret")

			t.Run("01_MissingTokenRejected", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/auth/whoami", nil, "")
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
				assert.Contains(t, string(body), "TOKEN_MISSING")
			})

			t.Run("02_GarbageTokenRejected", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/auth/whoami", nil, "not-a-token")
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
				assert.Contains(t, string(body), "TOKEN_INVALID")
			})

			t.Run("03_StudentCannotListUsers", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/users", nil, studentToken)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
				assert.Contains(t, string(body), "FORBIDDEN_ACCESS")
			})

			t.Run("04_InstructorListsUsers", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/users", nil, instructorToken)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var listing userDTO.ListUsersResponse
				require.NoError(t, json.Unmarshal(body, &listing))
				assert.Len(t, listing.Users, 2)
				assert.NotContains(t, string(body), "example.com")
			})

			t.Run("05_EnrollmentFlow", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/enrollments",
					map[string]int64{"course_id": 7}, studentToken)
				require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

				var enrollment userDTO.EnrollmentResponse
				require.NoError(t, json.Unmarshal(body, &enrollment))
				assert.Equal(t, student.ID, enrollment.UserID)
				assert.Equal(t, int64(7), enrollment.CourseID)

				// Same course again conflicts.
				resp, _ = ctx.makeRequest(t, http.MethodPost, "/v1/enrollments",
					map[string]int64{"course_id": 7}, studentToken)
				assert.Equal(t, http.StatusConflict, resp.StatusCode)

				resp, body = ctx.makeRequest(t,
					http.MethodGet, fmt.Sprintf("/v1/users/%d/enrollments", student.ID), nil, studentToken)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var listing userDTO.ListEnrollmentsResponse
				require.NoError(t, json.Unmarshal(body, &listing))
				assert.Len(t, listing.Enrollments, 1)
			})
		})
	}
}
