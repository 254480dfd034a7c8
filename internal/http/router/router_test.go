package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/auth"
	"github.com/pocket-crm/analytics-api/internal/config"
	"github.com/pocket-crm/analytics-api/internal/domain"
	"github.com/pocket-crm/analytics-api/internal/http/handler"
	"github.com/pocket-crm/analytics-api/internal/http/middleware"
	"github.com/pocket-crm/analytics-api/internal/repository"
	"github.com/pocket-crm/analytics-api/internal/service"
	"github.com/pocket-crm/analytics-api/internal/testutil"
)

const (
	testSecret = "router-test-secret"
	testIssuer = "pocket-crm"
	testAPIKey = "router-test-api-key"
)

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Environment: "test"},
		Auth: config.AuthConfig{JWTSecret: testSecret, Issuer: testIssuer, APIKey: testAPIKey},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"https://crm.example.com"},
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "x-api-key"},
		},
		Security: config.SecurityConfig{ContentTypeNosniff: true, FrameOptions: "DENY"},
		Server:   config.ServerConfig{RequestTimeout: 30},
		RateLimit: config.RateLimitConfig{
			Enabled:               false,
			RequestsPerMinute:     100,
			RequestsPerMinuteAuth: 300,
		},
	}
}

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	cfg := testConfig()

	db := testutil.SetupTestDB(t)
	testutil.Insert(t, db, &domain.Campaign{ID: "cp1", Name: "Spring launch", Type: domain.CampaignTypeEmail, Status: domain.CampaignStatusEnvoye})

	reports, err := service.NewReportService(repository.NewRecordRepository(db), service.ReportOptions{
		Weights: analytics.StageWeightsV1,
	}, logger)
	require.NoError(t, err)

	rt := NewRouter(
		cfg,
		logger,
		auth.NewMiddleware(&cfg.Auth, logger),
		middleware.NewRateLimiter(&cfg.RateLimit, logger),
		handler.NewReportHandler(reports, logger),
		handler.NewHealthHandler(db, nil, logger),
	)
	return rt.Setup()
}

func bearer(t *testing.T, role domain.UserRole) string {
	t.Helper()
	token, err := auth.NewJWTValidator(testSecret, testIssuer).IssueToken(domain.User{
		ID:    "u-" + string(role),
		Name:  "Test " + string(role),
		Email: string(role) + "@example.com",
		Role:  role,
	}, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func get(h http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	h := setupRouter(t)

	rec := get(h, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = get(h, "/health/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])

	rec = get(h, "/health/db", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	h := setupRouter(t)

	rec := get(h, APIPrefix+"/stats/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(h, APIPrefix+"/stats/dashboard", map[string]string{"x-api-key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ReportAccessByRole(t *testing.T) {
	h := setupRouter(t)

	for _, name := range service.ReportNames {
		for _, role := range []domain.UserRole{domain.UserRoleAdmin, domain.UserRoleCommercial, domain.UserRoleStandard} {
			t.Run(string(name)+"/"+string(role), func(t *testing.T) {
				rec := get(h, APIPrefix+"/stats/"+string(name), map[string]string{"Authorization": bearer(t, role)})

				allowed := false
				for _, r := range name.AllowedRoles() {
					allowed = allowed || r == role
				}
				if !allowed {
					assert.Equal(t, http.StatusForbidden, rec.Code)
					return
				}
				require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
				assert.True(t, json.Valid(rec.Body.Bytes()))
			})
		}
	}
}

func TestRouter_APIKeyReadsRestrictedReports(t *testing.T) {
	h := setupRouter(t)

	rec := get(h, APIPrefix+"/stats/financial?period=year", map[string]string{"x-api-key": testAPIKey})
	require.Equal(t, http.StatusOK, rec.Code)

	var report domain.FinancialReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, analytics.PeriodYear, analytics.Period(report.Period))
	assert.Len(t, report.ByStatus, 5)
}

func TestRouter_RejectsUnknownPeriod(t *testing.T) {
	h := setupRouter(t)

	rec := get(h, APIPrefix+"/stats/sales?period=fortnight", map[string]string{"Authorization": bearer(t, domain.UserRoleStandard)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_EmailStats(t *testing.T) {
	h := setupRouter(t)
	headers := map[string]string{"Authorization": bearer(t, domain.UserRoleStandard)}

	rec := get(h, APIPrefix+"/email/global-stats", headers)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(h, APIPrefix+"/email/campaign-stats-list", headers)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = get(h, APIPrefix+"/email/campaign-stats/cp1", headers)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(h, APIPrefix+"/email/campaign-stats/missing", headers)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ResponseHeaders(t *testing.T) {
	h := setupRouter(t)

	rec := get(h, "/health", map[string]string{middleware.RequestIDHeader: "req-123"})
	assert.Equal(t, "req-123", rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	rec = get(h, "/health", nil)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}
