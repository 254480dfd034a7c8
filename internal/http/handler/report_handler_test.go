package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/domain"
	"github.com/pocket-crm/analytics-api/internal/repository"
	"github.com/pocket-crm/analytics-api/internal/service"
)

type stubReports struct {
	err          error
	gotName      service.ReportName
	gotPeriod    analytics.Period
	gotCampaign  string
	campaignList []domain.CampaignEmailStats
}

func (s *stubReports) RenderReport(_ context.Context, name service.ReportName, period analytics.Period) ([]byte, error) {
	s.gotName, s.gotPeriod = name, period
	if s.err != nil {
		return nil, s.err
	}
	return []byte(fmt.Sprintf(`{"report":%q,"period":%q}`, name, period)), nil
}

func (s *stubReports) GlobalEmailStats(context.Context) (*domain.EmailStats, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.EmailStats{Total: 4}, nil
}

func (s *stubReports) CampaignEmailStatsList(context.Context) ([]domain.CampaignEmailStats, error) {
	return s.campaignList, s.err
}

func (s *stubReports) CampaignEmailStats(_ context.Context, id string) (*domain.CampaignEmailStats, error) {
	s.gotCampaign = id
	if s.err != nil {
		return nil, s.err
	}
	return &domain.CampaignEmailStats{CampaignID: id}, nil
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) domain.APIError {
	t.Helper()
	var problem domain.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestReportHandler_Report(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantPeriod analytics.Period
	}{
		{name: "defaults to month", query: "", wantStatus: http.StatusOK, wantPeriod: analytics.PeriodMonth},
		{name: "explicit week", query: "?period=week", wantStatus: http.StatusOK, wantPeriod: analytics.PeriodWeek},
		{name: "case insensitive", query: "?period=Quarter", wantStatus: http.StatusOK, wantPeriod: analytics.PeriodQuarter},
		{name: "unknown period", query: "?period=decade", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := &stubReports{}
			h := NewReportHandler(reports, zap.NewNop())

			req := httptest.NewRequest(http.MethodGet, "/stats/sales"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.Report(service.ReportSales).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.wantStatus != http.StatusOK {
				problem := decodeProblem(t, rec)
				assert.Equal(t, domain.ErrorTypeValidation, problem.Type)
				assert.Contains(t, problem.Errors, "period")
				return
			}
			assert.Equal(t, service.ReportSales, reports.gotName)
			assert.Equal(t, tt.wantPeriod, reports.gotPeriod)
			assert.JSONEq(t, fmt.Sprintf(`{"report":"sales","period":%q}`, tt.wantPeriod), rec.Body.String())
		})
	}
}

func TestReportHandler_ErrorMapping(t *testing.T) {
	cause := errors.New("connection refused")
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "configuration",
			err:        &analytics.ConfigurationError{Field: "stage_weights", Value: "v9", Reason: "unknown version"},
			wantStatus: http.StatusBadRequest,
			wantType:   domain.ErrorTypeConfiguration,
		},
		{
			name:       "fetch failed",
			err:        &service.FetchError{Report: "sales", Entity: repository.EntityLeads, Kind: service.ErrFetchFailed, Err: cause},
			wantStatus: http.StatusBadGateway,
			wantType:   domain.ErrorTypeUpstream,
		},
		{
			name:       "fetch aborted",
			err:        &service.FetchError{Report: "sales", Entity: repository.EntityLeads, Kind: service.ErrFetchAborted, Err: context.DeadlineExceeded},
			wantStatus: http.StatusServiceUnavailable,
			wantType:   domain.ErrorTypeUnavailable,
		},
		{
			name:       "unexpected",
			err:        cause,
			wantStatus: http.StatusInternalServerError,
			wantType:   domain.ErrorTypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewReportHandler(&stubReports{err: tt.err}, zap.NewNop())

			rec := httptest.NewRecorder()
			h.Report(service.ReportSales).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats/sales", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			problem := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.NotContains(t, rec.Body.String(), "connection refused", "internal causes are not exposed")
		})
	}
}

func TestReportHandler_CampaignEmailStats(t *testing.T) {
	serve := func(reports *stubReports, path string) *httptest.ResponseRecorder {
		h := NewReportHandler(reports, zap.NewNop())
		r := chi.NewRouter()
		r.Get("/email/campaign-stats/{campaignId}", h.CampaignEmailStats)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	t.Run("found", func(t *testing.T) {
		reports := &stubReports{}
		rec := serve(reports, "/email/campaign-stats/cp1")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "cp1", reports.gotCampaign)
	})

	t.Run("not found", func(t *testing.T) {
		rec := serve(&stubReports{err: fmt.Errorf("%w: %q", service.ErrCampaignNotFound, "nope")}, "/email/campaign-stats/nope")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, domain.ErrorTypeNotFound, decodeProblem(t, rec).Type)
	})
}

func TestReportHandler_EmailLists(t *testing.T) {
	reports := &stubReports{campaignList: []domain.CampaignEmailStats{{CampaignID: "cp2"}, {CampaignID: "cp1"}}}
	h := NewReportHandler(reports, zap.NewNop())

	rec := httptest.NewRecorder()
	h.CampaignEmailStatsList(rec, httptest.NewRequest(http.MethodGet, "/email/campaign-stats-list", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.CampaignEmailStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "cp2", list[0].CampaignID)

	rec = httptest.NewRecorder()
	h.GlobalEmailStats(rec, httptest.NewRequest(http.MethodGet, "/email/global-stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var stats domain.EmailStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.Total)
}
