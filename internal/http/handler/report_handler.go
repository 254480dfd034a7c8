package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/domain"
	"github.com/pocket-crm/analytics-api/internal/logger"
	"github.com/pocket-crm/analytics-api/internal/service"
)

// ReportProvider renders statistics reports and email engagement figures.
// *service.ReportService satisfies it.
type ReportProvider interface {
	RenderReport(ctx context.Context, name service.ReportName, period analytics.Period) ([]byte, error)
	GlobalEmailStats(ctx context.Context) (*domain.EmailStats, error)
	CampaignEmailStatsList(ctx context.Context) ([]domain.CampaignEmailStats, error)
	CampaignEmailStats(ctx context.Context, campaignID string) (*domain.CampaignEmailStats, error)
}

type ReportHandler struct {
	reports ReportProvider
	logger  *zap.Logger
}

func NewReportHandler(reports ReportProvider, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  logger,
	}
}

type reportQuery struct {
	Period string `validate:"omitempty,oneof=week month quarter year"`
}

type campaignParams struct {
	CampaignID string `validate:"required,max=64"`
}

// Report returns the handler serving one statistics report.
// The period query parameter defaults to month.
func (h *ReportHandler) Report(name service.ReportName) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := reportQuery{Period: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("period")))}
		if err := validate.Struct(query); err != nil {
			respondValidationError(w, err)
			return
		}
		period, err := analytics.ParsePeriod(query.Period)
		if err != nil {
			h.respondServiceError(w, r, err)
			return
		}

		log := logger.WithReport(logger.FromContext(r.Context(), h.logger), string(name), string(period))
		payload, err := h.reports.RenderReport(logger.IntoContext(r.Context(), log), name, period)
		if err != nil {
			h.respondServiceError(w, r, err)
			return
		}

		respondPayload(w, http.StatusOK, payload)
	}
}

// GlobalEmailStats returns engagement over every email ever logged
func (h *ReportHandler) GlobalEmailStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.GlobalEmailStats(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// CampaignEmailStatsList returns engagement for every campaign that sent email
func (h *ReportHandler) CampaignEmailStatsList(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.CampaignEmailStatsList(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// CampaignEmailStats returns engagement for one campaign
func (h *ReportHandler) CampaignEmailStats(w http.ResponseWriter, r *http.Request) {
	params := campaignParams{CampaignID: chi.URLParam(r, "campaignId")}
	if err := validate.Struct(params); err != nil {
		respondValidationError(w, err)
		return
	}

	stats, err := h.reports.CampaignEmailStats(r.Context(), params.CampaignID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// respondServiceError maps report service errors to problem responses
func (h *ReportHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), h.logger)

	var cfgErr *analytics.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		respondError(w, http.StatusBadRequest, domain.ErrorTypeConfiguration, cfgErr.Error())
	case errors.Is(err, service.ErrCampaignNotFound), errors.Is(err, service.ErrUnknownReport):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrFetchAborted):
		log.Warn("report request aborted", zap.String("path", r.URL.Path), zap.Error(err))
		respondWithError(w, http.StatusServiceUnavailable, "Report data could not be read in time")
	case errors.Is(err, service.ErrFetchFailed):
		log.Error("report data fetch failed", zap.String("path", r.URL.Path), zap.Error(err))
		respondWithError(w, http.StatusBadGateway, "Report data could not be read from the record store")
	default:
		log.Error("failed to build report", zap.String("path", r.URL.Path), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to build report")
	}
}
