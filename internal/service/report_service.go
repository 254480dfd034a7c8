package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/domain"
	"github.com/pocket-crm/analytics-api/internal/repository"
)

// ReportName identifies one of the statistics views
type ReportName string

const (
	ReportDashboard   ReportName = "dashboard"
	ReportSales       ReportName = "sales"
	ReportClients     ReportName = "clients"
	ReportCommercials ReportName = "commercials"
	ReportFinancial   ReportName = "financial"
	ReportMarketing   ReportName = "marketing"
)

// ReportNames lists every report
var ReportNames = []ReportName{
	ReportDashboard,
	ReportSales,
	ReportClients,
	ReportCommercials,
	ReportFinancial,
	ReportMarketing,
}

// AllowedRoles returns the roles that may read the report
func (n ReportName) AllowedRoles() []domain.UserRole {
	switch n {
	case ReportFinancial, ReportCommercials:
		return []domain.UserRole{domain.UserRoleAdmin, domain.UserRoleCommercial}
	default:
		return []domain.UserRole{domain.UserRoleAdmin, domain.UserRoleCommercial, domain.UserRoleStandard}
	}
}

// ReportCache stores rendered report payloads between calls
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// ReportOptions configures the report service.
// Timeout bounds the computation of one report; zero leaves it unbounded.
type ReportOptions struct {
	Weights  analytics.StageWeights
	TopN     int
	Location *time.Location
	Cache    ReportCache
	CacheTTL time.Duration
	Timeout  time.Duration
	Clock    func() time.Time
}

// ReportService assembles statistics reports from CRM records
type ReportService struct {
	fetcher  repository.Fetcher
	weights  analytics.StageWeights
	topN     int
	location *time.Location
	cache    ReportCache
	cacheTTL time.Duration
	timeout  time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewReportService validates the options and builds the service.
// An invalid stage-weight table is rejected here rather than on the first forecast.
func NewReportService(fetcher repository.Fetcher, opts ReportOptions, logger *zap.Logger) (*ReportService, error) {
	if err := opts.Weights.Validate(); err != nil {
		return nil, err
	}
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &ReportService{
		fetcher:  fetcher,
		weights:  opts.Weights,
		topN:     opts.TopN,
		location: opts.Location,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		timeout:  opts.Timeout,
		now:      opts.Clock,
		logger:   logger,
	}, nil
}

// Report computes a report by name
func (s *ReportService) Report(ctx context.Context, name ReportName, period analytics.Period) (interface{}, error) {
	start := time.Now()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	var (
		report interface{}
		err    error
	)
	switch name {
	case ReportDashboard:
		report, err = s.Dashboard(ctx, period)
	case ReportSales:
		report, err = s.Sales(ctx, period)
	case ReportClients:
		report, err = s.Clients(ctx, period)
	case ReportCommercials:
		report, err = s.Commercials(ctx, period)
	case ReportFinancial:
		report, err = s.Financial(ctx, period)
	case ReportMarketing:
		report, err = s.Marketing(ctx, period)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, name)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug("report assembled",
		zap.String("report", string(name)),
		zap.String("period", string(period)),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}

// RenderReport returns the JSON payload of a report, served from the cache when one is configured
func (s *ReportService) RenderReport(ctx context.Context, name ReportName, period analytics.Period) ([]byte, error) {
	if s.cache != nil {
		payload, ok, err := s.cache.Get(ctx, cacheKey(name, period))
		if err != nil {
			s.logger.Warn("report cache read failed", zap.String("report", string(name)), zap.Error(err))
		} else if ok {
			return payload, nil
		}
	}
	return s.RefreshReport(ctx, name, period)
}

// RefreshReport recomputes a report and stores it in the cache when one is configured
func (s *ReportService) RefreshReport(ctx context.Context, name ReportName, period analytics.Period) ([]byte, error) {
	report, err := s.Report(ctx, name, period)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s report: %w", name, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey(name, period), payload, s.cacheTTL); err != nil {
			s.logger.Warn("report cache write failed", zap.String("report", string(name)), zap.Error(err))
		}
	}
	return payload, nil
}

func cacheKey(name ReportName, period analytics.Period) string {
	return "report:" + string(name) + ":" + string(period)
}

func (s *ReportService) resolve(period analytics.Period) (*analytics.Resolution, error) {
	return analytics.ResolvePeriod(period, s.now().In(s.location))
}

// gather fans record fetches out and joins them before any reducer runs.
// The first failure cancels the remaining fetches and aborts the report.
type gather struct {
	group   *errgroup.Group
	ctx     context.Context
	fetcher repository.Fetcher
	report  ReportName
	logger  *zap.Logger
}

func (s *ReportService) gather(ctx context.Context, report ReportName) *gather {
	group, gctx := errgroup.WithContext(ctx)
	return &gather{group: group, ctx: gctx, fetcher: s.fetcher, report: report, logger: s.logger}
}

// load fetches every record matching q into dest
func load[T any](g *gather, q repository.Query, dest *[]T) {
	g.group.Go(func() error {
		items, err := repository.FetchAll[T](g.ctx, g.fetcher, q)
		if err != nil {
			return newFetchError(string(g.report), q.Entity, err)
		}
		*dest = items
		return nil
	})
}

// loadPage fetches the single page selected by q into dest
func loadPage[T any](g *gather, q repository.Query, dest *[]T) {
	g.group.Go(func() error {
		page, err := repository.FetchPage[T](g.ctx, g.fetcher, q)
		if err != nil {
			return newFetchError(string(g.report), q.Entity, err)
		}
		*dest = page.Items
		return nil
	})
}

func (g *gather) wait() error {
	err := g.group.Wait()
	if err == nil {
		return nil
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) && errors.Is(err, ErrFetchAborted) {
		g.logger.Warn("report fetch aborted", zap.String("report", string(g.report)), zap.Error(err))
	} else {
		g.logger.Error("report fetch failed", zap.String("report", string(g.report)), zap.Error(err))
	}
	return err
}

func meta(res *analytics.Resolution) domain.ReportMeta {
	return domain.ReportMeta{
		Period: string(res.Period),
		Window: domain.ReportWindow{Start: res.Current.Start, End: res.Current.End},
	}
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func stageAmounts(rows []analytics.KeyedRollup) []domain.StageAmount {
	out := make([]domain.StageAmount, len(rows))
	for i, r := range rows {
		out[i] = domain.StageAmount{Stage: r.Key, Count: r.Count, Amount: money(r.Sum)}
	}
	return out
}

func stageCounts(rows []analytics.KeyedRollup) []domain.StageCount {
	out := make([]domain.StageCount, len(rows))
	for i, r := range rows {
		out[i] = domain.StageCount{Stage: r.Key, Count: r.Count}
	}
	return out
}

func monthRevenues(rows []analytics.BucketRollup) []domain.MonthRevenue {
	out := make([]domain.MonthRevenue, len(rows))
	for i, r := range rows {
		out[i] = domain.MonthRevenue{Month: r.Key, Revenue: money(r.Sum)}
	}
	return out
}

func emailStats(t analytics.EmailTally) domain.EmailStats {
	return domain.EmailStats{
		Total:     t.Total,
		Sent:      t.Sent,
		Failed:    t.Failed,
		Opened:    t.Opened,
		Clicked:   t.Clicked,
		OpenRate:  analytics.OpenRate(t),
		ClickRate: analytics.ClickRate(t),
	}
}

func decimalOf(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
