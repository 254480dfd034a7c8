package service

import (
	"context"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/domain"
)

// Sales builds the sales statistics view.
// Summary, funnel and conversion cover leads created in the window, the pipeline covers every open lead.
func (s *ReportService) Sales(ctx context.Context, period analytics.Period) (*domain.SalesReport, error) {
	res, err := s.resolve(period)
	if err != nil {
		return nil, err
	}

	var (
		created, open        []domain.Lead
		wonCurrent, trendWon []domain.Lead
		users                []domain.User
	)
	g := s.gather(ctx, ReportSales)
	load(g, leadsCreatedIn(res.Current), &created)
	load(g, openLeads(), &open)
	load(g, wonLeadsClosedIn(res.Current), &wonCurrent)
	load(g, wonLeadsClosedIn(res.Trend()), &trendWon)
	load(g, allUsers(), &users)
	if err := g.wait(); err != nil {
		return nil, err
	}

	summary := analytics.SummarizePipeline(created)
	pipeline := analytics.GroupByStatus(open, analytics.OpenStageOrder(), analytics.LeadStatusKey, analytics.LeadValue)
	funnel := analytics.GroupByStatus(created, analytics.LeadStatusOrder(), analytics.LeadStatusKey, nil)

	sellers := analytics.RevenueBySalesperson(wonCurrent, users)
	bySalesperson := make([]domain.SalespersonRevenue, len(sellers))
	for i, r := range sellers {
		bySalesperson[i] = domain.SalespersonRevenue{
			UserID:  r.UserID,
			Name:    r.Name,
			Revenue: money(r.Revenue),
			Deals:   r.Deals,
		}
	}

	return &domain.SalesReport{
		ReportMeta: meta(res),
		Summary: domain.SalesSummary{
			TotalLeads:          summary.TotalLeads,
			WonCount:            summary.Won,
			LostCount:           summary.Lost,
			WonValue:            money(summary.WonValue),
			ActivePipelineValue: money(pipeline.Canonical.Sum),
		},
		RevenueByMonth: monthRevenues(analytics.GroupByMonth(trendWon, res.Buckets, analytics.LeadClosed, analytics.LeadValue)),
		BySalesperson:  bySalesperson,
		Pipeline:       stageAmounts(pipeline.Rows),
		Funnel:         stageCounts(funnel.Rows),
		ConversionRate: summary.ConversionRate,
		AvgCloseDays:   analytics.AvgCloseDays(wonCurrent),
	}, nil
}
