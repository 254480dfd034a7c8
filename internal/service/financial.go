package service

import (
	"context"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/domain"
)

// Financial builds the invoicing and forecast view for admins and commercials.
// Invoice figures cover invoices issued in the window, the forecast covers every open lead.
func (s *ReportService) Financial(ctx context.Context, period analytics.Period) (*domain.FinancialReport, error) {
	res, err := s.resolve(period)
	if err != nil {
		return nil, err
	}

	var (
		issued, paid []domain.Invoice
		open         []domain.Lead
	)
	g := s.gather(ctx, ReportFinancial)
	load(g, invoicesIssuedIn(res.Current), &issued)
	load(g, invoicesPaidIn(res.Trend()), &paid)
	load(g, openLeads(), &open)
	if err := g.wait(); err != nil {
		return nil, err
	}

	forecast, err := analytics.Forecast(open, s.weights)
	if err != nil {
		return nil, err
	}

	breakdown := analytics.GroupByStatus(issued, analytics.InvoiceStatusOrder(), analytics.InvoiceStatusKey, analytics.InvoiceTotal)
	byStatus := make([]domain.InvoiceStatusRow, len(breakdown.Rows))
	for i, r := range breakdown.Rows {
		byStatus[i] = domain.InvoiceStatusRow{Status: r.Key, Count: r.Count, Amount: money(r.Sum)}
	}

	// drafts and cancelled invoices are not billed
	invoiced := breakdown.Canonical.Sum.
		Sub(breakdown.Row(string(domain.InvoiceStatusBrouillon)).Sum).
		Sub(breakdown.Row(string(domain.InvoiceStatusAnnulee)).Sum)

	stages := make([]domain.ForecastStage, len(forecast.Stages))
	for i, st := range forecast.Stages {
		stages[i] = domain.ForecastStage{
			Stage:       string(st.Stage),
			Count:       st.Count,
			TotalAmount: money(st.TotalAmount),
			Weight:      st.Weight.InexactFloat64(),
			Weighted:    money(st.Weighted),
		}
	}

	trend := analytics.GroupByMonth(paid, res.Buckets, analytics.InvoicePaid, analytics.InvoiceTotal)
	revenueByMonth := make([]domain.MonthAmount, len(trend))
	for i, b := range trend {
		revenueByMonth[i] = domain.MonthAmount{Month: b.Key, Amount: money(b.Sum)}
	}

	return &domain.FinancialReport{
		ReportMeta:      meta(res),
		ByStatus:        byStatus,
		TotalInvoiced:   money(invoiced),
		AvgPaymentDelay: analytics.AvgPaymentDelay(issued),
		Forecast:        money(forecast.Total),
		ForecastVersion: forecast.Version,
		ForecastByStage: stages,
		RevenueByMonth:  revenueByMonth,
	}, nil
}
