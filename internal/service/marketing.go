package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/domain"
)

// Marketing builds the acquisition and campaign view.
// Leads, emails and expenses are all limited to the window before they are joined.
func (s *ReportService) Marketing(ctx context.Context, period analytics.Period) (*domain.MarketingReport, error) {
	res, err := s.resolve(period)
	if err != nil {
		return nil, err
	}

	var (
		created, trendCreated []domain.Lead
		logs                  []domain.EmailLog
		expenses              []domain.MarketingExpense
		campaigns             []domain.Campaign
	)
	g := s.gather(ctx, ReportMarketing)
	load(g, leadsCreatedIn(res.Current), &created)
	load(g, leadsCreatedIn(res.Trend()), &trendCreated)
	load(g, emailLogsSentIn(res.Current), &logs)
	load(g, expensesIn(res.Current), &expenses)
	load(g, allCampaigns(), &campaigns)
	if err := g.wait(); err != nil {
		return nil, err
	}

	monthly := analytics.GroupByMonth(trendCreated, res.Buckets, analytics.LeadCreated, nil)
	leadsByMonth := make([]domain.MonthCount, len(monthly))
	for i, b := range monthly {
		leadsByMonth[i] = domain.MonthCount{Month: b.Key, Count: b.Count}
	}

	sources := analytics.RankByCount(analytics.GroupByChannel(created, analytics.LeadSource, nil), 0)
	bySource := make([]domain.SourceCount, len(sources))
	for i, r := range sources {
		bySource[i] = domain.SourceCount{Source: r.Key, Count: r.Count}
	}

	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(decimal.NewFromFloat(e.Amount))
	}

	channels := analytics.AttributeByChannel(created, expenses)
	roiByChannel := make([]domain.ChannelROI, len(channels))
	for i, a := range channels {
		roiByChannel[i] = domain.ChannelROI{
			Channel: a.Key,
			Cost:    money(a.Cost),
			Revenue: money(a.Revenue),
			Leads:   a.Leads,
			Deals:   a.Deals,
			ROI:     a.ROI,
			ROAS:    a.ROAS,
		}
	}
	var emailROI domain.Figure
	if a, ok := analytics.Find(channels, string(domain.ChannelEmail)); ok {
		emailROI = a.ROI
	}

	funnel := analytics.GroupByStatus(created, analytics.LeadStatusOrder(), analytics.LeadStatusKey, nil)

	return &domain.MarketingReport{
		ReportMeta:          meta(res),
		LeadsByMonth:        leadsByMonth,
		BySource:            bySource,
		TotalLeads:          len(created),
		Funnel:              stageCounts(funnel.Rows),
		EmailStats:          emailStats(analytics.TallyEmails(logs)),
		TotalExpenses:       money(totalExpenses),
		HasBudget:           totalExpenses.IsPositive(),
		CostPerLead:         analytics.CostPerLead(totalExpenses, len(created)),
		EmailROI:            emailROI,
		ROIByChannel:        roiByChannel,
		CampaignPerformance: campaignPerformance(created, expenses, logs, campaigns),
	}, nil
}

// campaignPerformance joins spend, return and email engagement per campaign.
// A campaign appears once it has spend, leads or emails in the window.
func campaignPerformance(leads []domain.Lead, expenses []domain.MarketingExpense, logs []domain.EmailLog, campaigns []domain.Campaign) []domain.CampaignPerformance {
	byID := make(map[string]domain.Campaign, len(campaigns))
	for _, c := range campaigns {
		byID[c.ID] = c
	}
	attributed := analytics.AttributeByCampaign(leads, expenses)
	tallies := analytics.TallyByCampaign(logs)

	rows := make([]domain.CampaignPerformance, 0, len(attributed)+len(tallies))
	seen := make(map[string]bool, len(attributed))
	for _, a := range attributed {
		seen[a.Key] = true
		rows = append(rows, domain.CampaignPerformance{
			CampaignID: a.Key,
			Cost:       money(a.Cost),
			Revenue:    money(a.Revenue),
			Leads:      a.Leads,
			Deals:      a.Deals,
			ROI:        a.ROI,
			ROAS:       a.ROAS,
		})
	}
	emailOnly := make([]string, 0, len(tallies))
	for id := range tallies {
		if !seen[id] {
			emailOnly = append(emailOnly, id)
		}
	}
	sort.Strings(emailOnly)
	for _, id := range emailOnly {
		rows = append(rows, domain.CampaignPerformance{CampaignID: id})
	}

	for i := range rows {
		c := byID[rows[i].CampaignID]
		rows[i].Name = c.Name
		rows[i].Type = c.Type
		rows[i].Status = c.Status
		rows[i].Email = emailStats(tallies[rows[i].CampaignID].EmailTally)
	}
	return rows
}
