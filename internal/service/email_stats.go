package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/domain"
)

const (
	reportEmailGlobal   ReportName = "email_global"
	reportEmailCampaign ReportName = "email_campaign"
)

// GlobalEmailStats tallies every email log
func (s *ReportService) GlobalEmailStats(ctx context.Context) (*domain.EmailStats, error) {
	var logs []domain.EmailLog
	g := s.gather(ctx, reportEmailGlobal)
	load(g, allEmailLogs(), &logs)
	if err := g.wait(); err != nil {
		return nil, err
	}

	stats := emailStats(analytics.TallyEmails(logs))
	return &stats, nil
}

// CampaignEmailStatsList tallies the logs of every campaign that sent email, most recent send first
func (s *ReportService) CampaignEmailStatsList(ctx context.Context) ([]domain.CampaignEmailStats, error) {
	var (
		campaigns []domain.Campaign
		logs      []domain.EmailLog
	)
	g := s.gather(ctx, reportEmailCampaign)
	load(g, allCampaigns(), &campaigns)
	load(g, campaignEmailLogs(), &logs)
	if err := g.wait(); err != nil {
		return nil, err
	}

	tallies := analytics.TallyByCampaign(logs)
	rows := make([]domain.CampaignEmailStats, 0, len(tallies))
	for _, c := range campaigns {
		t, ok := tallies[c.ID]
		if !ok {
			continue
		}
		rows = append(rows, campaignEmailStats(c, t))
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := lastSent(rows[i]), lastSent(rows[j])
		if !a.Equal(b) {
			return a.After(b)
		}
		return rows[i].CampaignID < rows[j].CampaignID
	})
	return rows, nil
}

// CampaignEmailStats tallies the logs of one campaign
func (s *ReportService) CampaignEmailStats(ctx context.Context, campaignID string) (*domain.CampaignEmailStats, error) {
	var (
		campaigns []domain.Campaign
		logs      []domain.EmailLog
	)
	g := s.gather(ctx, reportEmailCampaign)
	loadPage(g, campaignByID(campaignID), &campaigns)
	load(g, emailLogsOfCampaign(campaignID), &logs)
	if err := g.wait(); err != nil {
		return nil, err
	}
	if len(campaigns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCampaignNotFound, campaignID)
	}

	stats := campaignEmailStats(campaigns[0], analytics.TallyByCampaign(logs)[campaignID])
	return &stats, nil
}

func campaignEmailStats(c domain.Campaign, t analytics.CampaignTally) domain.CampaignEmailStats {
	stats := domain.CampaignEmailStats{
		CampaignID:     c.ID,
		CampaignName:   c.Name,
		CampaignStatus: c.Status,
		EmailStats:     emailStats(t.EmailTally),
	}
	if !t.LastSentAt.IsZero() {
		last := t.LastSentAt
		stats.LastSentAt = &last
	}
	return stats
}

func lastSent(s domain.CampaignEmailStats) time.Time {
	if s.LastSentAt == nil {
		return time.Time{}
	}
	return *s.LastSentAt
}
