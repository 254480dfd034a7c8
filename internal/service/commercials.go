package service

import (
	"context"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/domain"
)

// Commercials builds the salesperson leaderboard for admins and commercials
func (s *ReportService) Commercials(ctx context.Context, period analytics.Period) (*domain.CommercialsReport, error) {
	res, err := s.resolve(period)
	if err != nil {
		return nil, err
	}

	var in analytics.LeaderboardInput
	g := s.gather(ctx, ReportCommercials)
	load(g, salesUsers(), &in.Users)
	load(g, wonLeadsClosedIn(res.Current), &in.Won)
	load(g, leadsCreatedIn(res.Current), &in.Created)
	load(g, tasksCreatedIn(res.Current), &in.Tasks)
	if err := g.wait(); err != nil {
		return nil, err
	}

	entries := analytics.RankLeaderboard(in)
	rows := make([]domain.LeaderboardRow, len(entries))
	for i, e := range entries {
		rows[i] = domain.LeaderboardRow{
			UserID:      e.UserID,
			Name:        e.Name,
			Won:         e.Won,
			Revenue:     money(e.Revenue),
			TotalLeads:  e.TotalLeads,
			SuccessRate: e.SuccessRate,
			Calls:       e.Calls,
			Emails:      e.Emails,
			Meetings:    e.Meetings,
			TotalTasks:  e.TotalTasks,
		}
	}

	return &domain.CommercialsReport{ReportMeta: meta(res), Leaderboard: rows}, nil
}
