package service

import (
	"context"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/domain"
)

const recentActivityLimit = 10

// Dashboard builds the landing page summary for the period
func (s *ReportService) Dashboard(ctx context.Context, period analytics.Period) (*domain.DashboardReport, error) {
	res, err := s.resolve(period)
	if err != nil {
		return nil, err
	}

	var (
		wonCurrent, wonPrevious         []domain.Lead
		createdCurrent, createdPrevious []domain.Lead
		open, trendWon                  []domain.Lead
		tasks                           []domain.Task
		activities                      []domain.Activity
		users                           []domain.User
	)
	g := s.gather(ctx, ReportDashboard)
	load(g, wonLeadsClosedIn(res.Current), &wonCurrent)
	load(g, wonLeadsClosedIn(res.Previous), &wonPrevious)
	load(g, leadsCreatedIn(res.Current), &createdCurrent)
	load(g, leadsCreatedIn(res.Previous), &createdPrevious)
	load(g, openLeads(), &open)
	load(g, wonLeadsClosedIn(res.Trend()), &trendWon)
	load(g, pendingTasks(), &tasks)
	loadPage(g, recentActivities(recentActivityLimit), &activities)
	load(g, allUsers(), &users)
	if err := g.wait(); err != nil {
		return nil, err
	}

	revenue := analytics.SummarizePipeline(wonCurrent).WonValue
	previousRevenue := analytics.SummarizePipeline(wonPrevious).WonValue
	pipeline := analytics.GroupByStatus(open, analytics.OpenStageOrder(), analytics.LeadStatusKey, analytics.LeadValue)
	counters := analytics.CountTasks(tasks, s.now().In(s.location))

	return &domain.DashboardReport{
		ReportMeta: meta(res),
		Revenue: domain.Comparison{
			Current:      money(revenue),
			Previous:     money(previousRevenue),
			EvolutionPct: analytics.EvolutionPct(revenue, previousRevenue),
		},
		NewProspects:        countComparison(len(createdCurrent), len(createdPrevious)),
		MeetingsToday:       counters.MeetingsToday,
		OverdueTasks:        counters.Overdue,
		ActivePipelineValue: money(pipeline.Canonical.Sum),
		WonValue:            money(revenue),
		PipelineByStage:     stageAmounts(pipeline.Rows),
		RecentActivities:    activityFeed(activities, users),
		RevenueTrend:        monthRevenues(analytics.GroupByMonth(trendWon, res.Buckets, analytics.LeadClosed, analytics.LeadValue)),
	}, nil
}

func countComparison(current, previous int) domain.Comparison {
	cur := decimalOf(current)
	prev := decimalOf(previous)
	return domain.Comparison{
		Current:      float64(current),
		Previous:     float64(previous),
		EvolutionPct: analytics.EvolutionPct(cur, prev),
	}
}

func activityFeed(activities []domain.Activity, users []domain.User) []domain.ActivityItem {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	items := make([]domain.ActivityItem, len(activities))
	for i, a := range activities {
		items[i] = domain.ActivityItem{
			ID:          a.ID,
			Type:        a.Type,
			Description: a.Description,
			Created:     a.CreatedAt,
			UserID:      a.UserID,
			UserName:    names[a.UserID],
		}
	}
	return items
}
