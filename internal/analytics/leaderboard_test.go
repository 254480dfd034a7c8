package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/domain"
)

func owned(id, owner string, value float64, status domain.LeadStatus) domain.Lead {
	l := lead(id, value, status)
	l.OwnerID = owner
	return l
}

func TestRankLeaderboard_Ordering(t *testing.T) {
	users := []domain.User{
		{ID: "u1", Name: "Zoé"},
		{ID: "u2", Name: "Bruno"},
		{ID: "u3", Name: "Amélie"},
		{ID: "u4", Name: "Claire"},
	}
	won := []domain.Lead{
		owned("1", "u1", 5000, domain.LeadStatusGagne),
		owned("2", "u2", 2500, domain.LeadStatusGagne),
		owned("3", "u2", 2500, domain.LeadStatusGagne),
		owned("4", "u3", 5000, domain.LeadStatusGagne),
		owned("5", "u4", 9000, domain.LeadStatusGagne),
	}

	entries := analytics.RankLeaderboard(analytics.LeaderboardInput{Users: users, Won: won})

	require.Len(t, entries, 4)
	// u4 leads on revenue; u2 has equal revenue with more wins; u3 and u1 tie on both, name decides
	assert.Equal(t, []string{"u4", "u2", "u3", "u1"}, []string{entries[0].UserID, entries[1].UserID, entries[2].UserID, entries[3].UserID})
}

func TestRankLeaderboard_ActivityAndSuccessRate(t *testing.T) {
	users := []domain.User{
		{ID: "u1", Name: "Alice"},
		{ID: "u2", Name: "Bob"},
	}
	in := analytics.LeaderboardInput{
		Users: users,
		Won: []domain.Lead{
			owned("w1", "u1", 1000, domain.LeadStatusGagne),
		},
		Created: []domain.Lead{
			owned("c1", "u1", 100, domain.LeadStatusNouveau),
			owned("c2", "u1", 100, domain.LeadStatusGagne),
			owned("c3", "u1", 100, domain.LeadStatusPerdu),
			owned("c4", "u1", 100, domain.LeadStatusContacte),
		},
		Tasks: []domain.Task{
			{AssigneeID: "u1", Type: domain.TaskTypeAppel},
			{AssigneeID: "u1", Type: domain.TaskTypeAppel},
			{AssigneeID: "u1", Type: domain.TaskTypeEmail},
			{AssigneeID: "u1", Type: domain.TaskTypeReunion},
			{AssigneeID: "u1", Type: domain.TaskTypeSuivi},
			{AssigneeID: "", Type: domain.TaskTypeAppel},
		},
	}

	entries := analytics.RankLeaderboard(in)
	require.Len(t, entries, 2)

	alice := entries[0]
	assert.Equal(t, "u1", alice.UserID)
	assert.Equal(t, 1, alice.Won)
	assert.Equal(t, 4, alice.TotalLeads)
	assert.Equal(t, analytics.Rate{Value: 25, HasData: true}, alice.SuccessRate)
	assert.Equal(t, 2, alice.Calls)
	assert.Equal(t, 1, alice.Emails)
	assert.Equal(t, 1, alice.Meetings)
	assert.Equal(t, 5, alice.TotalTasks)

	bob := entries[1]
	assert.Equal(t, analytics.Rate{}, bob.SuccessRate)
	assert.True(t, bob.Revenue.IsZero())
}

func TestRevenueBySalesperson(t *testing.T) {
	users := []domain.User{{ID: "u1", Name: "Alice"}, {ID: "u2", Name: "Bob"}}
	won := []domain.Lead{
		owned("1", "u1", 1000, domain.LeadStatusGagne),
		owned("2", "u2", 3000, domain.LeadStatusGagne),
		owned("3", "ghost", 500, domain.LeadStatusGagne),
		owned("4", "", 800, domain.LeadStatusGagne),
	}

	rows := analytics.RevenueBySalesperson(won, users)

	require.Len(t, rows, 3)
	assert.Equal(t, "Bob", rows[0].Name)
	assert.Equal(t, "Alice", rows[1].Name)
	assert.Equal(t, "N/A", rows[2].Name)
	assert.Equal(t, 1, rows[2].Deals)
}
