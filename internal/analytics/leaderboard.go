package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/pocket-crm/analytics-api/internal/domain"
)

// LeaderboardInput carries the record sets the ranker reads.
// Won holds won leads closed in the window, Created the leads created in the window
// and Tasks the tasks created in the window.
type LeaderboardInput struct {
	Users   []domain.User
	Won     []domain.Lead
	Created []domain.Lead
	Tasks   []domain.Task
}

// LeaderboardEntry is the performance of one salesperson
type LeaderboardEntry struct {
	UserID      string
	Name        string
	Won         int
	Revenue     decimal.Decimal
	TotalLeads  int
	SuccessRate Rate
	Calls       int
	Emails      int
	Meetings    int
	TotalTasks  int
}

// RankLeaderboard ranks users by revenue desc, then won desc, then name asc
func RankLeaderboard(in LeaderboardInput) []LeaderboardEntry {
	won := GroupByPerson(in.Won, LeadOwner, LeadValue)
	created := GroupByPerson(in.Created, LeadOwner, nil)

	type activity struct{ calls, emails, meetings, total int }
	tasks := make(map[string]*activity)
	for _, t := range in.Tasks {
		if t.AssigneeID == "" {
			continue
		}
		a, ok := tasks[t.AssigneeID]
		if !ok {
			a = &activity{}
			tasks[t.AssigneeID] = a
		}
		a.total++
		switch t.Type {
		case domain.TaskTypeAppel:
			a.calls++
		case domain.TaskTypeEmail:
			a.emails++
		case domain.TaskTypeReunion:
			a.meetings++
		}
	}

	entries := make([]LeaderboardEntry, 0, len(in.Users))
	for _, u := range in.Users {
		w := won[u.ID]
		e := LeaderboardEntry{
			UserID:      u.ID,
			Name:        u.Name,
			Won:         w.Count,
			Revenue:     w.Sum,
			TotalLeads:  created[u.ID].Count,
			SuccessRate: PercentOf(w.Count, created[u.ID].Count),
		}
		if a, ok := tasks[u.ID]; ok {
			e.Calls, e.Emails, e.Meetings, e.TotalTasks = a.calls, a.emails, a.meetings, a.total
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return rankBefore(entries[i].Revenue, entries[i].Won, entries[i].Name, entries[j].Revenue, entries[j].Won, entries[j].Name)
	})
	return entries
}

// rankBefore is the leaderboard order shared by every salesperson ranking
func rankBefore(revA decimal.Decimal, wonA int, nameA string, revB decimal.Decimal, wonB int, nameB string) bool {
	if c := revA.Cmp(revB); c != 0 {
		return c > 0
	}
	if wonA != wonB {
		return wonA > wonB
	}
	return nameA < nameB
}

// SalespersonRevenue is the won revenue of one lead owner
type SalespersonRevenue struct {
	UserID  string
	Name    string
	Revenue decimal.Decimal
	Deals   int
}

// RevenueBySalesperson groups won leads by owner with the leaderboard ordering.
// Owners unknown to users are named "N/A".
func RevenueBySalesperson(wonLeads []domain.Lead, users []domain.User) []SalespersonRevenue {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	groups := GroupByPerson(wonLeads, LeadOwner, LeadValue)
	rows := make([]SalespersonRevenue, 0, len(groups))
	for id, r := range groups {
		name, ok := names[id]
		if !ok || name == "" {
			name = "N/A"
		}
		rows = append(rows, SalespersonRevenue{UserID: id, Name: name, Revenue: r.Sum, Deals: r.Count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name == rows[j].Name && rows[i].Revenue.Equal(rows[j].Revenue) && rows[i].Deals == rows[j].Deals {
			return rows[i].UserID < rows[j].UserID
		}
		return rankBefore(rows[i].Revenue, rows[i].Deals, rows[i].Name, rows[j].Revenue, rows[j].Deals, rows[j].Name)
	})
	return rows
}
