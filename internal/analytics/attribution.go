package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/pocket-crm/analytics-api/internal/domain"
)

// Attribution is the spend and return of one channel or campaign
type Attribution struct {
	Key     string
	Cost    decimal.Decimal
	Revenue decimal.Decimal
	Leads   int
	Deals   int
	ROI     Figure
	ROAS    Figure
}

// AttributeByChannel joins expenses to leads by channel key.
// Leads and expenses must already be limited to the report window.
func AttributeByChannel(leads []domain.Lead, expenses []domain.MarketingExpense) []Attribution {
	return attribute(leads, expenses,
		func(l domain.Lead) string { return string(l.Source) },
		func(e domain.MarketingExpense) string { return string(e.Category) },
	)
}

// AttributeByCampaign joins expenses to leads by campaign id.
// Records without a campaign are left out.
func AttributeByCampaign(leads []domain.Lead, expenses []domain.MarketingExpense) []Attribution {
	return attribute(leads, expenses,
		func(l domain.Lead) string { return l.CampaignID },
		func(e domain.MarketingExpense) string { return e.CampaignID },
	)
}

// attribute computes one row per key present in either leads or expenses.
// Revenue is the value of won leads credited to their originating key.
func attribute(leads []domain.Lead, expenses []domain.MarketingExpense, leadKey KeyFunc[domain.Lead], expenseKey KeyFunc[domain.MarketingExpense]) []Attribution {
	costs := GroupByKey(expenses, expenseKey, func(e domain.MarketingExpense) decimal.Decimal {
		return decimal.NewFromFloat(e.Amount)
	})
	generated := GroupByKey(leads, leadKey, nil)
	won := GroupByKey(leads, func(l domain.Lead) string {
		if l.Status != domain.LeadStatusGagne {
			return ""
		}
		return leadKey(l)
	}, LeadValue)

	keys := make(map[string]struct{}, len(costs)+len(generated))
	for k := range costs {
		keys[k] = struct{}{}
	}
	for k := range generated {
		keys[k] = struct{}{}
	}

	rows := make([]Attribution, 0, len(keys))
	for key := range keys {
		cost := costs[key].Sum
		revenue := won[key].Sum
		rows = append(rows, Attribution{
			Key:     key,
			Cost:    cost,
			Revenue: revenue,
			Leads:   generated[key].Count,
			Deals:   won[key].Count,
			ROI:     ROI(revenue, cost),
			ROAS:    ROAS(revenue, cost),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Revenue.Cmp(rows[j].Revenue); c != 0 {
			return c > 0
		}
		if c := rows[i].Cost.Cmp(rows[j].Cost); c != 0 {
			return c > 0
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

// Find returns the attribution row of a key
func Find(rows []Attribution, key string) (Attribution, bool) {
	for _, r := range rows {
		if r.Key == key {
			return r, true
		}
	}
	return Attribution{}, false
}
