package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/pocket-crm/analytics-api/internal/domain"
)

// SegmentContacts counts distinct contacts per company attribute (city, industry).
// Contacts without a company, or whose company has no value for the attribute, are left out.
func SegmentContacts(contacts []domain.Contact, companies []domain.Company, attr func(domain.Company) string, limit int) []KeyedRollup {
	byID := make(map[string]domain.Company, len(companies))
	for _, c := range companies {
		byID[c.ID] = c
	}

	seen := make(map[string]struct{}, len(contacts))
	distinct := make([]domain.Contact, 0, len(contacts))
	for _, c := range contacts {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		distinct = append(distinct, c)
	}

	groups := GroupByKey(distinct, func(c domain.Contact) string {
		company, ok := byID[c.CompanyID]
		if !ok {
			return ""
		}
		return attr(company)
	}, nil)
	return RankByCount(groups, limit)
}

// ClientValue is the lifetime value of one contact
type ClientValue struct {
	ContactID string
	Name      string
	LTV       decimal.Decimal
	Deals     int
}

// LifetimeValues ranks contacts by the total value of their won leads.
// Contacts with no won value are left out.
func LifetimeValues(wonLeads []domain.Lead, contacts []domain.Contact, limit int) []ClientValue {
	names := make(map[string]string, len(contacts))
	for _, c := range contacts {
		names[c.ID] = c.FullName()
	}

	groups := GroupByKey(wonLeads, func(l domain.Lead) string {
		if l.Status != domain.LeadStatusGagne {
			return ""
		}
		return l.ContactID
	}, LeadValue)

	values := make([]ClientValue, 0, len(groups))
	for id, r := range groups {
		if !r.Sum.IsPositive() {
			continue
		}
		values = append(values, ClientValue{ContactID: id, Name: names[id], LTV: r.Sum, Deals: r.Count})
	}
	sort.Slice(values, func(i, j int) bool {
		if c := values[i].LTV.Cmp(values[j].LTV); c != 0 {
			return c > 0
		}
		return values[i].ContactID < values[j].ContactID
	})
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}
	return values
}

// AverageBasket is the mean per-contact total of won leads
func AverageBasket(wonLeads []domain.Lead) Figure {
	groups := GroupByKey(wonLeads, func(l domain.Lead) string {
		if l.Status != domain.LeadStatusGagne {
			return ""
		}
		return l.ContactID
	}, LeadValue)
	if len(groups) == 0 {
		return undefined()
	}
	total := Total(groups)
	return defined(total.Sum.Div(decimal.NewFromInt(int64(len(groups)))), 2)
}

// CountTagged counts contacts carrying a tag
func CountTagged(contacts []domain.Contact, tag domain.ContactTag) int {
	n := 0
	for _, c := range contacts {
		if c.HasTag(tag) {
			n++
		}
	}
	return n
}

// DistinctContacts counts the distinct non-empty contacts referenced by leads
func DistinctContacts(leads []domain.Lead) int {
	return len(GroupByKey(leads, func(l domain.Lead) string { return l.ContactID }, nil))
}
