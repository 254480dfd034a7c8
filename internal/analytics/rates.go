package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocket-crm/analytics-api/internal/domain"
)

var (
	hundred = decimal.NewFromInt(100)
	day     = decimal.NewFromInt(int64(24 * time.Hour))
)

// Rate is a percentage with an explicit has-data flag
type Rate = domain.Rate

// Figure is a metric that is null when undefined
type Figure = domain.Figure

func undefined() Figure { return Figure{} }

func defined(d decimal.Decimal, places int32) Figure {
	v := d.Round(places).InexactFloat64()
	return Figure{Value: &v, HasData: true}
}

// Percent returns num/den × 100 rounded to one decimal
func Percent(num, den decimal.Decimal) Rate {
	if den.IsZero() {
		return Rate{}
	}
	return Rate{
		Value:   num.Div(den).Mul(hundred).Round(1).InexactFloat64(),
		HasData: true,
	}
}

// PercentOf is Percent over counts
func PercentOf(num, den int) Rate {
	return Percent(decimal.NewFromInt(int64(num)), decimal.NewFromInt(int64(den)))
}

// EmailTally counts delivery and engagement over a set of email logs
type EmailTally struct {
	Total   int `json:"total"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Opened  int `json:"opened"`
	Clicked int `json:"clicked"`
}

// TallyEmails counts email logs. Opened and clicked follow the engagement counters,
// independently of the delivery status.
func TallyEmails(logs []domain.EmailLog) EmailTally {
	var t EmailTally
	for _, l := range logs {
		t.Total++
		if l.Status.IsSent() {
			t.Sent++
		}
		if l.Status == domain.EmailStatusEchoue {
			t.Failed++
		}
		if l.OpenCount > 0 {
			t.Opened++
		}
		if l.ClickCount > 0 {
			t.Clicked++
		}
	}
	return t
}

// OpenRate returns opened / sent × 100
func OpenRate(t EmailTally) Rate {
	return PercentOf(t.Opened, t.Sent)
}

// CampaignTally is the email tally of one campaign with its latest send
type CampaignTally struct {
	EmailTally
	LastSentAt time.Time
}

// TallyByCampaign tallies email logs per campaign id. Logs without a campaign are left out.
// A log without a send time counts at its creation time.
func TallyByCampaign(logs []domain.EmailLog) map[string]CampaignTally {
	grouped := make(map[string][]domain.EmailLog)
	for _, l := range logs {
		if l.CampaignID == "" {
			continue
		}
		grouped[l.CampaignID] = append(grouped[l.CampaignID], l)
	}

	out := make(map[string]CampaignTally, len(grouped))
	for id, group := range grouped {
		ct := CampaignTally{EmailTally: TallyEmails(group)}
		for _, l := range group {
			at := l.CreatedAt
			if l.SentAt != nil {
				at = *l.SentAt
			}
			if at.After(ct.LastSentAt) {
				ct.LastSentAt = at
			}
		}
		out[id] = ct
	}
	return out
}

// ClickRate returns clicked / sent × 100
func ClickRate(t EmailTally) Rate {
	return PercentOf(t.Clicked, t.Sent)
}

// ConversionRate returns won / total × 100
func ConversionRate(won, total int) Rate {
	return PercentOf(won, total)
}

// ROI returns (revenue − cost) / cost × 100, undefined unless cost > 0
func ROI(revenue, cost decimal.Decimal) Figure {
	if !cost.IsPositive() {
		return undefined()
	}
	return defined(revenue.Sub(cost).Div(cost).Mul(hundred), 1)
}

// ROAS returns revenue / cost, undefined unless cost > 0
func ROAS(revenue, cost decimal.Decimal) Figure {
	if !cost.IsPositive() {
		return undefined()
	}
	return defined(revenue.Div(cost), 2)
}

// CostPerLead returns expenses / leads, undefined when there are no leads
func CostPerLead(expenses decimal.Decimal, leads int) Figure {
	if leads <= 0 {
		return undefined()
	}
	return defined(expenses.Div(decimal.NewFromInt(int64(leads))), 2)
}

// EvolutionPct returns (current − previous) / previous × 100, undefined when previous is zero
func EvolutionPct(current, previous decimal.Decimal) Figure {
	if previous.IsZero() {
		return undefined()
	}
	return defined(current.Sub(previous).Div(previous.Abs()).Mul(hundred), 1)
}

// AvgPaymentDelay returns the mean paid_at − issued_at of paid invoices in whole days.
// Undefined when no invoice is paid.
func AvgPaymentDelay(invoices []domain.Invoice) Figure {
	var spans []time.Duration
	for _, inv := range invoices {
		if inv.Status != domain.InvoiceStatusPayee || inv.PaidAt == nil || inv.IssuedAt.IsZero() {
			continue
		}
		spans = append(spans, inv.PaidAt.Sub(inv.IssuedAt))
	}
	return meanDays(spans)
}

// AvgCloseDays returns the mean closed_at − created_at of won leads in whole days.
// Undefined when no lead is won.
func AvgCloseDays(leads []domain.Lead) Figure {
	var spans []time.Duration
	for _, l := range leads {
		if l.Status != domain.LeadStatusGagne || l.ClosedAt == nil {
			continue
		}
		spans = append(spans, l.ClosedAt.Sub(l.CreatedAt))
	}
	return meanDays(spans)
}

func meanDays(spans []time.Duration) Figure {
	if len(spans) == 0 {
		return undefined()
	}
	total := decimal.Zero
	for _, s := range spans {
		total = total.Add(decimal.NewFromInt(int64(s)))
	}
	mean := total.Div(decimal.NewFromInt(int64(len(spans)))).Div(day)
	return defined(mean, 0)
}
