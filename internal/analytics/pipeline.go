package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocket-crm/analytics-api/internal/domain"
)

// LeadStatusKey groups leads by pipeline stage
func LeadStatusKey(l domain.Lead) string { return string(l.Status) }

// LeadValue is the monetary value of a lead
func LeadValue(l domain.Lead) decimal.Decimal { return decimal.NewFromFloat(l.Value) }

// LeadOwner groups leads by owning user
func LeadOwner(l domain.Lead) string { return l.OwnerID }

// LeadSource groups leads by acquisition channel
func LeadSource(l domain.Lead) string { return string(l.Source) }

// LeadCreated buckets leads by creation instant
func LeadCreated(l domain.Lead) (time.Time, bool) { return l.CreatedAt, !l.CreatedAt.IsZero() }

// LeadClosed buckets leads by closing instant
func LeadClosed(l domain.Lead) (time.Time, bool) {
	if l.ClosedAt == nil {
		return time.Time{}, false
	}
	return *l.ClosedAt, true
}

// InvoiceStatusKey groups invoices by billing status
func InvoiceStatusKey(i domain.Invoice) string { return string(i.Status) }

// InvoiceTotal is the tax-inclusive amount of an invoice
func InvoiceTotal(i domain.Invoice) decimal.Decimal { return decimal.NewFromFloat(i.Total) }

// InvoicePaid buckets invoices by payment instant
func InvoicePaid(i domain.Invoice) (time.Time, bool) {
	if i.PaidAt == nil {
		return time.Time{}, false
	}
	return *i.PaidAt, true
}

// LeadStatusOrder is the canonical pipeline order as grouping keys
func LeadStatusOrder() []string {
	return statusKeys(domain.LeadStatuses)
}

// OpenStageOrder is the canonical order of open pipeline stages as grouping keys
func OpenStageOrder() []string {
	return statusKeys(domain.OpenLeadStatuses)
}

// InvoiceStatusOrder is the canonical invoice status order as grouping keys
func InvoiceStatusOrder() []string {
	return statusKeys(domain.InvoiceStatuses)
}

func statusKeys[S ~string](statuses []S) []string {
	keys := make([]string, len(statuses))
	for i, s := range statuses {
		keys[i] = string(s)
	}
	return keys
}

// PipelineSummary condenses a set of leads into headline figures
type PipelineSummary struct {
	TotalLeads     int
	Won            int
	WonValue       decimal.Decimal
	Lost           int
	Open           int
	OpenValue      decimal.Decimal
	ConversionRate Rate
}

// SummarizePipeline computes open pipeline value, won value and conversion over leads
func SummarizePipeline(leads []domain.Lead) PipelineSummary {
	breakdown := GroupByStatus(leads, LeadStatusOrder(), LeadStatusKey, LeadValue)

	s := PipelineSummary{
		TotalLeads: len(leads),
		WonValue:   decimal.Zero,
		OpenValue:  decimal.Zero,
	}
	for _, stage := range domain.OpenLeadStatuses {
		row := breakdown.Row(string(stage))
		s.Open += row.Count
		s.OpenValue = s.OpenValue.Add(row.Sum)
	}
	won := breakdown.Row(string(domain.LeadStatusGagne))
	s.Won = won.Count
	s.WonValue = won.Sum
	s.Lost = breakdown.Row(string(domain.LeadStatusPerdu)).Count
	s.ConversionRate = ConversionRate(s.Won, s.TotalLeads)
	return s
}

// TaskCounters are the dashboard workload counters
type TaskCounters struct {
	MeetingsToday int
	Overdue       int
}

// CountTasks counts meetings due today and overdue tasks as of now.
// Today is the calendar day of now in its own location.
func CountTasks(tasks []domain.Task, now time.Time) TaskCounters {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today := Window{Start: dayStart, End: dayStart.AddDate(0, 0, 1)}

	var c TaskCounters
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		if t.Type == domain.TaskTypeReunion && !t.Status.IsDone() && today.Contains(*t.DueDate) {
			c.MeetingsToday++
		}
		if (t.Status == domain.TaskStatusAFaire || t.Status == domain.TaskStatusEnCours) && t.DueDate.Before(now) {
			c.Overdue++
		}
	}
	return c
}
