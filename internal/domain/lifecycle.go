package domain

import (
	"errors"
	"math"
	"time"
)

// Lifecycle errors
var (
	// ErrCampaignCategoryMismatch is returned when an expense category does not fit its campaign type
	ErrCampaignCategoryMismatch = errors.New("expense category does not match campaign type")

	// ErrInvoiceNotPayable is returned when a cancelled or draft invoice is marked paid
	ErrInvoiceNotPayable = errors.New("invoice cannot be marked as paid in its current status")
)

// SetStatus moves the lead to a new stage and stamps closed_at the first time it is won or lost
func (l *Lead) SetStatus(status LeadStatus, at time.Time) {
	if status.IsClosed() && status != l.Status && l.ClosedAt == nil {
		closed := at.UTC()
		l.ClosedAt = &closed
	}
	l.Status = status
}

// ComputeTotal derives the tax-inclusive total from amount and tax rate
func (i *Invoice) ComputeTotal() {
	total := i.Amount * (1 + i.TaxRate/100)
	i.Total = math.Round(total*100) / 100
}

// MarkPaid settles the invoice at the given instant
func (i *Invoice) MarkPaid(at time.Time) error {
	if i.Status == InvoiceStatusAnnulee || i.Status == InvoiceStatusBrouillon {
		return ErrInvoiceNotPayable
	}
	paid := at.UTC()
	i.PaidAt = &paid
	i.Status = InvoiceStatusPayee
	return nil
}

// RefreshOverdue turns an issued invoice past its due date into an overdue one.
// Returns true when the status changed.
func (i *Invoice) RefreshOverdue(now time.Time) bool {
	if i.Status != InvoiceStatusEmise || i.DueAt == nil {
		return false
	}
	if i.DueAt.Before(now) {
		i.Status = InvoiceStatusEnRetard
		return true
	}
	return false
}

// CheckCampaign validates that the expense category is consistent with the campaign it funds.
// Email spend must go to email campaigns and email campaigns only receive email spend.
func (e *MarketingExpense) CheckCampaign(campaign *Campaign) error {
	if campaign == nil {
		return nil
	}
	isEmailSpend := e.Category == ChannelEmail
	isEmailCampaign := campaign.Type == CampaignTypeEmail
	if isEmailSpend != isEmailCampaign {
		return ErrCampaignCategoryMismatch
	}
	return nil
}
