package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocket-crm/analytics-api/internal/domain"
)

func TestLead_SetStatusStampsClosedAt(t *testing.T) {
	at := time.Date(2026, time.March, 2, 14, 0, 0, 0, time.UTC)
	l := domain.Lead{Status: domain.LeadStatusNegociation}

	l.SetStatus(domain.LeadStatusGagne, at)
	require.NotNil(t, l.ClosedAt)
	assert.Equal(t, at, *l.ClosedAt)

	// A later transition keeps the first closing instant
	l.SetStatus(domain.LeadStatusPerdu, at.Add(time.Hour))
	assert.Equal(t, at, *l.ClosedAt)

	open := domain.Lead{Status: domain.LeadStatusNouveau}
	open.SetStatus(domain.LeadStatusContacte, at)
	assert.Nil(t, open.ClosedAt)
}

func TestInvoice_TotalAndPayment(t *testing.T) {
	inv := domain.Invoice{Status: domain.InvoiceStatusEmise, Amount: 1000, TaxRate: 20}
	inv.ComputeTotal()
	assert.Equal(t, 1200.0, inv.Total)

	paid := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, inv.MarkPaid(paid))
	assert.Equal(t, domain.InvoiceStatusPayee, inv.Status)
	assert.Equal(t, paid, *inv.PaidAt)

	draft := domain.Invoice{Status: domain.InvoiceStatusBrouillon}
	assert.ErrorIs(t, draft.MarkPaid(paid), domain.ErrInvoiceNotPayable)
	assert.Nil(t, draft.PaidAt)
}

func TestInvoice_RefreshOverdue(t *testing.T) {
	now := time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, -1)

	inv := domain.Invoice{Status: domain.InvoiceStatusEmise, DueAt: &due}
	assert.True(t, inv.RefreshOverdue(now))
	assert.Equal(t, domain.InvoiceStatusEnRetard, inv.Status)

	paid := domain.Invoice{Status: domain.InvoiceStatusPayee, DueAt: &due}
	assert.False(t, paid.RefreshOverdue(now))
	assert.Equal(t, domain.InvoiceStatusPayee, paid.Status)
}

func TestMarketingExpense_CheckCampaign(t *testing.T) {
	emailCampaign := &domain.Campaign{Type: domain.CampaignTypeEmail}
	adsCampaign := &domain.Campaign{Type: domain.CampaignTypeAds}

	tests := []struct {
		name     string
		category domain.Channel
		campaign *domain.Campaign
		wantErr  bool
	}{
		{"email spend on email campaign", domain.ChannelEmail, emailCampaign, false},
		{"ads spend on ads campaign", domain.ChannelAds, adsCampaign, false},
		{"email spend on ads campaign", domain.ChannelEmail, adsCampaign, true},
		{"salon spend on email campaign", domain.ChannelSalon, emailCampaign, true},
		{"no campaign", domain.ChannelEmail, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := domain.MarketingExpense{Category: tt.category}
			err := e.CheckCampaign(tt.campaign)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrCampaignCategoryMismatch)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestContact_HasTag(t *testing.T) {
	c := domain.Contact{Tags: "prospect, client"}
	assert.True(t, c.HasTag(domain.ContactTagClient))
	assert.False(t, c.HasTag(domain.ContactTagFournisseur))
}
