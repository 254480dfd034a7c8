package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/domain"
)

func sourced(id string, source domain.Channel, campaign string, value float64, status domain.LeadStatus) domain.Lead {
	l := lead(id, value, status)
	l.Source = source
	l.CampaignID = campaign
	return l
}

func expense(amount float64, category domain.Channel, campaign string) domain.MarketingExpense {
	return domain.MarketingExpense{
		Date:       time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		Amount:     amount,
		Category:   category,
		CampaignID: campaign,
	}
}

func TestAttributeByChannel_ZeroCostAndPaidChannels(t *testing.T) {
	leads := []domain.Lead{
		sourced("e1", domain.ChannelEmail, "", 2000, domain.LeadStatusGagne),
		sourced("e2", domain.ChannelEmail, "", 900, domain.LeadStatusNouveau),
		sourced("e3", domain.ChannelEmail, "", 400, domain.LeadStatusPerdu),
		sourced("e4", domain.ChannelEmail, "", 100, domain.LeadStatusQualifie),
		sourced("a1", domain.ChannelAds, "", 1500, domain.LeadStatusGagne),
	}
	expenses := []domain.MarketingExpense{
		expense(300, domain.ChannelAds, ""),
		expense(200, domain.ChannelAds, ""),
	}

	rows := analytics.AttributeByChannel(leads, expenses)
	require.Len(t, rows, 2)

	email, ok := analytics.Find(rows, "email")
	require.True(t, ok)
	assert.Equal(t, 4, email.Leads)
	assert.Equal(t, 1, email.Deals)
	assertDecimal(t, "2000", email.Revenue)
	assertDecimal(t, "0", email.Cost)
	assert.False(t, email.ROI.Defined())
	assert.False(t, email.ROAS.Defined())

	ads, ok := analytics.Find(rows, "ads")
	require.True(t, ok)
	assertDecimal(t, "500", ads.Cost)
	assertDecimal(t, "1500", ads.Revenue)
	assert.Equal(t, 200.0, floatOf(t, ads.ROI.Value))
	assert.Equal(t, 3.0, floatOf(t, ads.ROAS.Value))

	assert.Equal(t, "email", rows[0].Key, "rows are ordered by revenue")
}

func TestAttributeByChannel_CostWithoutLeads(t *testing.T) {
	rows := analytics.AttributeByChannel(nil, []domain.MarketingExpense{expense(250, domain.ChannelSalon, "")})

	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].Leads)
	assert.Equal(t, -100.0, floatOf(t, rows[0].ROI.Value))
	assert.Equal(t, 0.0, floatOf(t, rows[0].ROAS.Value))
}

func TestAttributeByCampaign_SkipsUnlinkedRecords(t *testing.T) {
	leads := []domain.Lead{
		sourced("1", domain.ChannelEmail, "camp-a", 1000, domain.LeadStatusGagne),
		sourced("2", domain.ChannelEmail, "camp-a", 500, domain.LeadStatusContacte),
		sourced("3", domain.ChannelSiteWeb, "", 700, domain.LeadStatusGagne),
	}
	expenses := []domain.MarketingExpense{
		expense(400, domain.ChannelEmail, "camp-a"),
		expense(100, domain.ChannelSocial, "camp-b"),
		expense(999, domain.ChannelAds, ""),
	}

	rows := analytics.AttributeByCampaign(leads, expenses)
	require.Len(t, rows, 2)

	a, ok := analytics.Find(rows, "camp-a")
	require.True(t, ok)
	assert.Equal(t, 2, a.Leads)
	assert.Equal(t, 1, a.Deals)
	assert.Equal(t, 150.0, floatOf(t, a.ROI.Value))
	assert.Equal(t, 2.5, floatOf(t, a.ROAS.Value))

	b, ok := analytics.Find(rows, "camp-b")
	require.True(t, ok)
	assert.Equal(t, 0, b.Leads)

	_, ok = analytics.Find(rows, "")
	assert.False(t, ok)
}
