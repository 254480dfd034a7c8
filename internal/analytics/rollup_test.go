package analytics_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocket-crm/analytics-api/internal/analytics"
	"github.com/pocket-crm/analytics-api/internal/domain"
)

func TestGroupByStatus_CanonicalOrderAndTotals(t *testing.T) {
	leads := []domain.Lead{
		lead("1", 5000, domain.LeadStatusNegociation),
		lead("2", 1000, domain.LeadStatusNouveau),
		lead("3", 250, domain.LeadStatus("archive")),
		lead("4", 2000, domain.LeadStatusNouveau),
		lead("5", 800, domain.LeadStatusGagne),
	}

	b := analytics.GroupByStatus(leads, analytics.LeadStatusOrder(), analytics.LeadStatusKey, analytics.LeadValue)

	require.Len(t, b.Rows, len(domain.LeadStatuses))
	for i, status := range domain.LeadStatuses {
		assert.Equal(t, string(status), b.Rows[i].Key)
	}

	assert.Equal(t, 2, b.Row("nouveau").Count)
	assertDecimal(t, "3000", b.Row("nouveau").Sum)
	assert.Equal(t, 0, b.Row("qualifie").Count)
	assertDecimal(t, "0", b.Row("qualifie").Sum)

	assert.Equal(t, 4, b.Canonical.Count)
	assert.Equal(t, 5, b.Overall.Count)
	assertDecimal(t, "9050", b.Overall.Sum)

	nonEmpty := b.NonEmpty()
	require.Len(t, nonEmpty, 3)
	assert.Equal(t, "nouveau", nonEmpty[0].Key)
	assert.Equal(t, "negociation", nonEmpty[1].Key)
	assert.Equal(t, "gagne", nonEmpty[2].Key)
}

func TestGroupByStatus_CountMatchesCanonicalRecords(t *testing.T) {
	sets := [][]domain.Lead{
		nil,
		{lead("a", 1, domain.LeadStatusPerdu)},
		{lead("a", 1, "x"), lead("b", 2, "y")},
		{
			lead("a", 10, domain.LeadStatusNouveau),
			lead("b", 20, domain.LeadStatusContacte),
			lead("c", 30, domain.LeadStatusQualifie),
			lead("d", 40, domain.LeadStatusProposition),
			lead("e", 50, domain.LeadStatusNegociation),
			lead("f", 60, domain.LeadStatusGagne),
			lead("g", 70, domain.LeadStatusPerdu),
			lead("h", 80, ""),
		},
	}

	for _, leads := range sets {
		b := analytics.GroupByStatus(leads, analytics.LeadStatusOrder(), analytics.LeadStatusKey, analytics.LeadValue)

		sum := 0
		for _, row := range b.Rows {
			sum += row.Count
		}
		canonical := 0
		for _, l := range leads {
			for _, s := range domain.LeadStatuses {
				if l.Status == s {
					canonical++
				}
			}
		}
		assert.Equal(t, canonical, sum)
		assert.Equal(t, canonical, b.Canonical.Count)
		assert.Equal(t, len(leads), b.Overall.Count)
	}
}

func TestGroupByChannel_ExcludesMissingKeys(t *testing.T) {
	leads := []domain.Lead{
		{ID: "1", Source: domain.ChannelEmail, Value: 100},
		{ID: "2", Source: domain.ChannelEmail, Value: 300},
		{ID: "3", Source: domain.ChannelSalon, Value: 50},
		{ID: "4", Source: "", Value: 999},
	}

	groups := analytics.GroupByChannel(leads, analytics.LeadSource, analytics.LeadValue)

	require.Len(t, groups, 2)
	assert.Equal(t, 2, groups["email"].Count)
	assertDecimal(t, "400", groups["email"].Sum)
	assert.Equal(t, 1, groups["salon"].Count)
	_, hasEmpty := groups[""]
	assert.False(t, hasEmpty)
}

func TestGroupByPerson_CountOnly(t *testing.T) {
	leads := []domain.Lead{
		{ID: "1", OwnerID: "u1"},
		{ID: "2", OwnerID: "u2"},
		{ID: "3", OwnerID: "u1"},
	}

	groups := analytics.GroupByPerson(leads, analytics.LeadOwner, nil)

	assert.Equal(t, 2, groups["u1"].Count)
	assert.True(t, groups["u1"].Sum.IsZero())
	assert.Equal(t, 3, analytics.Total(groups).Count)
}

func TestGroupByMonth_GapFree(t *testing.T) {
	res, err := analytics.ResolvePeriod(analytics.PeriodYear, refNow)
	require.NoError(t, err)

	won := func(id string, value float64, closed time.Time) domain.Lead {
		l := lead(id, value, domain.LeadStatusGagne)
		l.ClosedAt = ptr(closed)
		return l
	}
	leads := []domain.Lead{
		won("1", 1000, time.Date(2025, time.May, 3, 0, 0, 0, 0, time.UTC)),
		won("2", 500, time.Date(2025, time.May, 31, 23, 59, 59, 0, time.UTC)),
		won("3", 700, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)),
		won("4", 9999, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)),
		lead("5", 1234, domain.LeadStatusNouveau),
	}

	rows := analytics.GroupByMonth(leads, res.Buckets, analytics.LeadClosed, analytics.LeadValue)

	require.Len(t, rows, 12)
	assert.Equal(t, "2025-04", rows[0].Key)
	assert.Equal(t, "2026-03", rows[11].Key)

	assertDecimal(t, "0", rows[0].Sum)
	assertDecimal(t, "1500", rows[1].Sum)
	assert.Equal(t, 2, rows[1].Count)
	assertDecimal(t, "700", rows[11].Sum)

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Sum)
	}
	assertDecimal(t, "2200", total)
}

func TestGroupByMonth_DailyBucketsForWeek(t *testing.T) {
	res, err := analytics.ResolvePeriod(analytics.PeriodWeek, refNow)
	require.NoError(t, err)

	leads := []domain.Lead{
		{ID: "1", CreatedAt: time.Date(2026, time.March, 15, 8, 0, 0, 0, time.UTC)},
		{ID: "2", CreatedAt: time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)},
		{ID: "3", CreatedAt: time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)},
	}

	rows := analytics.GroupByMonth(leads, res.Buckets, analytics.LeadCreated, nil)

	require.Len(t, rows, 7)
	assert.Equal(t, 1, rows[0].Count)
	assert.Equal(t, 2, rows[6].Count)
	for _, r := range rows[1:6] {
		assert.Equal(t, 0, r.Count)
	}
}

func TestRankByCount_TieBreakAndLimit(t *testing.T) {
	groups := map[string]analytics.Rollup{
		"Oslo":   {Count: 3},
		"Bergen": {Count: 5},
		"Alta":   {Count: 3},
		"Moss":   {Count: 1},
	}

	rows := analytics.RankByCount(groups, 3)

	require.Len(t, rows, 3)
	assert.Equal(t, "Bergen", rows[0].Key)
	assert.Equal(t, "Alta", rows[1].Key)
	assert.Equal(t, "Oslo", rows[2].Key)
}
