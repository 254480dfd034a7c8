package analytics_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/pocket-crm/analytics-api/internal/domain"
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func lead(id string, value float64, status domain.LeadStatus) domain.Lead {
	return domain.Lead{
		ID:        id,
		Title:     "Lead " + id,
		Value:     value,
		Status:    status,
		CreatedAt: refNow.AddDate(0, 0, -3),
	}
}

func ptr(t time.Time) *time.Time { return &t }

func floatOf(t *testing.T, v *float64) float64 {
	t.Helper()
	if v == nil {
		t.Fatalf("expected a defined value")
	}
	return *v
}
