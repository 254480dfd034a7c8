package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocket-crm/analytics-api/internal/database"
	"github.com/pocket-crm/analytics-api/internal/testutil"
)

func TestHealthCheckWithStats(t *testing.T) {
	db := testutil.SetupTestDB(t)

	stats, err := database.HealthCheckWithStats(context.Background(), db)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 1)
}

func TestHealthCheck_ClosedDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.Error(t, database.HealthCheck(context.Background(), db))
}

func TestAutoMigrate_IsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	assert.NoError(t, database.AutoMigrate(db))
}
