package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pocket-crm/analytics-api/internal/domain"
)

var dbCounter atomic.Int64

// SetupTestDB opens an isolated in-memory SQLite database with the CRM schema
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database keeps every pooled connection on the same data
	dsn := fmt.Sprintf("file:crm_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(domain.AllModels()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// Insert creates every record and fails the test on error
func Insert(t *testing.T, db *gorm.DB, records ...interface{}) {
	t.Helper()
	for _, r := range records {
		require.NoError(t, db.Create(r).Error)
	}
}

var idCounter atomic.Int64

// NewID returns a unique record id with the given prefix
func NewID(prefix string) string {
	return fmt.Sprintf("%s%06d", prefix, idCounter.Add(1))
}
