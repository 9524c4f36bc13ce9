// Package testutil provides shared test helpers.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rental-billing-backend/internal/models"
)

// OpenDB opens a fresh in-memory sqlite database with the full schema
// migrated. Each call gets its own named shared-cache database so gorm's
// connection pool sees one store, and the pool is pinned to a single
// connection to avoid sqlite write contention in concurrent tests.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(uuid.New().String(), "-", "")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Room{},
		&models.Contract{},
		&models.Invoice{},
		&models.PaymentRecord{},
		&models.PaymentProof{},
		&models.PaymentAuditLog{},
		&models.ImportBatch{},
	))
	return db
}
