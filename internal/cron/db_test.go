package cron

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hannah-myrrh/csu-biolab-alers/pkg/db/models"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:cron_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Laboratory{},
		&models.Equipment{},
		&models.Reservation{},
		&models.Notification{},
	))
	return db
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test"})
}
