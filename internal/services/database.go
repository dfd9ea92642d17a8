package services

import (
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/logger"
	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/models"
)

// InitDB initializes the database connection with connection pooling
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Get().Info("Database connection established")
	return db, nil
}

// AutoMigrate runs database migrations for the locally owned tables. Only
// draft sessions and the submission audit trail live here; transactions and
// quotas are owned by the core API.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.DraftSession{},
		&models.SubmissionRecord{},
	)
}
