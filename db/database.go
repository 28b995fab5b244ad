package db

import (
	"github.com/mdmdirector/devicesweep/types"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to the audit database described by dsn
func Open(dsn string) error {
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return errors.Wrap(err, "Open")
	}
	return nil
}

// Migrate creates or updates the audit tables
func Migrate() error {
	if DB == nil {
		return errors.New("Migrate: database is not open")
	}
	if err := DB.AutoMigrate(&types.ActionRecord{}); err != nil {
		return errors.Wrap(err, "Migrate")
	}
	return nil
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return errors.Wrap(err, "Close")
	}
	return sqlDB.Close()
}
