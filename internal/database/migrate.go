package database

import (
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"roombooking/internal/domain"
	"roombooking/migrations"
)

// AutoMigrate owns the table layout. Parents first so RESTRICT foreign keys resolve.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Room{},
		&domain.PaymentMethod{},
		&domain.Promotion{},
		&domain.Booking{},
		&domain.Payment{},
		&domain.MonthlyRental{},
	)
}

// RunMigrations applies the goose migrations in dir on top of AutoMigrate:
// the Postgres overlap exclusion constraint and default reference data.
func RunMigrations(db *gorm.DB, dir string, log *logrus.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}

	dialect := "sqlite3"
	if db.Dialector.Name() == DialectPostgres {
		dialect = "postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	migrations.SetDialect(dialect)
	if log != nil {
		goose.SetLogger(log)
	}

	if err := goose.Up(sqlDB, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
