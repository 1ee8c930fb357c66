package database

import (
	"errors"
	"fmt"

	"aigc.wiki/configs/configslog"
	"aigc.wiki/database/migrations"
	"aigc.wiki/database/seeders"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options selects the initialization steps.
type Options struct {
	Migrate       bool
	Seed          bool
	AdminUsername string
	AdminPassword string
}

// Initialize runs migrations and seeders inside one transaction. Any failure
// rolls the whole batch back.
func Initialize(db *gorm.DB, opts Options) (err error) {
	if !opts.Migrate && !opts.Seed {
		configslog.SLog.Info("Neither migrate nor seed requested, nothing to do.")
		return nil
	}

	tx := db.Begin()
	if tx.Error != nil {
		configslog.Log.Error("Could not begin database transaction", zap.Error(tx.Error))
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			configslog.Log.Error("Database initialization panicked", zap.Any("panic_info", r))
			err = fmt.Errorf("database initialization panicked: %v", r)
			return
		}
		if err != nil {
			configslog.SLog.Warnw("Rolling back initialization after error", "error", err)
			if rbErr := tx.Rollback().Error; rbErr != nil && !errors.Is(rbErr, gorm.ErrInvalidTransaction) {
				configslog.Log.Error("Rollback failed", zap.Error(rbErr))
			}
		}
	}()

	configslog.SLog.Info("Database initialization starting...")

	if opts.Migrate {
		if err = RunMigrationsInOrder(tx); err != nil {
			return err
		}
	} else {
		configslog.SLog.Info("Migrate flag not set, skipping migrations.")
	}

	if opts.Seed {
		if err = CheckAndRunSeeders(tx, opts.AdminUsername, opts.AdminPassword); err != nil {
			return err
		}
	} else {
		configslog.SLog.Info("Seed flag not set, skipping seeders.")
	}

	if err = tx.Commit().Error; err != nil {
		configslog.Log.Error("Commit failed", zap.Error(err))
		return err
	}

	configslog.SLog.Info("Database initialization completed")
	return nil
}

func RunMigrationsInOrder(db *gorm.DB) error {
	configslog.SLog.Info("Running migrations in order...")

	configslog.SLog.Info(" -> Admin migrations...")
	if err := migrations.MigrateAdminsTable(db); err != nil {
		return err
	}

	// loras depends on cards
	configslog.SLog.Info(" -> Card migrations...")
	if err := migrations.MigrateCardsTables(db); err != nil {
		return err
	}

	configslog.SLog.Info("All migrations completed.")
	return nil
}

func CheckAndRunSeeders(db *gorm.DB, adminUsername, adminPassword string) error {
	configslog.SLog.Info("Checking seed admin...")
	if _, err := seeders.SeedAdmin(db, adminUsername, adminPassword); err != nil {
		configslog.Log.Error("Seeding admin failed", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Seeders completed.")
	return nil
}
