package seeders

import (
	"errors"

	"aigc.wiki/configs/configslog"
	"aigc.wiki/models"
	"aigc.wiki/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedAdmin creates the initial administrator, but only when the admins table is empty.
// An existing admin is never touched, even if the configured credentials differ.
func SeedAdmin(db *gorm.DB, username, plain string) (created bool, err error) {
	if username == "" || plain == "" {
		return false, errors.New("seed admin username and password are required")
	}

	var count int64
	if err := db.Model(&models.Admin{}).Count(&count).Error; err != nil {
		configslog.Log.Error("Could not count admins", zap.Error(err))
		return false, err
	}
	if count > 0 {
		configslog.SLog.Debug("Admin already exists, skipping seed.")
		return false, nil
	}

	hash, err := password.Hash(plain)
	if err != nil {
		configslog.Log.Error("Could not hash seed admin password", zap.Error(err))
		return false, err
	}

	admin := models.Admin{Username: username, PasswordHash: hash}
	if err := db.Create(&admin).Error; err != nil {
		configslog.Log.Error("Could not create seed admin", zap.String("username", username), zap.Error(err))
		return false, err
	}

	configslog.SLog.Infof("Admin created: %s (ID: %s)", admin.Username, admin.ID)
	if plain == "admin123" {
		configslog.SLog.Warn("Seed admin uses the default password; set ADMIN_PASSWORD and recreate it.")
	}
	return true, nil
}
