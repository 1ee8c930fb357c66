package migrations

import (
	"aigc.wiki/configs/configslog"
	"aigc.wiki/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MigrateCardsTables creates cards and loras. Loras reference cards with ON DELETE CASCADE.
func MigrateCardsTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating cards & loras tables...")
	err := db.AutoMigrate(&models.Card{}, &models.Lora{})
	if err != nil {
		configslog.Log.Error("Failed to migrate cards & loras tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Cards & loras tables migrated successfully")
	return nil
}
