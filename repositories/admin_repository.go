package repositories

import (
	"context"
	"errors"

	"aigc.wiki/configs/configslog"
	"aigc.wiki/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IAdminRepository admin lookups used by login.
type IAdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	Count(ctx context.Context) (int64, error)
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) IAdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	if username == "" {
		return nil, ErrNotFound
	}
	return r.first(ctx, "username = ?", username)
}

func (r *AdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return r.first(ctx, "id = ?", id)
}

func (r *AdminRepository) first(ctx context.Context, query string, arg interface{}) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).Where(query, arg).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("AdminRepository: DB error", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Admin{}).Count(&count).Error
	return count, err
}

var _ IAdminRepository = (*AdminRepository)(nil)
