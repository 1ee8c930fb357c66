package repositories

import (
	"context"
	"errors"

	"aigc.wiki/configs/configslog"
	"aigc.wiki/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ICardRepository card persistence.
type ICardRepository interface {
	GetAllCards(ctx context.Context) ([]models.Card, error)
	GetCardByID(ctx context.Context, id string) (*models.Card, error)
	CreateCard(ctx context.Context, card *models.Card) error
	UpdateCard(ctx context.Context, id string, card *models.Card) (*models.Card, error)
	DeleteCard(ctx context.Context, id string) error
	GetCardCount(ctx context.Context) (int64, error)
	FindLorasByCardID(ctx context.Context, cardID string) ([]models.Lora, error)
}

// CardRepository implements ICardRepository with gorm.
type CardRepository struct {
	db *gorm.DB
}

// NewCardRepository works on db, which may also be a transaction.
func NewCardRepository(db *gorm.DB) ICardRepository {
	return &CardRepository{db: db}
}

func preloadLoras(db *gorm.DB) *gorm.DB {
	return db.Preload("Loras", func(q *gorm.DB) *gorm.DB {
		return q.Order("position ASC")
	})
}

// GetAllCards lists every card, newest first, with its loras.
func (r *CardRepository) GetAllCards(ctx context.Context) ([]models.Card, error) {
	cards := []models.Card{}
	err := preloadLoras(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Find(&cards).Error
	if err != nil {
		configslog.Log.Error("CardRepository.GetAllCards: DB error", zap.Error(err))
		return nil, err
	}
	for i := range cards {
		if cards[i].Loras == nil {
			cards[i].Loras = []models.Lora{}
		}
	}
	return cards, nil
}

// GetCardByID finds a card with its loras.
func (r *CardRepository) GetCardByID(ctx context.Context, id string) (*models.Card, error) {
	return findCard(preloadLoras(r.db.WithContext(ctx)), id)
}

func findCard(db *gorm.DB, id string) (*models.Card, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	var card models.Card
	if err := db.Where("id = ?", id).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("CardRepository: find card failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if card.Loras == nil {
		card.Loras = []models.Lora{}
	}
	return &card, nil
}

// CreateCard inserts the card and its loras. gorm wraps the association
// inserts in the same transaction.
func (r *CardRepository) CreateCard(ctx context.Context, card *models.Card) error {
	if card == nil {
		return errors.New("card to create must not be nil")
	}
	for i := range card.Loras {
		card.Loras[i].Position = i
	}
	if err := r.db.WithContext(ctx).Create(card).Error; err != nil {
		configslog.Log.Error("CardRepository.CreateCard: DB error", zap.Error(err))
		return err
	}
	if card.Loras == nil {
		card.Loras = []models.Lora{}
	}
	return nil
}

// UpdateCard overwrites every scalar column of card id and replaces its whole
// lora set with card.Loras. The row lock, the lora delete and the re-insert run
// in one transaction so readers never see a half-replaced set.
func (r *CardRepository) UpdateCard(ctx context.Context, id string, card *models.Card) (*models.Card, error) {
	if card == nil {
		return nil, errors.New("card to update must not be nil")
	}

	var updated *models.Card
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Card
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Model(&existing).Updates(scalarColumns(card)).Error; err != nil {
			return err
		}

		if err := tx.Where("card_id = ?", id).Delete(&models.Lora{}).Error; err != nil {
			return err
		}
		if len(card.Loras) > 0 {
			loras := make([]models.Lora, len(card.Loras))
			for i, l := range card.Loras {
				loras[i] = models.Lora{CardID: id, Name: l.Name, Weight: l.Weight, Position: i}
			}
			if err := tx.Create(&loras).Error; err != nil {
				return err
			}
		}

		updated, err = findCard(preloadLoras(tx), id)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			configslog.Log.Error("CardRepository.UpdateCard: transaction failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return updated, nil
}

// scalarColumns lists every column an update replaces. A map is used so nil
// pointers are written as NULL instead of being skipped.
func scalarColumns(c *models.Card) map[string]interface{} {
	return map[string]interface{}{
		"title":           c.Title,
		"thumbnail":       c.Thumbnail,
		"full_image":      c.FullImage,
		"model_name":      c.ModelName,
		"model_type":      c.ModelType,
		"sampler":         c.Sampler,
		"cfg":             c.Cfg,
		"steps":           c.Steps,
		"vae":             c.Vae,
		"upscaler":        c.Upscaler,
		"seed":            c.Seed,
		"size":            c.Size,
		"prompt":          c.Prompt,
		"negative_prompt": c.NegativePrompt,
	}
}

// DeleteCard removes the card and its loras. The explicit lora delete keeps the
// cascade working on databases where the FK constraint is not enforced.
func (r *CardRepository) DeleteCard(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("card_id = ?", id).Delete(&models.Lora{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Card{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		configslog.Log.Error("CardRepository.DeleteCard: transaction failed", zap.String("id", id), zap.Error(err))
	}
	return err
}

// GetCardCount returns the number of cards.
func (r *CardRepository) GetCardCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Card{}).Count(&count).Error
	return count, err
}

// FindLorasByCardID returns the loras stored for cardID, in submitted order.
func (r *CardRepository) FindLorasByCardID(ctx context.Context, cardID string) ([]models.Lora, error) {
	loras := []models.Lora{}
	err := r.db.WithContext(ctx).Where("card_id = ?", cardID).Order("position ASC").Find(&loras).Error
	return loras, err
}

var _ ICardRepository = (*CardRepository)(nil)
