package services

import (
	"context"
	"errors"

	"aigc.wiki/configs/configslog"
	"aigc.wiki/models"
	"aigc.wiki/pkg/apperrors"
	"aigc.wiki/repositories"

	"go.uber.org/zap"
)

// ICardService card operations used by the API and the gallery pages.
type ICardService interface {
	ListCards(ctx context.Context) ([]models.Card, error)
	GetCard(ctx context.Context, id string) (*models.Card, error)
	CreateCard(ctx context.Context, in CardInput) (*models.Card, error)
	UpdateCard(ctx context.Context, id string, in CardInput) (*models.Card, error)
	DeleteCard(ctx context.Context, id string) error
	CountCards(ctx context.Context) (int64, error)
}

// CardService implements ICardService.
type CardService struct {
	repo repositories.ICardRepository
}

func NewCardService(repo repositories.ICardRepository) ICardService {
	return &CardService{repo: repo}
}

// ListCards returns every card, newest first.
func (s *CardService) ListCards(ctx context.Context) ([]models.Card, error) {
	cards, err := s.repo.GetAllCards(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to load cards", err)
	}
	return cards, nil
}

func (s *CardService) GetCard(ctx context.Context, id string) (*models.Card, error) {
	card, err := s.repo.GetCardByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "failed to load card")
	}
	return card, nil
}

// CreateCard validates in and stores it with its loras.
func (s *CardService) CreateCard(ctx context.Context, in CardInput) (*models.Card, error) {
	card, err := in.ToModel()
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateCard(ctx, card); err != nil {
		return nil, apperrors.Internal("failed to create card", err)
	}
	configslog.Log.Info("Card created", zap.String("id", card.ID), zap.Int("loras", len(card.Loras)))
	return card, nil
}

// UpdateCard replaces every field of card id, including the whole lora set.
// Validation runs before the lookup, so an empty title is a 400 even for an
// unknown id.
func (s *CardService) UpdateCard(ctx context.Context, id string, in CardInput) (*models.Card, error) {
	card, err := in.ToModel()
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateCard(ctx, id, card)
	if err != nil {
		return nil, mapRepoError(err, "failed to update card")
	}
	configslog.Log.Info("Card updated", zap.String("id", id), zap.Int("loras", len(updated.Loras)))
	return updated, nil
}

func (s *CardService) DeleteCard(ctx context.Context, id string) error {
	if err := s.repo.DeleteCard(ctx, id); err != nil {
		return mapRepoError(err, "failed to delete card")
	}
	configslog.SLog.Infof("Card deleted: %s", id)
	return nil
}

func (s *CardService) CountCards(ctx context.Context) (int64, error) {
	n, err := s.repo.GetCardCount(ctx)
	if err != nil {
		return 0, apperrors.Internal("failed to count cards", err)
	}
	return n, nil
}

func mapRepoError(err error, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrCardNotFound
	}
	return apperrors.Internal(msg, err)
}

var _ ICardService = (*CardService)(nil)
