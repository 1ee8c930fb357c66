package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Card is one gallery entry: an AI-generated image and the parameters used to make it.
// Optional columns are pointers so that empty input is stored as NULL.
type Card struct {
	BaseModel
	Title     string  `gorm:"type:text;not null" json:"title"`
	Thumbnail *string `gorm:"type:text" json:"thumbnail"`
	FullImage *string `gorm:"type:text" json:"fullImage"`

	// Model
	ModelName *string `gorm:"type:text" json:"modelName"`
	ModelType *string `gorm:"type:text" json:"modelType"`

	// Generation parameters
	Sampler  *string  `gorm:"type:text" json:"sampler"`
	Cfg      *float64 `json:"cfg"`
	Steps    *int     `json:"steps"`
	Vae      *string  `gorm:"type:text" json:"vae"`
	Upscaler *string  `gorm:"type:text" json:"upscaler"`
	Seed     *string  `gorm:"type:text" json:"seed"`
	Size     *string  `gorm:"type:text" json:"size"`

	Prompt         *string `gorm:"type:text" json:"prompt"`
	NegativePrompt *string `gorm:"type:text" json:"negativePrompt"`

	Loras []Lora `gorm:"foreignKey:CardID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"loras"`
}

// Lora is a named fine-tuning weight owned by exactly one Card.
type Lora struct {
	ID     string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	CardID string  `gorm:"type:varchar(36);index;not null" json:"cardId"`
	Name   string  `gorm:"type:text;not null" json:"name"`
	Weight float64 `gorm:"not null" json:"weight"`

	// Position keeps the submitted order of the set.
	Position int `gorm:"not null;default:0" json:"-"`
}

func (l *Lora) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
