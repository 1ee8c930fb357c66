package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"aigc.wiki/models"
	"aigc.wiki/pkg/apperrors"
)

// FlexString accepts a JSON string, number or null. Form fields arrive as
// strings while API clients usually send numbers; both end up as text here.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return errors.New("expected a string or a number")
		}
		*f = FlexString(n.String())
	}
	return nil
}

func (f FlexString) String() string { return strings.TrimSpace(string(f)) }

// LoraInput is one lora entry of a card payload.
type LoraInput struct {
	Name   string     `json:"name"`
	Weight FlexString `json:"weight"`
}

// CardInput is the body accepted by the create and update endpoints.
type CardInput struct {
	Title          string      `json:"title"`
	Thumbnail      string      `json:"thumbnail"`
	FullImage      string      `json:"fullImage"`
	ModelName      string      `json:"modelName"`
	ModelType      string      `json:"modelType"`
	Sampler        string      `json:"sampler"`
	Cfg            FlexString  `json:"cfg"`
	Steps          FlexString  `json:"steps"`
	Vae            string      `json:"vae"`
	Upscaler       string      `json:"upscaler"`
	Seed           FlexString  `json:"seed"`
	Size           string      `json:"size"`
	Prompt         string      `json:"prompt"`
	NegativePrompt string      `json:"negativePrompt"`
	Loras          []LoraInput `json:"loras"`
}

// ToModel validates the input and converts it to a Card. Blank optional
// fields become NULL, unparsable numbers become NULL and loras without a name
// are dropped.
func (in CardInput) ToModel() (*models.Card, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrCardTitleRequired
	}

	card := &models.Card{
		Title:          title,
		Thumbnail:      optional(in.Thumbnail),
		FullImage:      optional(in.FullImage),
		ModelName:      optional(in.ModelName),
		ModelType:      optional(in.ModelType),
		Sampler:        optional(in.Sampler),
		Cfg:            parseFloat(in.Cfg.String()),
		Steps:          parseInt(in.Steps.String()),
		Vae:            optional(in.Vae),
		Upscaler:       optional(in.Upscaler),
		Seed:           optional(in.Seed.String()),
		Size:           optional(in.Size),
		Prompt:         optional(in.Prompt),
		NegativePrompt: optional(in.NegativePrompt),
		Loras:          []models.Lora{},
	}

	for i, l := range in.Loras {
		name := strings.TrimSpace(l.Name)
		if name == "" {
			continue
		}
		w := parseFloat(l.Weight.String())
		if w == nil {
			return nil, apperrors.Wrap(ErrInvalidLoraWeight, errors.New("lora #"+strconv.Itoa(i+1)+" ("+name+")"))
		}
		card.Loras = append(card.Loras, models.Lora{Name: name, Weight: *w})
	}
	return card, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// parseInt accepts "30" and truncates "30.9" to 30.
func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return &v
	}
	f := parseFloat(s)
	if f == nil || math.Abs(*f) > math.MaxInt32 {
		return nil
	}
	v := int(math.Trunc(*f))
	return &v
}
