package services

import "aigc.wiki/pkg/apperrors"

// Errors returned by the services. Each carries its HTTP mapping through
// apperrors so handlers can return them unchanged.
var (
	ErrCardTitleRequired  = apperrors.Validation("title is required")
	ErrCardNotFound       = apperrors.NotFound("card not found")
	ErrInvalidLoraWeight  = apperrors.Validation("lora weight must be a number")
	ErrInvalidCardBody    = apperrors.Validation("invalid card payload")
	ErrMissingCredentials = apperrors.Validation("username and password are required")
	ErrInvalidCredentials = apperrors.Auth("invalid username or password")
	ErrNoFile             = apperrors.Validation("no file selected")
	ErrInvalidType        = apperrors.Validation("unsupported file type, only JPG, PNG, GIF and WebP are allowed")
	ErrTooLarge           = apperrors.Validation("file must not exceed 10MB")
)
