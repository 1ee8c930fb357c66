package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"aigc.wiki/configs/configslog"
	"aigc.wiki/models"
	"aigc.wiki/pkg/apperrors"
	"aigc.wiki/pkg/password"
	"aigc.wiki/pkg/token"
	"aigc.wiki/repositories"

	"go.uber.org/zap"
)

// IAuthService checks admin credentials and mints session tokens.
type IAuthService interface {
	Login(ctx context.Context, username, plain string) (*models.Admin, string, error)
	TokenTTL() time.Duration
}

type AuthService struct {
	admins repositories.IAdminRepository
	tokens *token.Service
}

func NewAuthService(admins repositories.IAdminRepository, tokens *token.Service) IAuthService {
	return &AuthService{admins: admins, tokens: tokens}
}

// dummyHash is compared against when the username is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash = func() string {
	h, err := password.Hash("dummy-password-for-timing")
	if err != nil {
		panic(err)
	}
	return h
}()

// Login returns the admin and a signed token for valid credentials.
func (s *AuthService) Login(ctx context.Context, username, plain string) (*models.Admin, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || plain == "" {
		return nil, "", ErrMissingCredentials
	}

	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, "", apperrors.Internal("login failed", err)
		}
		password.Verify(plain, dummyHash)
		configslog.Log.Warn("Login attempt for unknown admin", zap.String("username", username))
		return nil, "", ErrInvalidCredentials
	}

	if !password.Verify(plain, admin.PasswordHash) {
		configslog.Log.Warn("Login attempt with wrong password", zap.String("username", username))
		return nil, "", ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(token.Claims{ID: admin.ID, Username: admin.Username})
	if err != nil {
		return nil, "", apperrors.Internal("login failed", err)
	}
	configslog.Log.Info("Admin logged in", zap.String("username", admin.Username))
	return admin, tok, nil
}

func (s *AuthService) TokenTTL() time.Duration { return s.tokens.TTL() }

var _ IAuthService = (*AuthService)(nil)
