// Package token issues and validates the signed session tokens carried in the
// admin cookie. Tokens are stateless: nothing is stored server side, so a token
// stays valid until it expires.
package token

import (
	"errors"
	"time"

	"github.com/gorilla/securecookie"
)

// DefaultTTL is the lifetime of a freshly issued token.
const DefaultTTL = 24 * time.Hour

// name binds the HMAC to this token kind.
const name = "admin_token"

var ErrInvalidClaims = errors.New("token: claims need an id and a username")

// Claims identify the admin a token was issued to.
type Claims struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// Service signs claims with a secret fixed at construction.
type Service struct {
	codec *securecookie.SecureCookie
	ttl   time.Duration
	now   func() time.Time
}

// New returns a Service that signs with secret. The secret is copied.
func New(secret []byte, opts ...Option) *Service {
	key := make([]byte, len(secret))
	copy(key, secret)

	s := &Service{ttl: DefaultTTL, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	s.codec = securecookie.New(key, nil).
		SetSerializer(securecookie.JSONEncoder{}).
		MaxAge(int(s.ttl / time.Second))
	return s
}

// TTL returns the token lifetime, used for the cookie Max-Age.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs c after stamping IssuedAt and ExpiresAt.
func (s *Service) Issue(c Claims) (string, error) {
	if c.ID == "" || c.Username == "" {
		return "", ErrInvalidClaims
	}
	now := s.now()
	c.IssuedAt = now.Unix()
	c.ExpiresAt = now.Add(s.ttl).Unix()
	return s.codec.Encode(name, c)
}

// Validate returns the claims of a well-signed, unexpired token. Every failure,
// whatever its cause, is reported as ok == false.
func (s *Service) Validate(tok string) (claims *Claims, ok bool) {
	if tok == "" {
		return nil, false
	}
	defer func() {
		if r := recover(); r != nil {
			claims, ok = nil, false
		}
	}()

	var c Claims
	if err := s.codec.Decode(name, tok, &c); err != nil {
		return nil, false
	}
	if c.ID == "" || c.Username == "" {
		return nil, false
	}
	if !s.now().Before(time.Unix(c.ExpiresAt, 0)) {
		return nil, false
	}
	return &c, true
}
