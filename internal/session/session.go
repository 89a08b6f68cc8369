// Package session owns the bearer token slot shared by the page controllers.
// The token is kept in an origin-scoped storage, so sessions against
// different gateways never see each other's tokens.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-jwt/jwt/v4"

	"github.com/patric-chuzhbe/linkshrink/internal/models"
)

type storage interface {
	Get(ctx context.Context, origin, key string) (string, bool, error)
	Set(ctx context.Context, origin, key, value string) error
	Remove(ctx context.Context, origin, key string) error
}

// ErrNoToken is returned by Claims when nobody is signed in.
var ErrNoToken = errors.New("no session token")

// Session is the single token slot for one origin.
type Session struct {
	db     storage
	origin string
}

// Claims are the token claims the gateway puts into issued JWTs.
// They are read without verification and only ever displayed.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

func New(db storage, origin string) *Session {
	return &Session{
		db:     db,
		origin: origin,
	}
}

// OriginOf reduces a URL to its scheme://host[:port] origin.
func OriginOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("in internal/session/session.go/OriginOf(): error while `url.Parse()` calling: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("in internal/session/session.go/OriginOf(): %q is not an absolute URL", rawURL)
	}

	return u.Scheme + "://" + u.Host, nil
}

func (s *Session) Origin() string {
	return s.origin
}

// Token returns the stored token, or an empty string when there is none.
func (s *Session) Token(ctx context.Context) (string, error) {
	token, found, err := s.db.Get(ctx, s.origin, models.AccessTokenKey)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}

	return token, nil
}

func (s *Session) SaveToken(ctx context.Context, token string) error {
	return s.db.Set(ctx, s.origin, models.AccessTokenKey, token)
}

func (s *Session) ClearToken(ctx context.Context) error {
	return s.db.Remove(ctx, s.origin, models.AccessTokenKey)
}

// Claims decodes the stored token. Opaque (non-JWT) tokens yield an error.
func (s *Session) Claims(ctx context.Context) (*Claims, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNoToken
	}

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return nil, fmt.Errorf("in internal/session/session.go/Claims(): error while `ParseUnverified()` calling: %w", err)
	}

	return claims, nil
}
