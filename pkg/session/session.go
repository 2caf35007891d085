package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Session is one resolution of the user's credentials. It is never cached
// past the call that produced it.
type Session struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Provider resolves the current session on demand. A nil session with a nil
// error means the user is not signed in, which is a normal state.
type Provider interface {
	Current(ctx context.Context) (*Session, error)
}

// AccessToken resolves p and returns the access token, or "" when
// unauthenticated.
func AccessToken(ctx context.Context, p Provider) (string, error) {
	if p == nil {
		return "", nil
	}
	s, err := p.Current(ctx)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", nil
	}
	return s.AccessToken, nil
}

// StaticProvider always returns the same session, or none.
type StaticProvider struct {
	Session *Session
}

func (p StaticProvider) Current(context.Context) (*Session, error) {
	if p.Session == nil || p.Session.AccessToken == "" || IsExpired(p.Session.AccessToken, time.Now()) {
		return nil, nil
	}
	s := *p.Session
	return &s, nil
}

type bearerKey struct{}

// WithBearer attaches a bearer token taken from an incoming request.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, strings.TrimSpace(token))
}

// BearerProvider reads the token attached with WithBearer.
type BearerProvider struct{}

func (BearerProvider) Current(ctx context.Context) (*Session, error) {
	token, _ := ctx.Value(bearerKey{}).(string)
	if token == "" || IsExpired(token, time.Now()) {
		return nil, nil
	}
	return &Session{AccessToken: token}, nil
}

// FirstOf tries providers in order and returns the first session found.
type FirstOf []Provider

func (f FirstOf) Current(ctx context.Context) (*Session, error) {
	for _, p := range f {
		if p == nil {
			continue
		}
		s, err := p.Current(ctx)
		if err != nil || s != nil {
			return s, err
		}
	}
	return nil, nil
}

// TokenSourceProvider resolves sessions through an OAuth2 token source built
// fresh for every call, so tokens are never reused across resolutions.
type TokenSourceProvider struct {
	newSource func(ctx context.Context) oauth2.TokenSource
}

func NewTokenSourceProvider(newSource func(ctx context.Context) oauth2.TokenSource) *TokenSourceProvider {
	return &TokenSourceProvider{newSource: newSource}
}

// NewRefreshTokenProvider exchanges refreshToken at cfg's token endpoint on
// every resolution. An empty refresh token yields an unauthenticated provider.
func NewRefreshTokenProvider(cfg *oauth2.Config, refreshToken string) *TokenSourceProvider {
	if refreshToken == "" {
		return &TokenSourceProvider{}
	}
	return NewTokenSourceProvider(func(ctx context.Context) oauth2.TokenSource {
		return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	})
}

func (p *TokenSourceProvider) Current(ctx context.Context) (*Session, error) {
	if p.newSource == nil {
		return nil, nil
	}
	tok, err := p.newSource(ctx).Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && (re.ErrorCode == "invalid_grant" || (re.Response != nil && re.Response.StatusCode == http.StatusUnauthorized)) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	if tok == nil || tok.AccessToken == "" {
		return nil, nil
	}
	return &Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}, nil
}

// IsExpired reports whether token is a JWT whose exp claim lies before now.
// Opaque tokens carry no expiry and are never considered expired here.
func IsExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
