package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/SirapobM/Api-test/internal/auth/service TokenGenerator

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

const tokenByteLength = 32

type TokenGenerator interface {
	NewToken() (string, error)
	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}

// TokenService mints opaque tokens. A token carries no claims; it is only a
// random secret that the credential store binds to a user and an expiry.
type TokenService struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (ts *TokenService) NewToken() (string, error) {
	raw := make([]byte, tokenByteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func (ts *TokenService) AccessTokenTTL() time.Duration {
	return ts.accessTTL
}

func (ts *TokenService) RefreshTokenTTL() time.Duration {
	return ts.refreshTTL
}
