package domain

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/SirapobM/Api-test/internal/auth/domain UserRepository

import (
	"context"
	"time"
)

// UserRepository is the credential store port. Lookups return (nil, nil) when
// no row matches; callers decide what a miss means.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) (bool, error)
	EmailInUse(ctx context.Context, email, excludeID string) (bool, error)

	StoreAccessToken(ctx context.Context, at *AccessToken) error
	// GetByAccessToken resolves a presented token to its owner and the stored
	// token record. Expired rows are still returned; expiry is enforced by the
	// caller.
	GetByAccessToken(ctx context.Context, token string) (*User, *AccessToken, error)
	SetRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	RevokeAccessTokens(ctx context.Context, userID string) error
	// RotateAccessTokens atomically revokes every access token owned by the
	// user holding the given unexpired refresh token and stores the
	// replacement. Returns (nil, nil) when no such user exists.
	RotateAccessTokens(ctx context.Context, refreshToken string, now time.Time, replacement *AccessToken) (*User, error)
}
